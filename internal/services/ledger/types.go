package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"atlasbank/internal/models"
)

// TransferResult reports a completed two-legged movement. Debit and Credit
// are the two rows appended in the same database transaction; they share a
// Reference.
type TransferResult struct {
	Debit         *models.Transaction
	Credit        *models.Transaction
	SourceBalance decimal.Decimal
}

// noopCache satisfies AccountCache when no cache is configured.
type noopCache struct{}

func (noopCache) GetAccount(context.Context, uint) (*models.Account, bool) { return nil, false }
func (noopCache) CacheAccount(context.Context, *models.Account) error      { return nil }
func (noopCache) GetRecentTransactions(context.Context, uint) ([]models.Transaction, bool) {
	return nil, false
}
func (noopCache) CacheRecentTransactions(context.Context, uint, []models.Transaction) error {
	return nil
}
func (noopCache) InvalidateAccount(context.Context, uint) error { return nil }
