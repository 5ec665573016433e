package repositories

import (
	"context"
	"errors"

	"atlasbank/internal/models"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDuplicateAccount    = errors.New("account already exists")
)

// AccountRepository is keyed storage for accounts and their ledger rows.
// No business logic lives here: the ledger engine decides what a missing
// row or an unauthorized owner means.
//
// Query methods are explicit about what they join; callers pick the
// cheapest one that answers their question.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uint) (*models.Account, error)
	GetByIDWithCard(ctx context.Context, id uint) (*models.Account, error)
	GetByAccountNumber(ctx context.Context, number string) (*models.Account, error)
	ListByUsername(ctx context.Context, username string) ([]models.Account, error)
	ExistsByUserAndBank(ctx context.Context, userID, bankID uint) (bool, error)
	UpdateBalance(ctx context.Context, account *models.Account) error
	UpdateNickname(ctx context.Context, accountID uint, nickname string) error
	SaveCard(ctx context.Context, card *models.DebitCard) error

	// Ledger rows: append and read only. Nothing updates or deletes one.
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	RecentTransactions(ctx context.Context, accountID uint, limit int) ([]models.Transaction, error)
	AllTransactions(ctx context.Context, accountID uint) ([]models.Transaction, error)

	// ExecuteInTransaction runs fn against a repository bound to one
	// database transaction; fn returning an error rolls everything back.
	ExecuteInTransaction(fn func(AccountRepository) error) error
}
