package ledger

import (
	"context"

	"atlasbank/internal/models"

	"github.com/shopspring/decimal"
)

// Service is the ledger engine. Callers supply an already-authenticated
// username; the engine enforces ownership and, for money movement other
// than deposits, the transaction PIN.
type Service interface {
	// Money movement
	Deposit(ctx context.Context, username string, accountID uint, amount decimal.Decimal, source string) (*models.Transaction, error)
	Transfer(ctx context.Context, username string, sourceAccountID uint, recipientAccountNumber string, amount decimal.Decimal, pin string) (*TransferResult, error)
	SelfTransfer(ctx context.Context, username string, sourceAccountID, destinationAccountID uint, amount decimal.Decimal, pin string) (*TransferResult, error)
	PayBill(ctx context.Context, username string, accountID uint, billerName string, amount decimal.Decimal, pin string) (*models.Transaction, error)

	// Reads
	GetBalance(ctx context.Context, accountID uint) (decimal.Decimal, error)
	GetRecentTransactions(ctx context.Context, accountID uint) ([]models.Transaction, error)
	VerifyRecipient(ctx context.Context, accountNumber string) (string, error)

	// Account-creation hook: appends the one-time signup bonus entry.
	CreateInitialDepositTransaction(ctx context.Context, accountID uint) error
}

// PinVerifier checks the caller's transaction PIN. Implementations return
// auth.ErrPinNotSet when no PIN is configured and auth.ErrInvalidPin on a
// mismatch; the engine propagates both untouched.
type PinVerifier interface {
	VerifyPin(ctx context.Context, username, pin string) error
}

// ActivityRecorder appends audit-trail entries. Recording is best-effort:
// the engine logs failures and never rolls back money movement over one.
type ActivityRecorder interface {
	Record(ctx context.Context, userID uint, accountID *uint, activityType, description string) error
}

// AccountCache is the read-path cache. Mutating operations only ever
// invalidate; they never write through.
type AccountCache interface {
	GetAccount(ctx context.Context, accountID uint) (*models.Account, bool)
	CacheAccount(ctx context.Context, account *models.Account) error
	GetRecentTransactions(ctx context.Context, accountID uint) ([]models.Transaction, bool)
	CacheRecentTransactions(ctx context.Context, accountID uint, txs []models.Transaction) error
	InvalidateAccount(ctx context.Context, accountID uint) error
}
