package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types
const (
	TransactionTypeDeposit    = "DEPOSIT"
	TransactionTypeTransfer   = "TRANSFER"
	TransactionTypePayment    = "PAYMENT"
	TransactionTypeWithdrawal = "WITHDRAWAL"
)

// Transaction is one immutable signed ledger entry against an account.
// Credits are positive, debits negative. Rows are only ever appended;
// the two legs of a transfer share a Reference.
type Transaction struct {
	ID          uint            `gorm:"primarykey"`
	Type        string          `gorm:"not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(19,2);not null"`
	Description string          `gorm:"not null"`
	Reference   string          `gorm:"index"`
	AccountID   uint            `gorm:"not null;index"`
	CreatedAt   time.Time       `gorm:"index"`
}
