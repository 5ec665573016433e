package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds a user's balance at one bank. The account number is a
// 10-digit numeric string, immutable once assigned. Balance is stored as
// an exact decimal; float arithmetic never touches it.
type Account struct {
	ID            uint            `gorm:"primarykey"`
	AccountNumber string          `gorm:"uniqueIndex;not null;<-:create"`
	Balance       decimal.Decimal `gorm:"type:decimal(19,2);not null"`
	Nickname      string
	UserID        uint       `gorm:"not null;index;uniqueIndex:idx_user_bank"`
	User          *User      `gorm:"foreignKey:UserID"`
	BankID        uint       `gorm:"not null;uniqueIndex:idx_user_bank"`
	Bank          *Bank      `gorm:"foreignKey:BankID"`
	DebitCard     *DebitCard `gorm:"foreignKey:AccountID"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LastFour returns the trailing four digits of the account number, used in
// human-readable descriptions and activity entries.
func (a *Account) LastFour() string {
	if len(a.AccountNumber) < 4 {
		return a.AccountNumber
	}
	return a.AccountNumber[len(a.AccountNumber)-4:]
}
