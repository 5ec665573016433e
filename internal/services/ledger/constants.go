package ledger

import "github.com/shopspring/decimal"

// SignupBonus is the fixed credit applied once when an account is opened.
var SignupBonus = decimal.RequireFromString("50.00")

// MinAmount is the smallest amount any operation accepts.
var MinAmount = decimal.RequireFromString("0.01")

const (
	// SignupBonusDescription labels the one-time opening transaction.
	SignupBonusDescription = "New account sign-up bonus"

	// RecentTransactionLimit bounds GetRecentTransactions.
	RecentTransactionLimit = 10
)
