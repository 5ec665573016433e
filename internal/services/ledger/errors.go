package ledger

import "errors"

// Service errors. All of these are expected, caller-visible outcomes; an
// unexpected store failure is wrapped opaquely instead of being mapped
// onto one of them.
var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountOwnership  = errors.New("caller does not own this account")
	ErrSameAccount       = errors.New("source and destination accounts are the same")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid amount")
)
