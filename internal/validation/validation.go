// Package validation holds format checks shared by handlers and services.
package validation

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrMalformedAmount = errors.New("malformed amount")
	ErrShortPassword   = errors.New("password must be at least 8 characters")
	ErrNoSpecialChar   = errors.New("password must contain a special character")
)

// ParseAmount parses a monetary amount from its wire form (a decimal
// string, never a binary float). The result keeps exact precision.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, ErrMalformedAmount
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrMalformedAmount
	}
	return amount, nil
}

// ValidPin reports whether pin is exactly four digits.
func ValidPin(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// CheckPassword enforces the minimum password policy.
func CheckPassword(password string) error {
	if len(password) < 8 {
		return ErrShortPassword
	}
	if !HasSpecialChar(password) {
		return ErrNoSpecialChar
	}
	return nil
}

// HasSpecialChar reports whether s contains at least one non-alphanumeric
// character.
func HasSpecialChar(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return true
		}
	}
	return false
}
