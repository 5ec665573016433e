package utils

import (
	"crypto/rand"
	"math/big"
)

// RandomDigits returns n random decimal digits from a CSPRNG.
func RandomDigits(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits), nil
}

// RandomAccountNumber returns a 10-digit account number with a non-zero
// leading digit. Uniqueness is the caller's problem; collisions are rare
// but real, so creation retries against the unique index.
func RandomAccountNumber() (string, error) {
	first, err := rand.Int(rand.Reader, big.NewInt(9))
	if err != nil {
		return "", err
	}
	rest, err := RandomDigits(9)
	if err != nil {
		return "", err
	}
	return string(byte('1'+first.Int64())) + rest, nil
}
