package auth

import "errors"

var (
	// ErrAuthentication covers a wrong password on login or on any
	// password-gated operation.
	ErrAuthentication = errors.New("invalid credentials")

	// ErrPinNotSet means money movement was attempted before a PIN was
	// configured. Distinct from a wrong PIN so the caller can prompt for
	// setup instead of retry.
	ErrPinNotSet = errors.New("pin not set")

	// ErrInvalidPin is a PIN mismatch.
	ErrInvalidPin = errors.New("invalid pin")

	ErrUserInactive  = errors.New("user account is inactive")
	ErrEmailInUse    = errors.New("email is already in use")
	ErrUsernameTaken = errors.New("username is already taken")
	ErrWeakPassword  = errors.New("password does not meet requirements")
	ErrBadPinFormat  = errors.New("pin must be exactly 4 digits")
)
