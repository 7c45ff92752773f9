package auth

import (
	"errors"
	"unicode"
)

// ErrWeakPassword is returned when a password fails the strength check.
var ErrWeakPassword = errors.New("Please choose a stronger password")

// PasswordStrength counts how many of the five checks a password satisfies:
// length >= 8, an uppercase letter, a lowercase letter, a digit, and a
// non-alphanumeric character.
func PasswordStrength(password string) int {
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	strength := 0
	if len(password) >= 8 {
		strength++
	}
	for _, ok := range []bool{upper, lower, digit, special} {
		if ok {
			strength++
		}
	}
	return strength
}

// ValidatePassword rejects passwords satisfying fewer than three checks.
func ValidatePassword(password string) error {
	if PasswordStrength(password) < 3 {
		return ErrWeakPassword
	}
	return nil
}
