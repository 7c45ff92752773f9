package app

import "errors"

var (
	// ErrInvalidCredentials is returned when the supplied credentials do not match.
	// This message is intended to be shown to end users.
	ErrInvalidCredentials = errors.New("Invalid email or password")

	ErrMissingRequiredFields = errors.New("Please fill in all required fields")
	ErrPasswordMismatch      = errors.New("Please make sure your passwords match")
	ErrIncorrectPassword     = errors.New("Your current password is incorrect")
	ErrEmailAlreadyExists    = errors.New("This email is already registered. Please login instead.")

	ErrNotFound     = errors.New("not found")
	ErrAccessDenied = errors.New("access denied")
)
