package service

import "errors"

var (
	// ErrValidation wraps bad input; the wrapped message is safe to show.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateUsername is returned when the username is taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrUserNotFound is returned by Verify for an unknown username.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned by Verify for a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotFound is returned for absent or foreign file records.
	ErrNotFound = errors.New("file not found")
)
