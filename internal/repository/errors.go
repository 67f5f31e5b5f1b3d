package repository

import "errors"

var (
	// ErrUserNotFound indicates no document matched the lookup
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken indicates a registration against an existing email
	ErrEmailTaken = errors.New("email is already registered")
)
