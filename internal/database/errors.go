package database

import "errors"

var (
	// ErrNotFound is returned when a queried row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyDecided is returned when a status compare-and-set finds the
	// booking is no longer WAITING.
	ErrAlreadyDecided = errors.New("booking already decided")

	// ErrDuplicateEmail is returned on a users.email unique violation.
	ErrDuplicateEmail = errors.New("email already registered")
)
