package domain

import (
	"errors"
	"fmt"
)

// The three error kinds the core surfaces to the transport boundary.
// Access denials on bookings and items are deliberately reported as
// NotFoundError so callers cannot probe ownership.

type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func NotFound(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

type BadRequestError struct {
	Reason string
}

func (e *BadRequestError) Error() string { return e.Reason }

func BadRequest(reason string) error {
	return &BadRequestError{Reason: reason}
}

func IsBadRequest(err error) bool {
	var br *BadRequestError
	return errors.As(err, &br)
}

type UnsupportedStateError struct {
	State string
}

func (e *UnsupportedStateError) Error() string {
	return fmt.Sprintf("Unknown state: %s", e.State)
}

func IsUnsupportedState(err error) bool {
	var us *UnsupportedStateError
	return errors.As(err, &us)
}

type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("email %s is already registered", e.Email)
}

func IsDuplicateEmail(err error) bool {
	var de *DuplicateEmailError
	return errors.As(err, &de)
}
