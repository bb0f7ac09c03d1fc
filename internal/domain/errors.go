package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a report or user id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition is returned when a lifecycle action does not apply
	// to the record's current status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrValidation marks a malformed submission.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized means no verified identity was presented.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the identity lacks the required role.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError names the offending field. It matches ErrValidation under
// errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
