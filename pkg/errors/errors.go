package stitch_errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidInput      = errors.New("invalid input")
	ErrAlreadyExists     = errors.New("already exists")
	ErrChatClosed        = errors.New("conversation is closed")
)

// FieldError reports which input field failed validation.
// It unwraps to ErrInvalidInput so callers can match the kind with errors.Is.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidInput
}

func NewFieldError(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}
