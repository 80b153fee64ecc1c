package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("order not found")
	ErrEmptyOrder     = errors.New("at least one item is required")
	ErrUnknownProduct = errors.New("unknown product")
	ErrTotalMismatch  = errors.New("total does not match items")
)

// ValidationError marks a submission the client has to fix. It is
// reported before any write happens.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
