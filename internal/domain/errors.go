package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested shopcart or item was not found.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates the operation is not allowed in the current state,
	// e.g. a duplicate cart for a customer or item mutation on an abandoned cart.
	ErrConflict = errors.New("conflict")
)

// ValidationError reports a malformed or out-of-range input value. Field names
// the offending request field or query parameter.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
