package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an operation targets a product id that does
// not exist.
var ErrNotFound = errors.New("product not found")

// ValidationError describes malformed input. For imports it is converted
// into a skip count; for single add/update it is surfaced to the caller
// with no mutation performed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("field %q %s", e.Field, e.Reason)
	}
	return e.Reason
}

// ConflictError reports a name collision with another product.
type ConflictError struct {
	Name       string
	ExistingID int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("name %q must be unique (taken by product %d)", e.Name, e.ExistingID)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
