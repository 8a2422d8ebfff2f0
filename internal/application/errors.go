package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrLocationUnavailable = errors.New("location unavailable")
	ErrCategoryMismatch    = errors.New("category does not match the session")
	ErrEmptyInput          = errors.New("value or note is required")
	ErrSerialization       = errors.New("no export produced")
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrUnknownCategory     = errors.New("unknown category")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ExportError reports that an export produced no file
type ExportError struct {
	Format string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("%s export failed: %v", e.Format, e.Err)
}

func (e *ExportError) Is(target error) bool {
	return target == ErrSerialization
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// RejectedError explains why the session log declined an append
type RejectedError struct {
	Reason error
	Detail string
}

func (e *RejectedError) Error() string {
	if e.Detail == "" {
		return e.Reason.Error()
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

func (e *RejectedError) Unwrap() error {
	return e.Reason
}
