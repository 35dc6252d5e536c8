// Package pricing implements the quote price computation: segment and band
// classification, validated pricing model tables, market snapshots and the
// ordered stage pipeline that turns them into a final price and factor log.
package pricing

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("validation failed")
)

// NotFoundKind names the collaborator lookup that failed.
type NotFoundKind string

const (
	NotFoundClient NotFoundKind = "client"
	NotFoundModel  NotFoundKind = "model"
)

// NotFoundError reports a missing client profile or pricing model.
type NotFoundError struct {
	Kind NotFoundKind
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError reports malformed numeric input or a malformed model table.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsNotFoundKind reports whether err is a NotFoundError of the given kind.
func IsNotFoundKind(err error, kind NotFoundKind) bool {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Kind == kind
	}
	return false
}
