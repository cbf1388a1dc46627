package common

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError carries field-keyed validation messages for a single
// request. It satisfies the error interface so services can return it
// through the usual error path; the transport layer unwraps it with
// errors.As and renders the field map as the response body.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError ready for Add calls.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// FieldError is a convenience constructor for a single-field failure.
func FieldError(field, message string) *ValidationError {
	e := NewValidationError()
	e.Add(field, message)
	return e
}

// Add records a message for a field. The first message per field wins,
// so validators can run in priority order without clobbering.
func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// Empty reports whether no field has failed.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// ErrOrNil returns the receiver as an error, or nil when no field failed.
// Returning the concrete type directly from validators would produce a
// non-nil error interface around a nil-check-passing value.
func (e *ValidationError) ErrOrNil() error {
	if e == nil || e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.Fields[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
