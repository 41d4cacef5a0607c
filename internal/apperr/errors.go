// Package apperr defines the error taxonomy shared by the service and
// transport layers. Every expected failure is one of these types; the HTTP
// boundary maps each to a fixed status and body shape.
package apperr

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ValidationError carries field-level messages for a 422 response.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msgs := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(msgs, "; ")))
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, ", "))
}

// NewValidation builds a ValidationError from a single field message.
func NewValidation(field, msg string) *ValidationError {
	return &ValidationError{
		Message: "The information you provided was invalid.",
		Fields:  map[string][]string{field: {msg}},
	}
}

// NewValidationMessage builds a ValidationError with no field detail.
func NewValidationMessage(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// NotFoundError covers missing resources and resources owned by another
// user. The message never reveals which of the two it was.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func NewNotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// ConflictError marks a unique-constraint violation. It is recovered
// internally by retrying the insert as a lookup and never reaches a client.
type ConflictError struct {
	Err error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %v", e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// ForbiddenError maps to 403, e.g. a wrong password on account deletion.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

func NewForbidden(msg string) *ForbiddenError {
	return &ForbiddenError{Message: msg}
}

// TransportError wraps a downstream mail/network failure. Delivery is
// asynchronous, so these are logged and dropped, never surfaced to the
// request that triggered them.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target *ForbiddenError
	return errors.As(err, &target)
}
