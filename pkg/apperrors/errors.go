// Package apperrors defines the error taxonomy shared by services and
// handlers. Every domain error unwraps to one of the sentinel values so
// callers can classify with errors.Is and extract details with errors.As.
package apperrors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// NotFoundError indicates a referenced entity is absent or not owned by the
// caller. Owner-scoped lookups report NotFound rather than Forbidden so they
// never leak the existence of another user's data.
type NotFoundError struct {
	Resource string
	ID       uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFound creates a NotFoundError for the given resource and id.
func NewNotFound(resource string, id uuid.UUID) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// FieldError describes a single rejected field in a validation failure.
type FieldError struct {
	Field         string `json:"field"`
	Message       string `json:"message"`
	RejectedValue string `json:"rejected_value,omitempty"`
}

// ValidationError indicates structurally invalid input or a violated domain
// rule (required field, cross-type mismatch, bad level value).
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidation creates a ValidationError with a message only.
func NewValidation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NewFieldValidation creates a ValidationError carrying a field breakdown.
func NewFieldValidation(message string, fields ...FieldError) error {
	return &ValidationError{Message: message, Fields: fields}
}

// ConflictError indicates a uniqueness violation (duplicate key, duplicate
// answer) or an invalid state transition.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NewConflict creates a ConflictError.
func NewConflict(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ForbiddenError indicates the entity exists and was resolved, but the
// caller is not its owner.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// NewForbidden creates a ForbiddenError.
func NewForbidden(format string, args ...any) error {
	return &ForbiddenError{Message: fmt.Sprintf(format, args...)}
}
