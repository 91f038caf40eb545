// Package errs defines the error taxonomy shared by every operation:
// validation, not-found, forbidden and conflict failures are detected at
// the boundary of each operation; anything else wraps a store or
// dependency failure and surfaces as an internal error.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports missing or malformed required fields.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// MissingFields builds a ValidationError naming the absent fields.
func MissingFields(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// NotFound builds a NotFoundError.
func NotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ForbiddenError reports a caller lacking ownership or the required role.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	if e.Message == "" {
		return "forbidden"
	}
	return e.Message
}

// Forbiddenf builds a ForbiddenError with a formatted message.
func Forbiddenf(format string, args ...interface{}) *ForbiddenError {
	return &ForbiddenError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports a resource in a state that rejects the operation.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Conflictf builds a ConflictError with a formatted message.
func Conflictf(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsForbidden reports whether err is a ForbiddenError.
func IsForbidden(err error) bool {
	var target *ForbiddenError
	return errors.As(err, &target)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}
