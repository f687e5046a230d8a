package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error for callers that need to branch on it
// (HTTP status mapping, retry decisions).
type ErrorKind string

const (
	KindNotFound      ErrorKind = "NOT_FOUND"
	KindValidation    ErrorKind = "VALIDATION"
	KindStateConflict ErrorKind = "STATE_CONFLICT"
	KindForbidden     ErrorKind = "FORBIDDEN"
	KindInternal      ErrorKind = "INTERNAL"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches another DomainError by code, so wrapped sentinel errors compare equal.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error of the given kind
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError reports a missing entity. Entities owned by another tenant
// are reported the same way.
func NewNotFoundError(entity string) *DomainError {
	return NewDomainError(KindNotFound, "NOT_FOUND", fmt.Sprintf("%s not found", entity))
}

// NewValidationError reports invalid caller input
func NewValidationError(code, message string) *DomainError {
	return NewDomainError(KindValidation, code, message)
}

// NewConflictError reports an operation that is not allowed in the current state
func NewConflictError(code, message string) *DomainError {
	return NewDomainError(KindStateConflict, code, message)
}

// NewForbiddenError reports a role that may not perform the operation
func NewForbiddenError(message string) *DomainError {
	return NewDomainError(KindForbidden, "FORBIDDEN", message)
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(KindNotFound, "NOT_FOUND", "Resource not found")
	ErrInvalidInput        = NewDomainError(KindValidation, "INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(KindStateConflict, "CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrForbidden           = NewDomainError(KindForbidden, "FORBIDDEN", "Access to this resource is forbidden")
	ErrInsufficientBalance = NewDomainError(KindStateConflict, "INSUFFICIENT_BALANCE", "Insufficient balance available")
	ErrDuplicateSubmission = NewDomainError(KindStateConflict, "DUPLICATE_SUBMISSION", "Request was already submitted")
)

// KindOf returns the kind of the first DomainError in err's chain,
// or KindInternal for anything else.
func KindOf(err error) ErrorKind {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return KindInternal
}

// IsNotFound reports whether err is a NotFound domain error
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
