package dto

import (
	"errors"
	"net/http"
	"strings"

	"github.com/schoolfee/backend/internal/domain/shared"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for request binding failures
	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is returned for domain validation failures without a specific code
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource and ledger error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeInsufficientBalance = "ERR_INSUFFICIENT_BALANCE"
	ErrCodeDuplicateSubmission = "ERR_DUPLICATE_SUBMISSION"
	ErrCodeUnavailable         = "ERR_UNAVAILABLE"
	ErrCodePrintingDisabled    = "ERR_PRINTING_DISABLED"
)

// ErrorCodeHTTPStatus maps error codes raised by the HTTP layer itself to
// status codes. Domain errors are mapped by kind instead, see StatusForKind.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInsufficientBalance: http.StatusConflict,
	ErrCodeDuplicateSubmission: http.StatusConflict,
	ErrCodeUnavailable:         http.StatusServiceUnavailable,
	ErrCodePrintingDisabled:    http.StatusServiceUnavailable,
}

// domainCodeHTTPStatus overrides the kind mapping for specific domain codes
var domainCodeHTTPStatus = map[string]int{
	ErrCodePrintingDisabled: http.StatusServiceUnavailable,
}

// kindHTTPStatus maps domain error kinds to HTTP status codes
var kindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindNotFound:      http.StatusNotFound,
	shared.KindValidation:    http.StatusBadRequest,
	shared.KindStateConflict: http.StatusConflict,
	shared.KindForbidden:     http.StatusForbidden,
	shared.KindInternal:      http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// StatusForKind returns the HTTP status code for a domain error kind
func StatusForKind(kind shared.ErrorKind) int {
	if status, ok := kindHTTPStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode prefixes a domain error code with ERR_ so every code
// on the wire follows the same convention
func NormalizeErrorCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	switch {
	case code == "":
		return ErrCodeInternal
	case strings.HasPrefix(code, "ERR_"):
		return code
	default:
		return "ERR_" + code
	}
}

// ErrorFromDomain converts err into a status code and an error payload.
// Errors that are not domain errors are reported as internal without their message.
func ErrorFromDomain(err error) (int, ErrorInfo) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := NormalizeErrorCode(domainErr.Code)
		status, ok := domainCodeHTTPStatus[code]
		if !ok {
			status = StatusForKind(domainErr.Kind)
		}
		return status, ErrorInfo{
			Code:    code,
			Message: domainErr.Message,
		}
	}
	return http.StatusInternalServerError, ErrorInfo{
		Code:    ErrCodeInternal,
		Message: "An unexpected error occurred",
	}
}
