// Package errors provides custom error types for the khata API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication errors.
var (
	ErrUnauthorized    = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidPasscode = &AppError{Code: "INVALID_PASSCODE", Message: "Incorrect passcode", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrValidation     = &AppError{Code: "VALIDATION_ERROR", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Not-found errors. These are returned for stale IDs, e.g. a person that was
// deleted from another screen while an edit sheet was still open.
var (
	ErrPersonNotFound      = &AppError{Code: "PERSON_NOT_FOUND", Message: "Person not found", StatusCode: http.StatusNotFound}
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrTagNotFound         = &AppError{Code: "TAG_NOT_FOUND", Message: "Tag not found", StatusCode: http.StatusNotFound}
)

// Person errors.
var (
	ErrDuplicatePersonName = &AppError{Code: "DUPLICATE_PERSON_NAME", Message: "A person with this name already exists", StatusCode: http.StatusConflict}
)

// Tag errors.
var (
	ErrDuplicateTagName = &AppError{Code: "DUPLICATE_TAG_NAME", Message: "A tag with this name already exists", StatusCode: http.StatusConflict}
	ErrTooManyTags      = &AppError{Code: "TOO_MANY_TAGS", Message: "Too many tags for one transaction", StatusCode: http.StatusBadRequest}
)

// Settlement errors. ALLOCATION_ERROR covers every cross-row allocation
// constraint: over-allocating a target, over-spending a repayment, and
// person/type mismatches between the two legs.
var (
	ErrAllocation = &AppError{Code: "ALLOCATION_ERROR", Message: "Invalid settlement allocation", StatusCode: http.StatusConflict}
)

// Backup errors.
var (
	ErrRestoreFormat = &AppError{Code: "RESTORE_FORMAT_ERROR", Message: "Backup file is invalid or unsupported", StatusCode: http.StatusBadRequest}
)
