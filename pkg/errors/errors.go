package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// ErrorCode represents an error code
type ErrorCode string

const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest    ErrorCode = "BAD_REQUEST"
	ErrCodeConflict      ErrorCode = "CONFLICT"
	ErrCodeRateLimited   ErrorCode = "RATE_LIMITED"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error code to an HTTP status code
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeValidation, ErrCodeBadRequest:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with an AppError
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NotFound creates a NOT_FOUND error
func NotFound(message string) *AppError {
	return New(ErrCodeNotFound, message)
}

// Validation creates a VALIDATION_ERROR
func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// Unauthorized creates an UNAUTHORIZED error
func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

// Forbidden creates a FORBIDDEN error
func Forbidden(message string) *AppError {
	return New(ErrCodeForbidden, message)
}

// Conflict creates a CONFLICT error
func Conflict(message string) *AppError {
	return New(ErrCodeConflict, message)
}

// RateLimited creates a RATE_LIMITED error
func RateLimited(message string) *AppError {
	return New(ErrCodeRateLimited, message)
}

// IsNotFound checks if error is NotFound
func IsNotFound(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == ErrCodeNotFound
	}
	return false
}

// IsConflict checks if error is Conflict
func IsConflict(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == ErrCodeConflict
	}
	return false
}

// IsUnauthorized checks if error is Unauthorized
func IsUnauthorized(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == ErrCodeUnauthorized
	}
	return false
}

// FromDB maps a database error to the nearest taxonomy bucket.
// Recognized: record-not-found, unique violations (Postgres SQLSTATE 23505,
// SQLite "UNIQUE constraint failed") and foreign key violations (Postgres
// SQLSTATE 23503, SQLite "FOREIGN KEY constraint failed"). Anything
// unrecognized falls through to the INTERNAL bucket.
func FromDB(err error, entity string) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(entity + " not found")
	}
	msg := err.Error()
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey),
		strings.Contains(msg, "SQLSTATE 23505"),
		strings.Contains(msg, "duplicate key value"),
		strings.Contains(msg, "UNIQUE constraint failed"):
		return Wrap(ErrCodeConflict, entity+" already exists", err)
	case errors.Is(err, gorm.ErrForeignKeyViolated),
		strings.Contains(msg, "SQLSTATE 23503"),
		strings.Contains(msg, "violates foreign key constraint"),
		strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return Wrap(ErrCodeConflict, "cannot complete the operation because related records exist", err)
	case strings.Contains(msg, "SQLSTATE 23502"),
		strings.Contains(msg, "NOT NULL constraint failed"):
		return Wrap(ErrCodeValidation, "a required field is missing", err)
	}
	return Wrap(ErrCodeInternalError, "an unexpected error occurred", err)
}
