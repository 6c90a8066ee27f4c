package utils

import "fmt"

type AppError struct {
	Code    string
	Message string
	Origin  error // Original error that caused this error, if any
}

func (appErr *AppError) Error() string {
	if appErr.Origin != nil {
		return appErr.Message + ": " + appErr.Origin.Error()
	}
	return appErr.Message
}

// Standard error codes for the application
const (
	// Resource errors
	ErrNotFound  = "NOT_FOUND"
	ErrDuplicate = "DUPLICATE"

	// Invalid or missing input
	ErrValidation = "VALIDATION"

	// Authentication/Authorization errors
	ErrAuthRequired = "AUTH_REQUIRED" // Anonymous viewer on a protected operation
	ErrForbidden    = "FORBIDDEN"     // Authenticated but not the resource owner

	// Account errors
	ErrInvalidCredentials = "INVALID_CREDENTIALS"

	// Underlying persistence failure
	ErrStore = "STORE"
)

// Error creation helper functions
func NewAppError(code string, message string, originalErr error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Origin:  originalErr,
	}
}

// Specific error creators for common cases
func NewNotFoundError(what string) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: what + " not found",
	}
}

func NewAuthRequiredError() *AppError {
	return &AppError{
		Code:    ErrAuthRequired,
		Message: "You must be logged in to do that",
	}
}

func NewForbiddenError(reason string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: "Forbidden: " + reason,
	}
}

func NewValidationError(detail string) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: detail,
	}
}

func NewStoreError(op string, originalErr error) *AppError {
	return &AppError{
		Code:    ErrStore,
		Message: fmt.Sprintf("store operation failed: %s", op),
		Origin:  originalErr,
	}
}

// Helper method to check if an error is of a specific type
func IsErrorCode(err error, code string) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// Helper method to check if an error is related to authentication
func IsAuthError(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == ErrAuthRequired || appErr.Code == ErrForbidden
	}
	return false
}

// AppErrorToHTTPStatus converts an AppError code to an HTTP status code.
func AppErrorToHTTPStatus(errorCode string) int {
	switch errorCode {
	case ErrNotFound:
		return 404 // http.StatusNotFound
	case ErrValidation, ErrInvalidCredentials:
		return 400 // http.StatusBadRequest
	case ErrAuthRequired:
		return 401 // http.StatusUnauthorized
	case ErrForbidden:
		return 403 // http.StatusForbidden
	case ErrDuplicate:
		return 409 // http.StatusConflict
	case ErrStore:
		return 500 // http.StatusInternalServerError
	default:
		return 500 // http.StatusInternalServerError for unknown errors
	}
}
