package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with additional context
type AppError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	StatusCode int         `json:"-"`
	Internal   error       `json:"-"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

// Unwrap returns the internal error for errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Error codes. Each code is a stable kind clients can switch on.
const (
	ErrCodeInternal               = "INTERNAL_ERROR"
	ErrCodeBadRequest             = "BAD_REQUEST"
	ErrCodeInvalidArgument        = "INVALID_ARGUMENT"
	ErrCodeUnauthorized           = "UNAUTHORIZED"
	ErrCodeForbidden              = "FORBIDDEN"
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeConflict               = "CONFLICT"
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeDatabase               = "DATABASE_ERROR"
	ErrCodeQuotaExceeded          = "QUOTA_EXCEEDED"
	ErrCodePersistenceUnavailable = "PERSISTENCE_UNAVAILABLE"
	ErrCodeGenerationFailed       = "GENERATION_FAILED"
	ErrCodeProviderAPI            = "PROVIDER_API_ERROR"
	ErrCodeRateLimited            = "RATE_LIMITED"
	ErrCodeServiceUnavailable     = "SERVICE_UNAVAILABLE"
)

// New creates a new AppError
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap wraps an error with an AppError
func Wrap(err error, code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Internal:   err,
	}
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// As returns the AppError in err's chain, if any
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries an AppError with the given code
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// IsNotFound reports whether err is a NOT_FOUND AppError
func IsNotFound(err error) bool {
	return HasCode(err, ErrCodeNotFound)
}

// IsPersistenceUnavailable reports whether err signals an unreachable store
func IsPersistenceUnavailable(err error) bool {
	return HasCode(err, ErrCodePersistenceUnavailable)
}

// Common error constructors

// Internal creates an internal server error
func Internal(message string, err error) *AppError {
	return Wrap(err, ErrCodeInternal, message, http.StatusInternalServerError)
}

// BadRequest creates a bad request error
func BadRequest(message string) *AppError {
	return New(ErrCodeBadRequest, message, http.StatusBadRequest)
}

// InvalidArgument creates an error for a well-formed request carrying a bad value
func InvalidArgument(message string) *AppError {
	return New(ErrCodeInvalidArgument, message, http.StatusBadRequest)
}

// Unauthorized creates an unauthorized error
func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

// Forbidden creates a forbidden error
func Forbidden(message string) *AppError {
	return New(ErrCodeForbidden, message, http.StatusForbidden)
}

// NotFound creates a not found error
func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// Conflict creates a conflict error
func Conflict(message string) *AppError {
	return New(ErrCodeConflict, message, http.StatusConflict)
}

// ValidationError creates a validation error
func ValidationError(message string, details interface{}) *AppError {
	return New(ErrCodeValidation, message, http.StatusBadRequest).WithDetails(details)
}

// DatabaseError creates a database error
func DatabaseError(message string, err error) *AppError {
	return Wrap(err, ErrCodeDatabase, message, http.StatusInternalServerError)
}

// QuotaDetails is the usage snapshot attached to QUOTA_EXCEEDED errors
type QuotaDetails struct {
	Resource string      `json:"resource"`
	Used     int64       `json:"used"`
	Limit    interface{} `json:"limit"`
	Tier     string      `json:"tier"`
}

// QuotaExceeded creates an error for a tier ceiling that has been reached
func QuotaExceeded(resource string, used int64, limit interface{}, tier string) *AppError {
	return New(ErrCodeQuotaExceeded,
		fmt.Sprintf("%s limit reached for the %s tier", resource, tier),
		http.StatusForbidden).WithDetails(QuotaDetails{
		Resource: resource,
		Used:     used,
		Limit:    limit,
		Tier:     tier,
	})
}

// PersistenceUnavailable creates an error for an unreachable document store.
// It must never be downgraded into a default or guest identity.
func PersistenceUnavailable(err error) *AppError {
	return Wrap(err, ErrCodePersistenceUnavailable,
		"Storage is temporarily unavailable",
		http.StatusServiceUnavailable)
}

// GenerationFailed creates an error for a failed or unusable upstream generation call
func GenerationFailed(err error) *AppError {
	return Wrap(err, ErrCodeGenerationFailed,
		"Lesson plan generation failed",
		http.StatusBadGateway)
}

// ProviderAPIError creates a provider API error
func ProviderAPIError(provider string, err error) *AppError {
	return Wrap(err, ErrCodeProviderAPI,
		fmt.Sprintf("Failed to communicate with %s API", provider),
		http.StatusBadGateway)
}

// RateLimited creates a rate limited error
func RateLimited(message string) *AppError {
	return New(ErrCodeRateLimited, message, http.StatusTooManyRequests)
}

// ServiceUnavailable creates a service unavailable error
func ServiceUnavailable(message string) *AppError {
	return New(ErrCodeServiceUnavailable, message, http.StatusServiceUnavailable)
}
