package utils

import (
	"encoding/json"
	"net/http"

	"github.com/pratik-mahalle/lessonplanner/internal/pkg/errors"
)

// Envelope wraps every API response body
type Envelope struct {
	Success bool         `json:"success"`
	Data    interface{}  `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail is the error half of an Envelope. Details carries structured
// context such as the quota that was exceeded.
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse documents a successful Envelope
type SuccessResponse struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse documents a failed Envelope
type ErrorResponse struct {
	Success bool        `json:"success" example:"false"`
	Error   ErrorDetail `json:"error"`
}

// WriteJSON writes v as the response body
func WriteJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if status == http.StatusNoContent || v == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes data in a success envelope
func WriteSuccess(w http.ResponseWriter, status int, data interface{}) error {
	return WriteJSON(w, status, Envelope{Success: true, Data: data})
}

// WriteSuccessWithMessage writes data and a human readable message
func WriteSuccessWithMessage(w http.ResponseWriter, status int, message string, data interface{}) error {
	return WriteJSON(w, status, Envelope{Success: true, Data: data, Message: message})
}

// WriteError writes an AppError with its own status
func WriteError(w http.ResponseWriter, err *errors.AppError) error {
	return WriteJSON(w, err.StatusCode, Envelope{
		Error: &ErrorDetail{Code: err.Code, Message: err.Message, Details: err.Details},
	})
}

// WriteErr writes err verbatim when it carries an AppError and as a
// generic internal error with fallbackMsg otherwise.
func WriteErr(w http.ResponseWriter, err error, fallbackMsg string) error {
	if appErr, ok := errors.As(err); ok {
		return WriteError(w, appErr)
	}
	return WriteError(w, errors.Internal(fallbackMsg, err))
}

// WriteErrorMessage writes an error envelope without an AppError
func WriteErrorMessage(w http.ResponseWriter, status int, code, message string) error {
	return WriteJSON(w, status, Envelope{Error: &ErrorDetail{Code: code, Message: message}})
}
