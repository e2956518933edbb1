package embed

import (
	"fmt"
	"net/http"

	"embedserver/internal/models"
)

// ServiceError represents errors from the embed service with HTTP context
type ServiceError struct {
	Code       string
	Message    string
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Error constructors for common service errors

func NewEmbedNotFoundError(code string) *ServiceError {
	return &ServiceError{
		Code:       models.ErrorCodeNotFound,
		Message:    fmt.Sprintf("embed '%s' not found", code),
		StatusCode: http.StatusNotFound,
	}
}

func NewValidationError(message string, err error) *ServiceError {
	return &ServiceError{
		Code:       models.ErrorCodeValidation,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
		Err:        err,
	}
}

func NewNotOwnerError(code string) *ServiceError {
	return &ServiceError{
		Code:       models.ErrorCodeForbidden,
		Message:    fmt.Sprintf("you do not own embed '%s'", code),
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string) *ServiceError {
	return &ServiceError{
		Code:       models.ErrorCodeConflict,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, err error) *ServiceError {
	return &ServiceError{
		Code:       models.ErrorCodeInternalError,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}
