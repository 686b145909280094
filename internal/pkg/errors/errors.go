package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/tilequery-overlay/internal/domain"
)

type AppError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// WithDetails возвращает копию ошибки с деталями; предопределённые значения не изменяются
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

// FromDomain переводит доменную ошибку в AppError для HTTP ответа
func FromDomain(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	switch {
	case stderrors.Is(err, domain.ErrInvalidPoint):
		return ErrInvalidCoordinates
	case stderrors.Is(err, domain.ErrInvalidQueryParameters):
		return ErrInvalidQueryParameters
	case stderrors.Is(err, domain.ErrPermissionDenied):
		return ErrPermissionDenied
	case stderrors.Is(err, domain.ErrControllerStopped):
		return ErrServiceUnavailable
	}
	return ErrInternalServer
}
