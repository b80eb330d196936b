package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	CodeAppError   = "APP_ERROR"
	CodeAPIError   = "API_ERROR"
	CodeValidation = "VALIDATION_ERROR"
	CodeStore      = "STORE_ERROR"
	CodeRender     = "RENDER_ERROR"
	CodeService    = "SERVICE_ERROR"
)

type AppError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewAppError(message, code string, statusCode int, context map[string]any) *AppError {
	return &AppError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

type APIError struct {
	*AppError
}

func NewAPIError(message string, statusCode int, context map[string]any) *APIError {
	return &APIError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}

type ValidationError struct {
	*AppError
	Field string
	Value interface{}
}

func NewValidationError(message, field string, value interface{}) *ValidationError {
	return &ValidationError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

type StoreError struct {
	*AppError
	Operation string
	Key       string
}

func NewStoreError(message, operation, key string, cause error) *StoreError {
	return &StoreError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeStore,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type RenderError struct {
	*AppError
	Backend string
	Stage   string
}

func NewRenderError(message, backend, stage string, cause error) *RenderError {
	return &RenderError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeRender,
			StatusCode: 500,
			Context: map[string]any{
				"backend": backend,
				"stage":   stage,
			},
			Cause: cause,
		},
		Backend: backend,
		Stage:   stage,
	}
}

// AsAppError extracts the underlying AppError from any error produced by
// this package, walking wrapped causes when needed. The typed wrappers embed
// AppError by pointer, so plain errors.As against *AppError would miss them.
func AsAppError(err error) (*AppError, bool) {
	for err != nil {
		switch e := err.(type) {
		case *AppError:
			return e, true
		case *APIError:
			return e.AppError, true
		case *ValidationError:
			return e.AppError, true
		case *StoreError:
			return e.AppError, true
		case *RenderError:
			return e.AppError, true
		case *ServiceError:
			return e.AppError, true
		}
		err = stderrors.Unwrap(err)
	}
	return nil, false
}

type ServiceError struct {
	*AppError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeService,
			StatusCode: 500,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}
