package errors

import (
	stderrors "errors"
	"fmt"

	"priorelicit/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
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

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context. The code of a wrapped AppError is kept;
// bare domain errors get the code of their sentinel.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    GetCode(err),
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr == err {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the outermost AppError in the chain, falling back to
// the code implied by a domain sentinel, otherwise CodeInternalError.
func GetCode(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.Code != "" && appErr.Code != CodeInternalError {
		return appErr.Code
	}
	return codeForSentinel(err)
}

func codeForSentinel(err error) string {
	switch {
	case stderrors.Is(err, core.ErrInsufficientData):
		return CodeInsufficientData
	case stderrors.Is(err, core.ErrDegenerateSample):
		return CodeDegenerateSample
	case stderrors.Is(err, core.ErrNoValidFit):
		return CodeNoValidFit
	case stderrors.Is(err, core.ErrInvalidConfiguration):
		return CodeInvalidConfiguration
	case stderrors.Is(err, core.ErrNotFound):
		return CodeNotFound
	}
	return CodeInternalError
}

// Predefined error codes
const (
	CodeConfigInvalid        = "CONFIG_INVALID"
	CodeDatabaseError        = "DATABASE_ERROR"
	CodeValidationError      = "VALIDATION_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodeInternalError        = "INTERNAL_ERROR"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeInsufficientData     = "INSUFFICIENT_DATA"
	CodeDegenerateSample     = "DEGENERATE_SAMPLE"
	CodeNoValidFit           = "NO_VALID_FIT"
	CodeInvalidConfiguration = "INVALID_CONFIGURATION"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string, cause error) *AppError {
	return &AppError{Code: CodeDatabaseError, Message: message, Cause: cause}
}

func NotFound(resource string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource), Cause: core.ErrNotFound}
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// Pipeline error constructors. Each wraps its domain sentinel so errors.Is keeps working.

func InsufficientData(format string, args ...interface{}) *AppError {
	return &AppError{Code: CodeInsufficientData, Message: fmt.Sprintf(format, args...), Cause: core.ErrInsufficientData}
}

func DegenerateSample(format string, args ...interface{}) *AppError {
	return &AppError{Code: CodeDegenerateSample, Message: fmt.Sprintf(format, args...), Cause: core.ErrDegenerateSample}
}

func NoValidFit(format string, args ...interface{}) *AppError {
	return &AppError{Code: CodeNoValidFit, Message: fmt.Sprintf(format, args...), Cause: core.ErrNoValidFit}
}

func InvalidConfiguration(cause error) *AppError {
	return &AppError{Code: CodeInvalidConfiguration, Message: "model rejected", Cause: cause}
}
