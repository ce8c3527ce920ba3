package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an *AppError with the same code.
// This lets callers write errors.Is(err, errors.ErrActivation).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Sentinels for errors.Is matching. Only the code is compared.
var (
	ErrConflict          = &AppError{Code: ErrCodeConflict}
	ErrAlreadyRegistered = &AppError{Code: ErrCodeAlreadyRegistered}
	ErrActivation        = &AppError{Code: ErrCodeActivation}
	ErrInvalidArgument   = &AppError{Code: ErrCodeInvalidArgument}
	ErrInvalidInput      = &AppError{Code: ErrCodeInvalidInput}
)

// AsAppError extracts an *AppError from err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first *AppError in err's chain, or "" when
// there is none.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// --- Common Error Constructors ---

// Conflict creates a new AppError for a contract already bound elsewhere.
func Conflict(contract, existing, requested string) *AppError {
	return &AppError{
		Code:    ErrCodeConflict,
		Message: fmt.Sprintf("There is already a class registered for %s.", contract),
		Details: map[string]any{
			"contract":       contract,
			"implementation": existing,
			"requested":      requested,
		},
	}
}

// AlreadyRegistered creates a new AppError for a duplicate factory registration.
func AlreadyRegistered(contract, key string) *AppError {
	details := map[string]any{"contract": contract}
	msg := fmt.Sprintf("Class %s is already registered.", contract)
	if key != "" {
		details["key"] = key
		msg = fmt.Sprintf("There is already a factory registered for %s with key %s.", contract, key)
	}
	return &AppError{Code: ErrCodeAlreadyRegistered, Message: msg, Details: details}
}

// Activation creates a new AppError for a failed resolution.
func Activation(contract, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeActivation,
		Message: reason,
		Details: map[string]any{"contract": contract},
	}
}

// InvalidArgument creates a new AppError for a malformed registration call.
func InvalidArgument(argument, reason string) *AppError {
	details := make(map[string]any)
	if argument != "" {
		details["argument"] = argument
	}
	return &AppError{
		Code:    ErrCodeInvalidArgument,
		Message: fmt.Sprintf("Invalid argument: %s", reason),
		Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// Internal creates a new AppError for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "An unexpected error occurred.",
		Cause:   cause,
	}
}
