package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Registration errors
const (
	// ErrCodeConflict indicates a contract is already bound to a different implementation.
	ErrCodeConflict ErrorCode = "CONFLICT"
	// ErrCodeAlreadyRegistered indicates a factory already exists for the type and key.
	ErrCodeAlreadyRegistered ErrorCode = "ALREADY_REGISTERED"
)

// Resolution errors
const (
	// ErrCodeActivation indicates an instance could not be produced.
	ErrCodeActivation ErrorCode = "ACTIVATION_FAILED"
)

// Argument errors
const (
	// ErrCodeInvalidArgument indicates a registration call was malformed.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeInvalidInput indicates a configuration value failed validation.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)
