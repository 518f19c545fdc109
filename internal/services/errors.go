package services

import "errors"

// Expected failures. Handlers map these to response status codes; anything
// else is treated as an internal error.
var (
	// ErrNotFound covers both genuinely missing records and records owned by
	// another user. The two cases must stay indistinguishable to the caller.
	ErrNotFound = errors.New("not found")

	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials is returned uniformly for an unknown email and a
	// password mismatch. Never leak which case occurred.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError reports missing or malformed input, optionally with
// per-field messages.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with optional field messages.
func NewValidationError(message string, fields ...string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}
