package application

import "errors"

var (
	// ErrMissingInput is returned when a credential field is absent; no hashing is attempted.
	ErrMissingInput = errors.New("application: missing input")
	// ErrInvalidCredentials is returned on any username or password mismatch.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrSessionExpired is returned when a stored session has elapsed.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSnapshotParse is returned when an imported snapshot cannot be decoded.
	ErrSnapshotParse = errors.New("application: snapshot parse failure")
	// ErrSnapshotShape is returned when an imported snapshot is missing leaves or carries invalid values.
	ErrSnapshotShape = errors.New("application: snapshot shape invalid")
	// ErrConfirmationDeclined is returned when the operator rejects a destructive action.
	ErrConfirmationDeclined = errors.New("application: confirmation declined")
	// ErrNotFound is returned when the requested key holds no value.
	ErrNotFound = errors.New("persistence: not found")
	// ErrWriteFailed is returned when the underlying store rejects a write,
	// for example because it is unavailable or out of space.
	ErrWriteFailed = errors.New("persistence: write failed")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
