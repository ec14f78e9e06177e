// Package pawerrors provides sentinel and custom error types for the engine.
package pawerrors

// ErrNotFound represents a "not found" error.
// Use when a requested resource doesn't exist (e.g. no embedding for a user).
var ErrNotFound = &NotFoundError{}

// NotFoundError is a sentinel error for resources that are not found.
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new NotFoundError with a custom message.
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Resource != "" {
		return e.Resource + " not found"
	}

	return "resource not found"
}

// Is implements the error interface for error comparison.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)

	return ok
}

// ErrInvalidInput represents a validation error.
// Use when caller input fails validation before any I/O is attempted.
var ErrInvalidInput = &InvalidInputError{}

// InvalidInputError is a sentinel error for validation failures.
type InvalidInputError struct {
	Field   string
	Message string
}

// NewInvalidInputError creates a new InvalidInputError with a custom message.
func NewInvalidInputError(field, message string) *InvalidInputError {
	return &InvalidInputError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface.
func (e *InvalidInputError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Field != "" {
		return "validation failed for field: " + e.Field
	}

	return "invalid input"
}

// Is implements the error interface for error comparison.
func (e *InvalidInputError) Is(target error) bool {
	_, ok := target.(*InvalidInputError)

	return ok
}

// ErrZeroMagnitude is the sentinel for zero-magnitude vector errors.
// Cosine similarity is undefined for a zero vector; a zero query aborts
// immediately while zero candidate records are skipped during a scan.
var ErrZeroMagnitude = &ZeroMagnitudeError{}

// ZeroMagnitudeError reports a vector whose magnitude is zero.
// It matches both ErrZeroMagnitude and ErrInvalidInput via errors.Is.
type ZeroMagnitudeError struct {
	Field string
}

// NewZeroMagnitudeError creates a ZeroMagnitudeError for the given field.
func NewZeroMagnitudeError(field string) *ZeroMagnitudeError {
	return &ZeroMagnitudeError{Field: field}
}

// Error implements the error interface.
func (e *ZeroMagnitudeError) Error() string {
	if e.Field != "" {
		return e.Field + " has zero magnitude"
	}

	return "vector has zero magnitude"
}

// Is reports a match for both ZeroMagnitudeError and InvalidInputError,
// so callers handling generic validation failures catch this one too.
func (e *ZeroMagnitudeError) Is(target error) bool {
	if _, ok := target.(*ZeroMagnitudeError); ok {
		return true
	}

	_, ok := target.(*InvalidInputError)

	return ok
}

// ErrRateLimited is the sentinel for quota-exceeded conditions.
// The attempted action is rejected without mutating limiter state.
var ErrRateLimited = &RateLimitedError{}

// RateLimitedError is a sentinel error for rate-limited actions.
type RateLimitedError struct {
	Scope string
}

// NewRateLimitedError creates a RateLimitedError for the given scope.
func NewRateLimitedError(scope string) *RateLimitedError {
	return &RateLimitedError{Scope: scope}
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	if e.Scope != "" {
		return "rate limit exceeded for scope: " + e.Scope
	}

	return "rate limit exceeded"
}

// Is implements the error interface for error comparison.
func (e *RateLimitedError) Is(target error) bool {
	_, ok := target.(*RateLimitedError)

	return ok
}

// ErrExternalService is the sentinel for downstream dependency failures
// (text generation, favorites lookup, persistence). Wrapped uniformly so
// callers have one failure mode for "dependency unavailable".
var ErrExternalService = &ExternalServiceError{}

// ExternalServiceError wraps a failure from an external collaborator.
type ExternalServiceError struct {
	Service string
	Message string
	Err     error
}

// NewExternalServiceError creates an ExternalServiceError wrapping err.
func NewExternalServiceError(service, message string, err error) *ExternalServiceError {
	return &ExternalServiceError{
		Service: service,
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface.
func (e *ExternalServiceError) Error() string {
	msg := "external service error"
	if e.Service != "" {
		msg = e.Service + ": " + msg
	}

	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns the wrapped downstream error.
func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// Is implements the error interface for error comparison.
func (e *ExternalServiceError) Is(target error) bool {
	_, ok := target.(*ExternalServiceError)

	return ok
}
