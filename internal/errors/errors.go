package errors

import (
	"errors"
	"fmt"
)

// Application-specific errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrMissingParameter    = errors.New("missing required parameter")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrRateLimit           = errors.New("rate limit exceeded")
	ErrServiceUnavailable  = errors.New("service unavailable")
	ErrNotConfigured       = errors.New("not configured")
)

// ValidationError represents a client-side parameter error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Missing bool   `json:"-"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Unwrap lets callers match ValidationError against ErrInvalidInput or ErrMissingParameter
func (e ValidationError) Unwrap() error {
	if e.Missing {
		return ErrMissingParameter
	}
	return ErrInvalidInput
}

// Invalid builds a ValidationError for a malformed parameter
func Invalid(field, format string, args ...any) error {
	return ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Missing builds a ValidationError for an absent required parameter
func Missing(field string) error {
	return ValidationError{Field: field, Message: "is required", Missing: true}
}

// IsClientError reports whether err should be surfaced as a 4xx
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrMissingParameter)
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error `json:"errors"`
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", e.Errors[0].Error(), len(e.Errors)-1)
}

// Add adds an error to the MultiError
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors
func (e *MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ErrorOrNil returns nil when no errors were collected
func (e *MultiError) ErrorOrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return *e
}

// DatabaseError represents a database-related error
type DatabaseError struct {
	Operation string
	Err       error
}

func (e DatabaseError) Error() string {
	return fmt.Sprintf("database error during %s: %v", e.Operation, e.Err)
}

func (e DatabaseError) Unwrap() error {
	return e.Err
}

// SourceError is a retrieval failure for a single official update source
type SourceError struct {
	Source string
	Err    error
}

func (e SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e SourceError) Unwrap() error {
	return e.Err
}

// ProviderError is a failed attempt in the social provider chain
type ProviderError struct {
	Provider string
	Attempt  int
	Err      error
}

func (e ProviderError) Error() string {
	return fmt.Sprintf("provider %s (attempt %d): %v", e.Provider, e.Attempt, e.Err)
}

func (e ProviderError) Unwrap() error {
	return e.Err
}
