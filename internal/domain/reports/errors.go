package reports

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates a referenced report or input file does not exist.
var ErrNotFound = errors.New("file not found")

// ErrNotInitialized indicates the adapter has not been (re)initialized yet.
var ErrNotInitialized = errors.New("generator not initialized")

// ValidationError is returned for missing or malformed request input (HTTP 400).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Invalid builds a ValidationError.
func Invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// GenerationError wraps a failure inside a generator adapter (HTTP 500).
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *GenerationError) Unwrap() error { return e.Err }

// Generation wraps err as a GenerationError unless it already carries an
// HTTP-mappable meaning (validation, not-found).
func Generation(op string, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) || errors.Is(err, ErrNotFound) {
		return err
	}
	return &GenerationError{Op: op, Err: err}
}
