package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// EngineInitError reports that the storage engine could not be brought up.
// It is fatal for the process: initialization is never retried.
type EngineInitError struct {
	// Backend names the engine variant ("sqlite", "postgres").
	Backend string

	// Diagnostic is a human-readable description of what failed.
	Diagnostic string

	Err error
}

func (e *EngineInitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("engine init (%s): %s: %v", e.Backend, e.Diagnostic, e.Err)
	}
	return fmt.Sprintf("engine init (%s): %s", e.Backend, e.Diagnostic)
}

func (e *EngineInitError) Unwrap() error { return e.Err }

// QueryError reports a failed read against an otherwise healthy engine.
type QueryError struct {
	// Op names the repository operation, e.g. "list products".
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// OrderWriteError reports a failed transactional order write. When it is
// returned the transaction has already been rolled back.
type OrderWriteError struct {
	OrderID string
	Stage   string // "id", "begin", "header", "item", "commit"
	Err     error
}

func (e *OrderWriteError) Error() string {
	if e.OrderID != "" {
		return fmt.Sprintf("order write %s failed at %s: %v", e.OrderID, e.Stage, e.Err)
	}
	return fmt.Sprintf("order write failed at %s: %v", e.Stage, e.Err)
}

func (e *OrderWriteError) Unwrap() error { return e.Err }

// ValidationError reports a precondition that failed before any I/O.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return "invalid input: " + e.Message
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsEngineInitError returns true if err wraps an EngineInitError.
func IsEngineInitError(err error) bool {
	var e *EngineInitError
	return errors.As(err, &e)
}

// IsQueryError returns true if err wraps a QueryError.
func IsQueryError(err error) bool {
	var e *QueryError
	return errors.As(err, &e)
}

// IsOrderWriteError returns true if err wraps an OrderWriteError.
func IsOrderWriteError(err error) bool {
	var e *OrderWriteError
	return errors.As(err, &e)
}

// IsValidationError returns true if err wraps a ValidationError.
func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}
