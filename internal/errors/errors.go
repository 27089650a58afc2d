// Package errors provides a lightweight structured error type (SyncError)
// for category-based classification in the service clients and CLI.
package errors

import (
	"errors"
	"fmt"
)

// Category classifies a SyncError for reporting and exit-code decisions.
type Category string

const (
	// User-facing configuration and input errors
	CategoryConfig     Category = "config"
	CategoryValidation Category = "validation"
	CategoryAuth       Category = "auth"

	// External system integration errors
	CategoryNetwork  Category = "network"
	CategoryTodoist  Category = "todoist"
	CategoryHabitify Category = "habitify"

	// Runtime and infrastructure errors
	CategoryState    Category = "state"
	CategoryInternal Category = "internal"
)

// Severity indicates how critical an error is.
type Severity string

const (
	SeverityFatal   Severity = "fatal"   // Stops execution
	SeverityError   Severity = "error"   // Error, but not fatal
	SeverityWarning Severity = "warning" // Continues with degraded functionality
)

// ContextFields carries structured context for SyncError.
type ContextFields map[string]any

// SyncError is a structured error with category, severity, and context.
type SyncError struct {
	Category Category      `json:"category"`
	Severity Severity      `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *SyncError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling.
func (e *SyncError) Unwrap() error {
	return e.Cause
}

// WithCause attaches the underlying error.
func (e *SyncError) WithCause(err error) *SyncError {
	e.Cause = err
	return e
}

// WithContext adds context information to the error.
func (e *SyncError) WithContext(key string, value any) *SyncError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new SyncError.
func New(category Category, severity Severity, message string) *SyncError {
	return &SyncError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// ConfigError creates a fatal configuration error.
func ConfigError(message string) *SyncError {
	return New(CategoryConfig, SeverityFatal, message)
}

// ValidationError creates a fatal validation error.
func ValidationError(message string) *SyncError {
	return New(CategoryValidation, SeverityFatal, message)
}

// AuthError creates an authorization error for a remote service.
func AuthError(message string) *SyncError {
	return New(CategoryAuth, SeverityError, message)
}

// NetworkError creates a transport-level error.
func NetworkError(message string) *SyncError {
	return New(CategoryNetwork, SeverityError, message)
}

// TodoistError creates a task-service error.
func TodoistError(message string) *SyncError {
	return New(CategoryTodoist, SeverityError, message)
}

// HabitifyError creates a habit-service error.
func HabitifyError(message string) *SyncError {
	return New(CategoryHabitify, SeverityError, message)
}

// StateError creates a non-fatal state persistence error.
func StateError(message string) *SyncError {
	return New(CategoryState, SeverityWarning, message)
}

// HasCategory reports whether err (or anything it wraps) is a SyncError of
// the given category.
func HasCategory(err error, category Category) bool {
	var se *SyncError
	if errors.As(err, &se) {
		return se.Category == category
	}
	return false
}

// IsFatal reports whether err carries fatal severity.
func IsFatal(err error) bool {
	var se *SyncError
	if errors.As(err, &se) {
		return se.Severity == SeverityFatal
	}
	return false
}
