// Package errors provides a lightweight structured error type (WeaveError)
// for category-based classification in batch summaries and CLI exit handling.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a weave error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Per-file processing errors
	CategoryLanguage ErrorCategory = "language"
	CategorySegment  ErrorCategory = "segment"
	CategoryRender   ErrorCategory = "render"

	// Runtime and infrastructure errors
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryWatch      ErrorCategory = "watch"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// WeaveError is a structured error with category, severity, and context
type WeaveError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for WeaveError
type ContextFields map[string]any

// Error implements the error interface
func (e *WeaveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *WeaveError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *WeaveError) WithContext(key string, value any) *WeaveError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new WeaveError
func New(category ErrorCategory, severity ErrorSeverity, message string) *WeaveError {
	return &WeaveError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new WeaveError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *WeaveError {
	return &WeaveError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// WrapError wraps an existing error with a new WeaveError at error severity
func WrapError(err error, category ErrorCategory, message string) *WeaveError {
	return &WeaveError{
		Category: category,
		Severity: SeverityError,
		Message:  message,
		Cause:    err,
	}
}

// ValidationError creates a new validation error
func ValidationError(message string) *WeaveError {
	return &WeaveError{
		Category: CategoryValidation,
		Severity: SeverityWarning,
		Message:  message,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if we, ok := err.(*WeaveError); ok {
		return we.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal
// if the error is not a WeaveError
func GetCategory(err error) ErrorCategory {
	if we, ok := err.(*WeaveError); ok {
		return we.Category
	}
	return CategoryInternal
}
