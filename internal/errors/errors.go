// Package errors provides structured error handling for metafile analysis.
// It defines error codes, categories, and formatting for both human-readable
// terminal output and machine-parseable JSON.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode string

// ErrorCategory represents the category of an analysis error
type ErrorCategory string

const (
	// CategoryMalformedInput represents documents that cannot be read as a
	// metafile (MAL100-199)
	CategoryMalformedInput ErrorCategory = "malformed_input"
	// CategorySchema represents documents that parse but violate the
	// metafile schema (SCH200-299)
	CategorySchema ErrorCategory = "schema_violation"
)

// Sentinels for errors.Is checks against a category.
var (
	ErrMalformedInput  = stderrors.New("malformed metafile")
	ErrSchemaViolation = stderrors.New("metafile schema violation")
)

// AnalysisError is a fatal failure to analyze a metafile. No partial
// results are produced when one is returned.
type AnalysisError struct {
	// Code is the unique error code (e.g., "MAL104", "SCH200")
	Code ErrorCode `json:"code"`
	// Type is a machine-readable error type identifier
	Type string `json:"type"`
	// Category is the error category
	Category ErrorCategory `json:"category"`
	// Message is the primary error message
	Message string `json:"message"`
	// File is the metafile on disk, when known
	File string `json:"file,omitempty"`
	// Path is the node path (input or output key) the error refers to
	Path string `json:"path,omitempty"`
	// Field is the JSON field the error refers to
	Field string `json:"field,omitempty"`
	// Suggestion provides a hint for fixing the error (optional)
	Suggestion string `json:"suggestion,omitempty"`

	cause error
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	return FormatCompact(e)
}

// Unwrap returns the underlying cause, if any
func (e *AnalysisError) Unwrap() error {
	return e.cause
}

// Is reports whether target is the sentinel for this error's category
func (e *AnalysisError) Is(target error) bool {
	switch target {
	case ErrMalformedInput:
		return e.Category == CategoryMalformedInput
	case ErrSchemaViolation:
		return e.Category == CategorySchema
	}
	return false
}

// Format returns a human-readable error message for terminal output
func (e *AnalysisError) Format() string {
	return FormatError(e)
}

// ToJSON returns the error as an indented JSON string
func (e *AnalysisError) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// WithFile sets the metafile name for the error
func (e *AnalysisError) WithFile(file string) *AnalysisError {
	e.File = file
	return e
}

// WithPath sets the node path the error refers to
func (e *AnalysisError) WithPath(path string) *AnalysisError {
	e.Path = path
	return e
}

// WithField sets the JSON field the error refers to
func (e *AnalysisError) WithField(field string) *AnalysisError {
	e.Field = field
	return e
}

// WithSuggestion sets a suggestion for fixing the error
func (e *AnalysisError) WithSuggestion(suggestion string) *AnalysisError {
	e.Suggestion = suggestion
	return e
}

// WithCause records the underlying error
func (e *AnalysisError) WithCause(err error) *AnalysisError {
	e.cause = err
	return e
}

// newError creates a new AnalysisError
func newError(code ErrorCode, errType string, category ErrorCategory, message string) *AnalysisError {
	return &AnalysisError{
		Code:     code,
		Type:     errType,
		Category: category,
		Message:  message,
	}
}

// As extracts an *AnalysisError from err, if it wraps one
func As(err error) (*AnalysisError, bool) {
	var ae *AnalysisError
	if stderrors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Is is a convenience alias for the standard library errors.Is
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// Wrap annotates err with a message, preserving it for errors.Is/As
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
