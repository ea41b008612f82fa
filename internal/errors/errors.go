package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// Error types for the code quality analyzer
type ErrorType string

const (
	// Analysis errors
	ErrorTypeSyntax   ErrorType = "syntax"
	ErrorTypeAnalysis ErrorType = "analysis"

	// File errors
	ErrorTypeFile         ErrorType = "file"
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypeFileTooLarge ErrorType = "file_too_large"
	ErrorTypePermission   ErrorType = "permission"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// SyntaxError is raised exactly when source text cannot be parsed into a syntax tree.
// It is fatal to the analysis request that produced it.
type SyntaxError struct {
	Type      ErrorType
	Path      string // empty for text supplied directly
	Message   string
	Line      int // 1-based
	Column    int // 1-based
	Text      string
	Timestamp time.Time
}

// NewSyntaxError creates a new syntax error at the given 1-based position
func NewSyntaxError(message string, line, column int, text string) *SyntaxError {
	return &SyntaxError{
		Type:      ErrorTypeSyntax,
		Message:   message,
		Line:      line,
		Column:    column,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// WithPath attaches the file the source text came from
func (e *SyntaxError) WithPath(path string) *SyntaxError {
	e.Path = path
	return e
}

// Error implements the error interface
func (e *SyntaxError) Error() string {
	path := e.Path
	if path == "" {
		path = "<unknown>"
	}
	return fmt.Sprintf("%s (%s, line %d)", e.Message, path, e.Line)
}

// IsSyntaxError reports whether err is or wraps a *SyntaxError
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}

// TypeOf returns the ErrorType of the first typed error in err's chain, or "" for untyped errors
func TypeOf(err error) ErrorType {
	var (
		se *SyntaxError
		fe *FileError
		ce *ConfigError
		ae *AnalysisError
	)
	switch {
	case errors.As(err, &se):
		return se.Type
	case errors.As(err, &fe):
		return fe.Type
	case errors.As(err, &ce):
		return ErrorTypeConfig
	case errors.As(err, &ae):
		return ae.Type
	}
	return ""
}

// AnalysisError wraps a failure of one analysis component
type AnalysisError struct {
	Type       ErrorType
	Component  string
	Underlying error
	Timestamp  time.Time
}

// NewAnalysisError creates a new analysis error for a component
func NewAnalysisError(component string, err error) *AnalysisError {
	return &AnalysisError{
		Type:       ErrorTypeAnalysis,
		Component:  component,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Component, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *AnalysisError) Unwrap() error {
	return e.Underlying
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	return &FileError{
		Type:       classifyFileError(err),
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// NewFileTooLargeError reports a file over the configured size limit
func NewFileTooLargeError(path string, size, limit int64) *FileError {
	return &FileError{
		Type:       ErrorTypeFileTooLarge,
		Path:       path,
		Operation:  "read",
		Underlying: fmt.Errorf("size %d exceeds limit %d", size, limit),
		Timestamp:  time.Now(),
	}
}

func classifyFileError(err error) ErrorType {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrorTypeFileNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrorTypePermission
	}
	return ErrorTypeFile
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// ErrorOrNil returns nil when no errors were collected
func (e *MultiError) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}
