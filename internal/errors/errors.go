// Package errors provides centralized error handling for the scheme
// repository tooling. Errors carry a category and free-form context so
// batch commands can group and report every failure in one pass.
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"time"
)

// ErrorCategory represents the type of error for better categorization
type ErrorCategory string

const (
	// CategoryStructural marks a malformed BED line or wrong column count.
	// Always fatal to the line.
	CategoryStructural ErrorCategory = "structural"
	// CategoryNaming marks a primer name failing both grammars, or a file
	// mixing name generations. Fatal to the file; callers may suggest a
	// migrate for these but never for structural errors.
	CategoryNaming ErrorCategory = "naming"
	// CategoryIntegrity marks a hash or cross-reference mismatch within a
	// scheme. Fatal to the scheme.
	CategoryIntegrity ErrorCategory = "integrity"
	// CategoryImmutability marks a published artifact changing between two
	// index builds. Fatal to the whole index build.
	CategoryImmutability ErrorCategory = "immutability"

	CategoryValidation    ErrorCategory = "validation"
	CategoryFileIO        ErrorCategory = "file-io"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryDatabase      ErrorCategory = "database"
	CategoryGeneric       ErrorCategory = "generic"
)

// CategorizedError is an interface for errors that can specify their own category
type CategorizedError interface {
	error
	ErrorCategory() ErrorCategory
}

// EnhancedError wraps an error with a category, component and context data
type EnhancedError struct {
	Err       error          // Original error
	Component string         // Component where the error occurred
	Category  ErrorCategory  // Error category for grouping
	Context   map[string]any // Additional context data
	Timestamp time.Time      // When the error occurred
}

// Error implements the error interface
func (ee *EnhancedError) Error() string {
	return ee.Err.Error()
}

// Unwrap implements the error unwrapping interface
func (ee *EnhancedError) Unwrap() error {
	return ee.Err
}

// Is matches other EnhancedErrors by category, otherwise defers to the
// wrapped error chain.
func (ee *EnhancedError) Is(target error) bool {
	if ee2, ok := target.(*EnhancedError); ok {
		return ee.Category == ee2.Category
	}
	return stderrors.Is(ee.Err, target)
}

// ErrorCategory implements CategorizedError
func (ee *EnhancedError) ErrorCategory() ErrorCategory {
	return ee.Category
}

// GetContext returns a copy of the context map to prevent external modification
func (ee *EnhancedError) GetContext() map[string]any {
	if ee.Context == nil {
		return nil
	}
	contextCopy := make(map[string]any, len(ee.Context))
	maps.Copy(contextCopy, ee.Context)
	return contextCopy
}

// ErrorBuilder provides a fluent interface for creating enhanced errors
type ErrorBuilder struct {
	err       error
	component string
	category  ErrorCategory
	context   map[string]any
}

// New creates a new error builder wrapping err
func New(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// Newf creates a new error builder from a format string
func Newf(format string, args ...any) *ErrorBuilder {
	return New(fmt.Errorf(format, args...))
}

// Component sets the component name
func (eb *ErrorBuilder) Component(component string) *ErrorBuilder {
	eb.component = component
	return eb
}

// Category sets the error category
func (eb *ErrorBuilder) Category(category ErrorCategory) *ErrorBuilder {
	eb.category = category
	return eb
}

// Context adds one context key to the error
func (eb *ErrorBuilder) Context(key string, value any) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	eb.context[key] = value
	return eb
}

// FileContext adds file path context
func (eb *ErrorBuilder) FileContext(path string) *ErrorBuilder {
	return eb.Context("path", path)
}

// SchemeContext adds the scheme identity triple as context
func (eb *ErrorBuilder) SchemeContext(schemeName string, ampliconSize int, schemeVersion string) *ErrorBuilder {
	return eb.
		Context("schemename", schemeName).
		Context("ampliconsize", ampliconSize).
		Context("schemeversion", schemeVersion)
}

// Build creates the EnhancedError
func (eb *ErrorBuilder) Build() *EnhancedError {
	ee := &EnhancedError{
		Err:       eb.err,
		Component: eb.component,
		Category:  eb.category,
		Context:   eb.context,
		Timestamp: time.Now(),
	}
	if ee.Category == "" {
		ee.Category = CategoryGeneric
	}
	return ee
}

// CategoryOf returns the category of err, walking the wrap chain.
// Errors outside this package report CategoryGeneric.
func CategoryOf(err error) ErrorCategory {
	var ce CategorizedError
	if stderrors.As(err, &ce) {
		return ce.ErrorCategory()
	}
	return CategoryGeneric
}

// Standard library passthroughs so callers only import this package.

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Join wraps errors.Join from the standard library
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// Unwrap wraps errors.Unwrap from the standard library
func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}
