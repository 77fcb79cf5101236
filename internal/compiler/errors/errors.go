// Package errors provides structured error handling for the shape compiler.
// It defines error codes, categories, and formatting for both human-readable
// terminal output and machine-parseable JSON, plus the Diagnostics collector
// threaded through a single service compilation.
package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error code in the shape compiler
type ErrorCode string

// ErrorCategory represents the category of compiler error
type ErrorCategory string

const (
	// CategorySchema covers problems in the loaded service documents (SCH001-099)
	CategorySchema ErrorCategory = "schema"
	// CategoryOverride covers override table problems and notices (OVR100-199)
	CategoryOverride ErrorCategory = "override"
	// CategoryNaming covers name space integrity problems (NAM200-299)
	CategoryNaming ErrorCategory = "naming"
)

// ErrorSeverity indicates the severity level of an error
type ErrorSeverity string

const (
	// SeverityError aborts the compilation of the affected service
	SeverityError ErrorSeverity = "error"
	// SeverityWarning is absorbed and reported
	SeverityWarning ErrorSeverity = "warning"
	// SeverityInfo records a decision the compiler made (renames, overrides)
	SeverityInfo ErrorSeverity = "info"
)

// Location identifies where in a service an error was raised:
// the owning class, the member (method or record) and the field.
type Location struct {
	Owner  string `json:"owner,omitempty"`
	Member string `json:"member,omitempty"`
	Field  string `json:"field,omitempty"`
}

// String joins the non-empty parts with dots.
func (l Location) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.Owner, l.Member, l.Field} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// IsZero reports whether no part of the location is set.
func (l Location) IsZero() bool {
	return l.Owner == "" && l.Member == "" && l.Field == ""
}

// CompilerError represents a structured compiler error with enough information
// for terminal output and JSON consumers
type CompilerError struct {
	// Code is the unique error code (e.g., "NAM201", "SCH002")
	Code ErrorCode `json:"code"`
	// Type is a machine-readable error type identifier
	Type string `json:"type"`
	// Category is the error category
	Category ErrorCategory `json:"category"`
	// Severity is the error severity level
	Severity ErrorSeverity `json:"severity"`
	// Message is the primary error message
	Message string `json:"message"`
	// Service is the service being compiled when the error was raised
	Service string `json:"service,omitempty"`
	// Location points into the service (owner, member, field)
	Location Location `json:"location"`
	// Expected describes what was expected (optional)
	Expected string `json:"expected,omitempty"`
	// Actual describes what was actually found (optional)
	Actual string `json:"actual,omitempty"`
	// Suggestion provides a hint for fixing the error (optional)
	Suggestion string `json:"suggestion,omitempty"`
	// Documentation is a URL to detailed error documentation
	Documentation string `json:"documentation,omitempty"`
}

// Error implements the error interface
func (e *CompilerError) Error() string {
	return FormatCompact(e)
}

// Format returns a human-readable error message for terminal output
func (e *CompilerError) Format() string {
	return FormatError(e)
}

// ToJSON returns the error as an indented JSON string
func (e *CompilerError) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// WithService sets the service name for the error
func (e *CompilerError) WithService(service string) *CompilerError {
	e.Service = service
	return e
}

// WithExpected sets the expected value for the error
func (e *CompilerError) WithExpected(expected string) *CompilerError {
	e.Expected = expected
	return e
}

// WithActual sets the actual value for the error
func (e *CompilerError) WithActual(actual string) *CompilerError {
	e.Actual = actual
	return e
}

// WithSuggestion sets a suggestion for fixing the error
func (e *CompilerError) WithSuggestion(suggestion string) *CompilerError {
	e.Suggestion = suggestion
	return e
}

// IsFatal reports whether the error aborts the service compilation.
func (e *CompilerError) IsFatal() bool {
	return e.Severity == SeverityError
}

// ErrorList is a collection of compiler errors
type ErrorList []*CompilerError

// Error implements the error interface
func (el ErrorList) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	if len(el) == 1 {
		return el[0].Error()
	}
	parts := make([]string, 0, len(el))
	for _, e := range el {
		parts = append(parts, e.Error())
	}
	return fmt.Sprintf("%d errors: %s", len(el), strings.Join(parts, "; "))
}

// HasErrors returns true if the list contains any errors (excludes warnings/info)
func (el ErrorList) HasErrors() bool {
	for _, err := range el {
		if err.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if the list contains any warnings
func (el ErrorList) HasWarnings() bool {
	for _, err := range el {
		if err.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// BySeverity returns the entries with the given severity, in order.
func (el ErrorList) BySeverity(severity ErrorSeverity) ErrorList {
	var out ErrorList
	for _, err := range el {
		if err.Severity == severity {
			out = append(out, err)
		}
	}
	return out
}

// ByCode returns the entries with the given code, in order.
func (el ErrorList) ByCode(code ErrorCode) ErrorList {
	var out ErrorList
	for _, err := range el {
		if err.Code == code {
			out = append(out, err)
		}
	}
	return out
}

// ToJSON returns all errors as a JSON array
func (el ErrorList) ToJSON() (string, error) {
	if el == nil {
		el = ErrorList{}
	}
	bytes, err := json.MarshalIndent(el, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// ErrorCount returns the number of errors by severity
func (el ErrorList) ErrorCount() (errors, warnings, info int) {
	for _, err := range el {
		switch err.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		case SeverityInfo:
			info++
		}
	}
	return
}

// documentationURL returns the documentation URL for an error code
func documentationURL(code ErrorCode) string {
	return fmt.Sprintf("https://shapec.dev/errors/%s", code)
}

// newError creates a new CompilerError with the given parameters
func newError(
	code ErrorCode,
	typ string,
	category ErrorCategory,
	severity ErrorSeverity,
	message string,
	loc Location,
) *CompilerError {
	return &CompilerError{
		Code:          code,
		Type:          typ,
		Category:      category,
		Severity:      severity,
		Message:       message,
		Location:      loc,
		Documentation: documentationURL(code),
	}
}
