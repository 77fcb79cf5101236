package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/shapec-dev/shapec/internal/compiler/errors"
)

// ErrorLevel represents the severity of an error message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Consequence  string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

func levelColors(level ErrorLevel) (header, body *color.Color, symbol string) {
	switch level {
	case ErrorLevelWarning:
		return color.New(color.FgYellow, color.Bold), color.New(color.FgYellow), "⚠"
	case ErrorLevelInfo:
		return color.New(color.FgCyan, color.Bold), color.New(color.FgCyan), "ℹ"
	default:
		return color.New(color.FgRed, color.Bold), color.New(color.FgRed), "✗"
	}
}

func paint(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c
}

// FormatError creates a standardized error message with suggestions and help commands
//
// Example output:
//
//	✗ SERVICE NOT FOUND: Cannot find service 'thngs'.
//
//	   Did you mean: things?
//
//	   → See all services: shapec services
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	headerColor, bodyColor, symbol := levelColors(opts.Level)
	if opts.NoColor {
		headerColor.DisableColor()
		bodyColor.DisableColor()
	}

	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Consequence != "" {
		b.WriteString("\n")
		bodyColor.Fprintf(&b, "   %s\n", opts.Consequence)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		paint(opts.NoColor, color.FgYellow).Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := paint(opts.NoColor, color.FgCyan)
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	return paint(noColor, color.FgGreen, color.Bold).Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// ServiceNotFoundError reports an unknown service, suggesting close names
// from known.
func ServiceNotFoundError(name string, known []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:        ErrorLevelError,
		Context:      "SERVICE NOT FOUND",
		Problem:      fmt.Sprintf("Cannot find service '%s'.", name),
		Suggestions:  FindSimilar(name, known, nil),
		HelpCommands: []string{"See all services: shapec services"},
		NoColor:      noColor,
	})
}

// CompileError creates a standardized compile failure message
func CompileError(service, message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "COMPILE FAILED",
		Problem: fmt.Sprintf("%s: %s", service, message),
		HelpCommands: []string{
			"Show diagnostics as JSON: shapec compile --json " + service,
		},
		NoColor: noColor,
	})
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "CONFIGURATION ERROR",
		Problem: message,
		HelpCommands: []string{
			"View config: cat shapec.yaml",
			"Get help: shapec --help",
		},
		NoColor: noColor,
	})
}

// Warning creates a standardized warning message
func Warning(message string, noColor bool) string {
	return FormatError(ErrorOptions{Level: ErrorLevelWarning, Problem: message, NoColor: noColor})
}

// Info creates a standardized info message
func Info(message string, noColor bool) string {
	return FormatError(ErrorOptions{Level: ErrorLevelInfo, Problem: message, NoColor: noColor})
}

func severityLevel(s errors.ErrorSeverity) ErrorLevel {
	switch s {
	case errors.SeverityWarning:
		return ErrorLevelWarning
	case errors.SeverityInfo:
		return ErrorLevelInfo
	}
	return ErrorLevelError
}

// FormatDiagnostic renders one compiler diagnostic.
//
//	⚠ SCH002 things: unknown shape kind "blob2" (Thing.describe)
//	   → Suggestion text
func FormatDiagnostic(e *errors.CompilerError, noColor bool) string {
	var b strings.Builder
	header, body, symbol := levelColors(severityLevel(e.Severity))
	if noColor {
		header.DisableColor()
		body.DisableColor()
	}

	header.Fprintf(&b, "%s %s", symbol, e.Code)
	if e.Service != "" {
		fmt.Fprintf(&b, " %s:", e.Service)
	}
	fmt.Fprintf(&b, " %s", e.Message)
	if !e.Location.IsZero() {
		body.Fprintf(&b, " (%s)", e.Location)
	}
	b.WriteString("\n")

	if e.Expected != "" || e.Actual != "" {
		fmt.Fprintf(&b, "   expected: %s\n   actual:   %s\n", e.Expected, e.Actual)
	}
	if e.Suggestion != "" {
		paint(noColor, color.FgCyan).Fprintf(&b, "   → %s\n", e.Suggestion)
	}
	return b.String()
}

// WriteDiagnostics writes the diagnostics of list. Infos are only written
// when verbose is set.
func WriteDiagnostics(w io.Writer, list errors.ErrorList, verbose, noColor bool) {
	for _, e := range list {
		if e.Severity == errors.SeverityInfo && !verbose {
			continue
		}
		fmt.Fprint(w, FormatDiagnostic(e, noColor))
	}
}
