package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shapec-dev/shapec/internal/compiler/errors"
)

func TestFormatError(t *testing.T) {
	tests := []struct {
		name     string
		opts     ErrorOptions
		contains []string
	}{
		{
			name:     "basic error",
			opts:     ErrorOptions{Level: ErrorLevelError, Context: "compile failed", Problem: "boom"},
			contains: []string{"✗", "COMPILE FAILED: boom"},
		},
		{
			name:     "warning without context",
			opts:     ErrorOptions{Level: ErrorLevelWarning, Problem: "careful"},
			contains: []string{"⚠ careful"},
		},
		{
			name:     "suggestions",
			opts:     ErrorOptions{Problem: "x", Suggestions: []string{"a", "b"}},
			contains: []string{"Did you mean: a, b?"},
		},
		{
			name:     "help commands and consequence",
			opts:     ErrorOptions{Problem: "x", Consequence: "nothing written", HelpCommands: []string{"run this"}},
			contains: []string{"   nothing written", "   → run this"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.NoColor = true
			out := FormatError(tt.opts)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestServiceNotFoundError(t *testing.T) {
	out := ServiceNotFoundError("thngs", []string{"things", "ec2", "s3"}, true)
	assert.Contains(t, out, "SERVICE NOT FOUND: Cannot find service 'thngs'.")
	assert.Contains(t, out, "Did you mean: things?")
	assert.Contains(t, out, "shapec services")
}

func TestWriteSuccess(t *testing.T) {
	var buf bytes.Buffer
	WriteSuccess(&buf, "compiled 3 services", true)
	assert.Equal(t, "✓ compiled 3 services\n", buf.String())
}

func TestFormatDiagnostic(t *testing.T) {
	e := errors.NewAmbiguousEnum("ColorType", []string{"red"}, []string{"blue"}).WithService("things")
	out := FormatDiagnostic(e, true)

	assert.Contains(t, out, "✗ NAM201 things:")
	assert.Contains(t, out, "(ColorType)")
	assert.Contains(t, out, "expected: red")
	assert.Contains(t, out, "actual:   blue")
	assert.Contains(t, out, "→ ")
}

func TestWriteDiagnosticsHidesInfos(t *testing.T) {
	list := errors.ErrorList{
		errors.NewRecordRenamed("AType", "BType"),
		errors.NewMissingSection("waiters-2.json", ""),
	}

	var quiet, verbose bytes.Buffer
	WriteDiagnostics(&quiet, list, false, true)
	WriteDiagnostics(&verbose, list, true, true)

	assert.NotContains(t, quiet.String(), "NAM204")
	assert.Contains(t, quiet.String(), "SCH001")
	assert.Contains(t, verbose.String(), "NAM204")
}
