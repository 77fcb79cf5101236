// Package logging builds the zap loggers used by the CLI, the pipeline and
// the inspection server.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/shapec-dev/shapec/internal/compiler/errors"
)

// Output formats accepted by New.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New builds a logger at level. The console format uses the development
// encoder and json the production one. An unknown level falls back to info.
func New(level, format string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	var cfg zap.Config
	switch format {
	case "", FormatConsole:
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	case FormatJSON:
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}

	return cfg.Build()
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// Diagnostics forwards compiler diagnostics to log: warnings at Warn, infos
// at Debug and errors at Error.
func Diagnostics(log *zap.Logger, diags errors.ErrorList) {
	for _, d := range diags {
		fields := []zap.Field{
			zap.String("service", d.Service),
			zap.String("code", string(d.Code)),
		}
		if !d.Location.IsZero() {
			fields = append(fields, zap.String("location", d.Location.String()))
		}
		switch d.Severity {
		case errors.SeverityError:
			log.Error(d.Message, fields...)
		case errors.SeverityWarning:
			log.Warn(d.Message, fields...)
		default:
			log.Debug(d.Message, fields...)
		}
	}
}
