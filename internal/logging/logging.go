// Package logging builds the zap loggers used by the command line tools.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"

	defaultLevel = zapcore.InfoLevel
)

// Config selects the level, encoding and sink of a logger.
type Config struct {
	// Level is a zap level name such as "debug" or "warn". Empty means info.
	Level string

	// Format is "console" or "json". Empty means console.
	Format string

	// Writer receives encoded records. Nil means os.Stderr.
	Writer io.Writer
}

// New returns a logger for c. Records carry the caller, and error records
// carry a stack trace.
func New(c Config) (*zap.Logger, error) {
	level, err := ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.NameKey = "name"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch strings.ToLower(c.Format) {
	case "", FormatConsole:
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	case FormatJSON:
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	default:
		return nil, fmt.Errorf("logging: unknown format %q", c.Format)
	}

	core := zapcore.NewCore(encoder, writeSyncer(c.Writer), zap.NewAtomicLevelAt(level))
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// ParseLevel accepts zap level names in any case. Empty means info.
func ParseLevel(name string) (zapcore.Level, error) {
	if name == "" {
		return defaultLevel, nil
	}
	level, err := zapcore.ParseLevel(strings.ToLower(name))
	if err != nil {
		return defaultLevel, fmt.Errorf("logging: %w", err)
	}
	return level, nil
}

func writeSyncer(w io.Writer) zapcore.WriteSyncer {
	switch t := w.(type) {
	case nil:
		return zapcore.Lock(os.Stderr)
	case *os.File:
		return zapcore.Lock(t)
	case zapcore.WriteSyncer:
		return t
	default:
		return zapcore.AddSync(w)
	}
}
