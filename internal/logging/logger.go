// Package logging builds the zap loggers used for operational output.
// Results meant for the user go to stdout through the commands; everything
// routed here is diagnostic and goes to stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel maps a level name to a zap level. Unknown values default to info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New creates a logger writing to stderr.
func New(level, format string) (*zap.Logger, error) {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter creates a logger writing to w. format is "json" or "console".
func NewWithWriter(w io.Writer, level, format string) (*zap.Logger, error) {
	lvl := ParseLevel(level)

	var encCfg zapcore.EncoderConfig
	if lvl == zapcore.DebugLevel {
		encCfg = zap.NewDevelopmentEncoderConfig()
	} else {
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	var enc zapcore.Encoder
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	case "", "console", "text":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unsupported log format: %s (use console or json)", format)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), zap.NewAtomicLevelAt(lvl))
	opts := []zap.Option{zap.ErrorOutput(zapcore.AddSync(w))}
	if lvl == zapcore.DebugLevel {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(core, opts...), nil
}
