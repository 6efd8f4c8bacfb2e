// Package logging builds the *zap.Logger threaded through every other
// package (spec §2.1, no component ever reaches for a global logger).
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a console-encoded zap logger at the given level. An empty
// level falls back to MINISHELL_LOG, then RUST_LOG (spec §6 environment
// variables), then "info".
func New(level string) (*zap.Logger, error) {
	lvl := resolveLevel(level)

	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		zapcore.AddSync(os.Stderr),
		lvl,
	)
	return zap.New(core), nil
}

func resolveLevel(level string) zapcore.Level {
	if level == "" {
		level = os.Getenv("MINISHELL_LOG")
	}
	if level == "" {
		level = os.Getenv("RUST_LOG")
	}
	switch strings.ToLower(level) {
	case "debug":
		return zap.DebugLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	case "":
		return zap.InfoLevel
	default:
		return zap.InfoLevel
	}
}
