package oomlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a console-encoded zap logger. debug lowers the level to
// Debug; otherwise the daemon logs at Info and above, matching the
// error taxonomy's rule that transient per-PID failures are debug-only.
func New(debug bool) (*zap.Logger, error) {
	return build(debug, false)
}

// NewJSON builds the same logger with a JSON encoder instead of the
// plain console one, for deployments that ship logs to a collector
// rather than a terminal.
func NewJSON(debug bool) (*zap.Logger, error) {
	return build(debug, true)
}

func build(debug, json bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if json {
		cfg.Encoding = "json"
		cfg.EncoderConfig = zap.NewProductionEncoderConfig()
	} else {
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	return cfg.Build()
}
