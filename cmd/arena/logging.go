package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const logFileName = "arena.log"

// setupLogging writes JSON logs to dir/arena.log when debug is set and discards otherwise
// The terminal belongs to the spectator, so logs never go to stderr
func setupLogging(debug bool, dir string) (*zap.Logger, error) {
	if !debug {
		return zap.NewNop(), nil
	}
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create log directory")
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{filepath.Join(dir, logFileName)}
	cfg.ErrorOutputPaths = []string{filepath.Join(dir, logFileName)}
	cfg.Sampling = nil

	log, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return log, nil
}
