// Package logging builds the zap loggers used by dagchat.
package logging

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogFileName is the file interactive sessions log to.
const LogFileName = "dagchat.log"

// Options selects where and how verbosely to log.
type Options struct {
	Verbose bool
	// Dir, when set, sends output to Dir/LogFileName instead of stderr.
	// The TUI owns the terminal so it always logs to a file.
	Dir string
}

// New builds a production zap logger. Verbose lowers the level to debug.
func New(opts Options) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if opts.Verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	if opts.Dir != "" {
		path := filepath.Join(opts.Dir, LogFileName)
		config.OutputPaths = []string{path}
		config.ErrorOutputPaths = []string{path}
		// File logs are read after the fact, keep info lines.
		if !opts.Verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
