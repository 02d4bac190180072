// Package logging sets up the process logger: a console core on stderr and a
// rotating file under a log directory.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	FileName   = "log.txt"
	MaxBackups = 7
	// DefaultMaxSize is the log file size in megabytes that triggers rotation.
	DefaultMaxSize = 100
)

type options struct {
	level      zapcore.Level
	maxSizeMB  int
	console    io.Writer
	maxBackups int
}

type Option func(*options)

func WithLevel(level zapcore.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithMaxSize sets the size in megabytes at which the log file is rotated.
func WithMaxSize(mb int) Option {
	return func(o *options) {
		o.maxSizeMB = mb
	}
}

func WithConsole(w io.Writer) Option {
	return func(o *options) {
		o.console = w
	}
}

// Setup creates dir and returns a logger writing to the console and to
// dir/log.txt, keeping MaxBackups rotated files. Callers own the returned
// close func and should call it before exit.
func Setup(dir string, opts ...Option) (*zap.Logger, func() error, error) {
	o := options{
		level:      zapcore.InfoLevel,
		maxSizeMB:  DefaultMaxSize,
		console:    os.Stderr,
		maxBackups: MaxBackups,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("log dir: %w", err)
	}

	file := &lumberjack.Logger{
		Filename:   filepath.Join(dir, FileName),
		MaxSize:    o.maxSizeMB,
		MaxBackups: o.maxBackups,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(o.console),
			o.level,
		),
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(file),
			o.level,
		),
	)

	logger := zap.New(core)
	closer := func() error {
		_ = logger.Sync()
		return file.Close()
	}
	return logger, closer, nil
}
