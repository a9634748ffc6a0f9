// Package logging builds the zap logger used by both binaries.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options mirrors the log section of the config file.
type Options struct {
	Level          string
	FilePath       string
	FileMaxSizeMB  int
	FileMaxFiles   int
	FileMaxAgeDays int
}

// New returns a production (JSON) logger, or a development (console)
// logger when Level is "debug". With FilePath set, entries are also
// written as JSON to a size-rotated file.
func New(opts Options) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if opts.Level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		level, lerr := zapcore.ParseLevel(opts.Level)
		if lerr != nil {
			return nil, fmt.Errorf("parsing log level %q: %w", opts.Level, lerr)
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
		logger, err = cfg.Build()
	}
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	if opts.FilePath == "" {
		return logger, nil
	}

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(rotatingFile(opts)),
		logger.Level(),
	)
	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	})), nil
}

func rotatingFile(opts Options) *lumberjack.Logger {
	maxSize := opts.FileMaxSizeMB
	if maxSize <= 0 {
		maxSize = 100
	}
	maxFiles := opts.FileMaxFiles
	if maxFiles <= 0 {
		maxFiles = 3
	}
	maxAge := opts.FileMaxAgeDays
	if maxAge <= 0 {
		maxAge = 30
	}
	return &lumberjack.Logger{
		Filename:   opts.FilePath,
		MaxSize:    maxSize,
		MaxBackups: maxFiles,
		MaxAge:     maxAge,
	}
}
