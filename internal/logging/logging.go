// Package logging configures the process loggers. Core packages return
// structured results and never log; commands decide what to surface.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

var structuredLogger *slog.Logger
var humanReadableLogger *slog.Logger
var fileLogger *slog.Logger

const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

// Add trace and fatal level names.
var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelFatal: "FATAL",
}

func replaceLevelNames(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level := a.Value.Any().(slog.Level)
		levelLabel, exists := levelNames[level]
		if !exists {
			levelLabel = level.String()
		}
		a.Value = slog.StringValue(levelLabel)
	}
	return a
}

// Init initializes the logging system with structured and human-readable
// loggers. JSON goes to stdout, text to stderr.
func Init(level slog.Level) {
	structuredLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	}))
	humanReadableLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	}))
	slog.SetDefault(humanReadableLogger)
}

// SetOutput redirects the logger outputs, used by tests.
func SetOutput(structuredOutput, humanReadableOutput io.Writer, level slog.Level) {
	structuredLogger = slog.New(slog.NewJSONHandler(structuredOutput, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	}))
	humanReadableLogger = slog.New(slog.NewTextHandler(humanReadableOutput, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	}))
	slog.SetDefault(humanReadableLogger)
}

// Structured returns the globally configured structured (JSON) logger.
// Returns nil if Init() has not been called.
func Structured() *slog.Logger {
	return structuredLogger
}

// HumanReadable returns the globally configured human-readable (Text) logger.
// Returns nil if Init() has not been called.
func HumanReadable() *slog.Logger {
	return humanReadableLogger
}

// ForService creates a child logger with the 'service' attribute added.
// Returns nil if Init() has not been called.
func ForService(serviceName string) *slog.Logger {
	if humanReadableLogger == nil {
		return nil
	}
	return humanReadableLogger.With("service", serviceName)
}

// EnableFileLogging routes every record written through the convenience
// functions to a rotated log file in addition to the default logger. The
// returned close function detaches the file logger and closes the writer.
func EnableFileLogging(filePath, serviceName string, level slog.Level) (func() error, error) {
	logger, closeWriter, err := NewFileLogger(filePath, serviceName, level)
	if err != nil {
		return nil, err
	}
	fileLogger = logger
	return func() error {
		fileLogger = nil
		return closeWriter()
	}, nil
}

// Convenience functions using the default logger, mirrored to the file
// logger when one is enabled.

func Debug(msg string, args ...any) {
	slog.Debug(msg, args...)
	if fileLogger != nil {
		fileLogger.Debug(msg, args...)
	}
}

func Info(msg string, args ...any) {
	slog.Info(msg, args...)
	if fileLogger != nil {
		fileLogger.Info(msg, args...)
	}
}

func Warn(msg string, args ...any) {
	slog.Warn(msg, args...)
	if fileLogger != nil {
		fileLogger.Warn(msg, args...)
	}
}

func Error(msg string, args ...any) {
	slog.Error(msg, args...)
	if fileLogger != nil {
		fileLogger.Error(msg, args...)
	}
}

// Fatal logs a fatal message using the custom Fatal level and then exits.
func Fatal(msg string, args ...any) {
	slog.Log(context.TODO(), LevelFatal, msg, args...)
	if fileLogger != nil {
		fileLogger.Log(context.TODO(), LevelFatal, msg, args...)
	}
	os.Exit(1)
}

// NewFileLogger creates a slog.Logger writing rotated JSON logs to filePath
// with a 'service' attribute on every record. It returns the logger and a
// close function for the underlying writer.
func NewFileLogger(filePath, serviceName string, level slog.Level) (*slog.Logger, func() error, error) {
	// lumberjack does not create directories
	logDir := filepath.Dir(filePath)
	if logDir != "." {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
		}
	}

	logWriter := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    100, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
	}

	fileHandler := slog.NewJSONHandler(logWriter, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	})

	logger := slog.New(fileHandler).With("service", serviceName)

	return logger, logWriter.Close, nil
}
