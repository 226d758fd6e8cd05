// Package logger is a thin facade over the process-wide slog logger, which
// main wires to the zap core through a zapslog handler.
package logger

import (
	"log/slog"
	"os"
)

// Debug logs a message at DebugLevel.
func Debug(msg string, args ...any) {
	slog.Default().Debug(msg, args...)
}

// Info logs a message at InfoLevel.
func Info(msg string, args ...any) {
	slog.Default().Info(msg, args...)
}

// Warn logs a message at WarnLevel.
func Warn(msg string, args ...any) {
	slog.Default().Warn(msg, args...)
}

// Error logs a message at ErrorLevel.
func Error(msg string, args ...any) {
	slog.Default().Error(msg, args...)
}

// Fatal logs a message at ErrorLevel then exits.
func Fatal(msg string, args ...any) {
	slog.Default().Error(msg, args...)
	os.Exit(1)
}
