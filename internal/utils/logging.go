package utils

import (
	"io"
	"log/slog"
	"os"

	"github.com/sunmind/sunmind/internal/config"
)

// LogLevel defines log level types
type LogLevel string

// Log level constants - using values from config package
const (
	LogLevelDebug LogLevel = LogLevel(config.LogLevelDebug)
	LogLevelInfo  LogLevel = LogLevel(config.LogLevelInfo)
	LogLevelWarn  LogLevel = LogLevel(config.LogLevelWarn)
	LogLevelError LogLevel = LogLevel(config.LogLevelError)
)

// LogFormat defines log format types
type LogFormat string

// Log format constants - using values from config package
const (
	LogFormatText LogFormat = LogFormat(config.LogFormatText)
	LogFormatJSON LogFormat = LogFormat(config.LogFormatJSON)
)

// levelVar backs every logger built by SetupLogger so the level can be
// changed at runtime (config reload, PUT /api/v1/logging/level).
var levelVar = new(slog.LevelVar)

// GetLogLevel converts a string log level to slog.Level
func GetLogLevel(level string) slog.Level {
	switch level {
	case string(LogLevelDebug):
		return slog.LevelDebug
	case string(LogLevelWarn):
		return slog.LevelWarn
	case string(LogLevelError):
		return slog.LevelError
	case string(LogLevelInfo):
		fallthrough
	default:
		return slog.LevelInfo
	}
}

// LevelName is the inverse of GetLogLevel
func LevelName(level slog.Level) string {
	switch {
	case level <= slog.LevelDebug:
		return string(LogLevelDebug)
	case level <= slog.LevelInfo:
		return string(LogLevelInfo)
	case level <= slog.LevelWarn:
		return string(LogLevelWarn)
	default:
		return string(LogLevelError)
	}
}

// ValidateLogLevel ensures the provided level is valid, returning a default if not
func ValidateLogLevel(level string) string {
	switch level {
	case string(LogLevelDebug), string(LogLevelInfo), string(LogLevelWarn), string(LogLevelError):
		return level
	default:
		return string(LogLevelInfo)
	}
}

// ValidateLogFormat ensures the provided format is valid, returning a default if not
func ValidateLogFormat(format string) string {
	switch format {
	case string(LogFormatText), string(LogFormatJSON):
		return format
	default:
		return string(LogFormatText)
	}
}

// SetupLogger creates a logger writing to stderr whose level follows SetLevel.
func SetupLogger(level string, format string) *slog.Logger {
	return NewLogger(os.Stderr, level, format)
}

// NewLogger is SetupLogger with an explicit output.
func NewLogger(w io.Writer, level string, format string) *slog.Logger {
	SetLevel(level)

	opts := &slog.HandlerOptions{Level: levelVar, AddSource: true}
	var handler slog.Handler
	if ValidateLogFormat(format) == string(LogFormatJSON) {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// SetLevel changes the level of every logger created by SetupLogger.
func SetLevel(level string) {
	levelVar.Set(GetLogLevel(ValidateLogLevel(level)))
}

// CurrentLevel reports the active log level name.
func CurrentLevel() string {
	return LevelName(levelVar.Level())
}

// SetupErrorLogger creates a simple text logger for reporting errors during startup.
func SetupErrorLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// SetAsDefaultLogger sets a logger as the default logger
func SetAsDefaultLogger(logger *slog.Logger) {
	slog.SetDefault(logger)
}
