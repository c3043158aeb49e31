// Package logging provides structured logging functionality.
package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days

	// ConsoleOut overrides the console destination. Defaults to stderr.
	ConsoleOut io.Writer
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	home, _ := os.UserHomeDir()
	return LogConfig{
		Level:      "info",
		Console:    true,
		File:       false,
		FilePath:   filepath.Join(home, ".config", "team-journal", "logs", "journal.log"),
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     30,
	}
}

// NewLogger creates a new logger with default configuration.
func NewLogger() zerolog.Logger {
	return NewLoggerWithConfig(DefaultLogConfig())
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		out := cfg.ConsoleOut
		if out == nil {
			out = os.Stderr
		}
		consoleWriter := zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			FormatLevel: func(i interface{}) string {
				if ll, ok := i.(string); ok {
					switch ll {
					case "debug":
						return "\033[36mDBG\033[0m"
					case "info":
						return "\033[32mINF\033[0m"
					case "warn":
						return "\033[33mWRN\033[0m"
					case "error":
						return "\033[31mERR\033[0m"
					default:
						return ll
					}
				}
				return "???"
			},
		}
		writers = append(writers, consoleWriter)
	}

	// File writer with rotation
	if cfg.File {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			fileWriter := &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			}
			writers = append(writers, fileWriter)
		}
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = io.Discard
	case 1:
		writer = writers[0]
	default:
		writer = zerolog.MultiLevelWriter(writers...)
	}

	return zerolog.New(writer).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a config level name to a zerolog level. Unknown names mean info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ValidLevel reports whether level names a supported log level.
func ValidLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// ContextKey is the type for context keys.
type ContextKey string

const (
	// LoggerKey is the context key for the logger.
	LoggerKey ContextKey = "logger"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context.
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}

// WithUserID adds the acting user to the logger context.
func WithUserID(logger zerolog.Logger, userID string) zerolog.Logger {
	return logger.With().Str("user_id", userID).Logger()
}

// WithTradeID adds a trade ID to the logger context.
func WithTradeID(logger zerolog.Logger, tradeID string) zerolog.Logger {
	return logger.With().Str("trade_id", tradeID).Logger()
}

// WithOperation adds an operation name to the logger context.
func WithOperation(logger zerolog.Logger, operation string) zerolog.Logger {
	return logger.With().Str("operation", operation).Logger()
}

// LogTradeSubmitted logs a journaled trade.
func LogTradeSubmitted(logger zerolog.Logger, tradeID, userID, pair string, result float64) {
	logger.Info().
		Str("event", "trade_submitted").
		Str("trade_id", tradeID).
		Str("user_id", userID).
		Str("pair", pair).
		Float64("result", result).
		Msg("Trade submitted")
}

// LogReview logs a mentor decision on a trade.
func LogReview(logger zerolog.Logger, tradeID, mentorID, decision string) {
	logger.Info().
		Str("event", "review").
		Str("trade_id", tradeID).
		Str("mentor_id", mentorID).
		Str("decision", decision).
		Msg("Trade reviewed")
}

// LogRiskLock logs a submission blocked by the daily risk lock.
func LogRiskLock(logger zerolog.Logger, userID string, totalR, limit float64) {
	logger.Warn().
		Str("event", "risk_lock").
		Str("user_id", userID).
		Float64("total_r", totalR).
		Float64("limit", limit).
		Msg("Submission blocked by daily risk lock")
}

// LogRequest logs a completed HTTP request.
func LogRequest(logger zerolog.Logger, method, path string, status int, duration time.Duration, err error) {
	level := zerolog.InfoLevel
	switch {
	case status >= 500:
		level = zerolog.ErrorLevel
	case status >= 400:
		level = zerolog.WarnLevel
	}
	event := logger.WithLevel(level).
		Str("event", "http_request").
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Dur("duration", duration)

	if err != nil {
		event.Err(err).Msg("Request failed")
	} else {
		event.Msg("Request completed")
	}
}
