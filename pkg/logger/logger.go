package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey ContextKey = "request_id"
	// FormIDKey is the context key for the form instance being edited
	FormIDKey ContextKey = "form_id"
	// RecordKindKey is the context key for the record kind of that form
	RecordKindKey ContextKey = "record_kind"
)

// Config holds logger configuration
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// Init initializes the global slog logger with the given configuration
func Init(cfg *Config) {
	slog.SetDefault(New(os.Stdout, cfg))
}

// New builds a logger writing to w without touching the global default
func New(w io.Writer, cfg *Config) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// WithForm returns a context carrying the form instance and record kind
func WithForm(ctx context.Context, formID, kind string) context.Context {
	ctx = context.WithValue(ctx, FormIDKey, formID)
	return context.WithValue(ctx, RecordKindKey, kind)
}

// WithContext returns a logger with context values extracted
func WithContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		logger = logger.With("request_id", requestID)
	}
	if formID, ok := ctx.Value(FormIDKey).(string); ok && formID != "" {
		logger = logger.With("form_id", formID)
	}
	if kind, ok := ctx.Value(RecordKindKey).(string); ok && kind != "" {
		logger = logger.With("record_kind", kind)
	}

	return logger
}

// Info logs at info level with context
func Info(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Info(msg, args...)
}

// Debug logs at debug level with context
func Debug(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Debug(msg, args...)
}

// Warn logs at warn level with context
func Warn(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Warn(msg, args...)
}

// Error logs at error level with context
func Error(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Error(msg, args...)
}
