package observability

import (
	"context"
	"io"
	"log/slog"

	"git.home.luguber.info/inful/docharvest/internal/config"
	"git.home.luguber.info/inful/docharvest/internal/logfields"
)

// NewLogger builds the process logger. w must not be the protocol output stream:
// stdout carries responses, so the CLI passes stderr.
func NewLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// LogContext holds the request-scoped attributes attached to every log record.
type LogContext struct {
	RequestID string
	Mode      string
	Line      int
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithRequestID adds a request correlation ID to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	lc := extractLogContext(ctx)
	lc.RequestID = id
	return context.WithValue(ctx, logContextKey, lc)
}

// WithMode adds the protocol mode to the context.
func WithMode(ctx context.Context, mode string) context.Context {
	lc := extractLogContext(ctx)
	lc.Mode = mode
	return context.WithValue(ctx, logContextKey, lc)
}

// WithLine adds the 1-based input line number to the context.
func WithLine(ctx context.Context, line int) context.Context {
	lc := extractLogContext(ctx)
	lc.Line = line
	return context.WithValue(ctx, logContextKey, lc)
}

// GetContext returns the structured log context carried by ctx.
func GetContext(ctx context.Context) LogContext {
	return extractLogContext(ctx)
}

func extractLogContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

func getLogAttrs(ctx context.Context) []slog.Attr {
	lc := extractLogContext(ctx)
	attrs := []slog.Attr{}
	if lc.RequestID != "" {
		attrs = append(attrs, logfields.RequestID(lc.RequestID))
	}
	if lc.Mode != "" {
		attrs = append(attrs, logfields.Mode(lc.Mode))
	}
	if lc.Line > 0 {
		attrs = append(attrs, logfields.Line(lc.Line))
	}
	return attrs
}

func logContext(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	all := append(getLogAttrs(ctx), attrs...)
	slog.LogAttrs(ctx, level, msg, all...)
}

// InfoContext logs an info message with context information.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelInfo, msg, attrs)
}

// WarnContext logs a warning message with context information.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelWarn, msg, attrs)
}

// ErrorContext logs an error message with context information.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelError, msg, attrs)
}

// DebugContext logs a debug message with context information.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelDebug, msg, attrs)
}
