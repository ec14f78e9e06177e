// Package observability provides logging helpers shared by the HTTP layer.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// requestIDKey is the context key for the request ID (X-Request-ID).
// Middleware sets it; the RequestContextHandler adds it to log records.
type requestIDKey struct{}

// RequestIDKey is the context key for storing the request ID.
var RequestIDKey = &requestIDKey{}

// RequestContextHandler wraps a slog.Handler and injects request_id from the
// context into each log record when present.
type RequestContextHandler struct {
	inner slog.Handler
}

// NewRequestContextHandler returns a handler that adds request_id to records.
func NewRequestContextHandler(inner slog.Handler) *RequestContextHandler {
	return &RequestContextHandler{inner: inner}
}

// Enabled reports whether the inner handler is enabled for the given level.
func (h *RequestContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle adds request_id from context to the record, then forwards to the inner handler.
func (h *RequestContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}

	if err := h.inner.Handle(ctx, r); err != nil {
		return fmt.Errorf("inner handler: %w", err)
	}

	return nil
}

// WithAttrs returns a handler whose attributes are the concatenation of the inner's and attrs.
func (h *RequestContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RequestContextHandler{inner: h.inner.WithAttrs(attrs)}
}

// WithGroup returns a handler for the given group.
func (h *RequestContextHandler) WithGroup(name string) slog.Handler {
	return &RequestContextHandler{inner: h.inner.WithGroup(name)}
}

// SetupLogging installs a JSON slog default logger at the given level,
// wrapped so request IDs flow from context into every record.
func SetupLogging(level string) {
	var logLevel slog.Level

	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	inner := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(NewRequestContextHandler(inner)))
}
