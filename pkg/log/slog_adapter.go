package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes façade events to an slog.Logger. Useful for
// development when you want to see session events in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given
// slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger. Callback failures log at
// Error level, everything else at Debug.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("category", event.Category.String()),
	}
	if event.SessionID != "" {
		attrs = append(attrs, slog.String("session_id", event.SessionID))
	}
	if event.Operation != "" {
		attrs = append(attrs, slog.String("operation", event.Operation))
	}
	if event.KeyExpr != "" {
		attrs = append(attrs, slog.String("key_expr", event.KeyExpr))
	}
	if event.Detail != "" {
		attrs = append(attrs, slog.String("detail", event.Detail))
	}
	if event.Error != "" {
		attrs = append(attrs, slog.String("error", event.Error))
	}
	if !event.Timestamp.IsZero() {
		attrs = append(attrs, slog.Time("event_time", event.Timestamp))
	}

	level := slog.LevelDebug
	if event.Category == CategoryCallback || event.Error != "" {
		level = slog.LevelError
	}
	a.logger.LogAttrs(context.Background(), level, "zlink", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
