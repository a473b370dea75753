package log

import (
	"github.com/rs/zerolog"
)

// ZerologAdapter writes façade events to a zerolog.Logger.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates a new ZerologAdapter that writes to the
// given zerolog.Logger.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// Log writes the event to the zerolog logger. Callback failures log
// at Error level, everything else at Debug.
func (a *ZerologAdapter) Log(event Event) {
	var e *zerolog.Event
	if event.Category == CategoryCallback || event.Error != "" {
		e = a.logger.Error()
	} else {
		e = a.logger.Debug()
	}

	e = e.Str("category", event.Category.String())
	if event.SessionID != "" {
		e = e.Str("session_id", event.SessionID)
	}
	if event.Operation != "" {
		e = e.Str("operation", event.Operation)
	}
	if event.KeyExpr != "" {
		e = e.Str("key_expr", event.KeyExpr)
	}
	if event.Detail != "" {
		e = e.Str("detail", event.Detail)
	}
	if event.Error != "" {
		e = e.Str("error", event.Error)
	}
	if !event.Timestamp.IsZero() {
		e = e.Time("event_time", event.Timestamp)
	}
	e.Msg("zlink")
}

// Compile-time interface satisfaction check.
var _ Logger = (*ZerologAdapter)(nil)
