package log

import "time"

// Event represents a façade log event captured at any layer.
type Event struct {
	// Timestamp when the event occurred. Loggers fill it in when left
	// zero.
	Timestamp time.Time

	// SessionID identifies the session, in peer-ID hex form.
	SessionID string

	// Category classifies the event.
	Category Category

	// Operation names the operation involved, if any
	// (e.g. "put", "get", "declare_subscriber", "pull").
	Operation string

	// KeyExpr is the key expression or selector involved, if any.
	KeyExpr string

	// Detail carries free-form event context.
	Detail string

	// Error carries the error message for failure events.
	Error string
}

// Category classifies a façade event.
type Category uint8

const (
	// CategorySession covers session open, clone and close.
	CategorySession Category = iota

	// CategorySubmit covers put/delete/get/declare submissions.
	CategorySubmit

	// CategoryDelivery covers samples, replies and queries handed to
	// caller handlers.
	CategoryDelivery

	// CategoryDiscovery covers scouting and peer announcements.
	CategoryDiscovery

	// CategoryCallback covers failures escaping caller handlers.
	CategoryCallback
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategorySession:
		return "SESSION"
	case CategorySubmit:
		return "SUBMIT"
	case CategoryDelivery:
		return "DELIVERY"
	case CategoryDiscovery:
		return "DISCOVERY"
	case CategoryCallback:
		return "CALLBACK"
	default:
		return "UNKNOWN"
	}
}
