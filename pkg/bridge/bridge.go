package bridge

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/zlink-protocol/zlink-go/pkg/log"
)

// Bridge errors.
var (
	ErrNilHandler = errors.New("handler must not be nil")
)

// FatalFunc terminates the process after a handler failure has been
// reported. Tests substitute it to observe the failure path.
type FatalFunc func(format string, args ...any)

// defaultFatal writes the diagnostics to stderr and exits.
func defaultFatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// Bridge wraps one caller-supplied handler of events of type T.
// The handler is installed at construction and immutable afterwards.
type Bridge[T any] struct {
	fn     func(T)
	logger log.Logger
	fatal  FatalFunc
}

// New wraps a handler. A nil logger disables logging.
func New[T any](fn func(T), logger log.Logger) (*Bridge[T], error) {
	return newBridge(fn, logger, defaultFatal)
}

// NewWithFatal is like New with a substitute termination hook.
// Intended for tests of the failure path.
func NewWithFatal[T any](fn func(T), logger log.Logger, fatal FatalFunc) (*Bridge[T], error) {
	if fatal == nil {
		fatal = defaultFatal
	}
	return newBridge(fn, logger, fatal)
}

func newBridge[T any](fn func(T), logger log.Logger, fatal FatalFunc) (*Bridge[T], error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Bridge[T]{fn: fn, logger: logger, fatal: fatal}, nil
}

// Invoke runs the handler synchronously on the calling goroutine.
// If the handler panics, the panic value and stack are reported and
// the process is terminated; Invoke never re-panics into the caller.
func (b *Bridge[T]) Invoke(v T) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			b.logger.Log(log.Event{
				Category: log.CategoryCallback,
				Error:    fmt.Sprintf("panic in handler: %v", r),
				Detail:   string(stack),
			})
			b.fatal("panic in event handler: %v\n%s", r, stack)
		}
	}()
	b.fn(v)
}
