package inproc

import (
	"fmt"
	"sync"
	"time"

	"github.com/zlink-protocol/zlink-go/pkg/engine"
	"github.com/zlink-protocol/zlink-go/pkg/keyexpr"
	"github.com/zlink-protocol/zlink-go/pkg/opts"
	"github.com/zlink-protocol/zlink-go/pkg/sample"
)

// subscription is a declared subscriber registration. Push-mode
// subscriptions drain a bounded queue on their own goroutine so each
// subscriber sees samples in arrival order; pull-mode subscriptions
// buffer until Pull.
type subscription struct {
	conn *conn
	key  keyexpr.KeyExpr
	mode engine.SubscriberMode
	cfg  opts.SubscriberConfig
	cb   func(sample.Sample)

	// push mode
	queue chan sample.Sample
	done  chan struct{}

	// pull mode
	mu  sync.Mutex
	buf []sample.Sample

	once sync.Once
}

func newSubscription(c *conn, k keyexpr.KeyExpr, mode engine.SubscriberMode, cfg opts.SubscriberConfig, cb func(sample.Sample)) *subscription {
	sub := &subscription{
		conn: c,
		key:  k,
		mode: mode,
		cfg:  cfg,
		cb:   cb,
		done: make(chan struct{}),
	}
	if mode == engine.ModePush {
		sub.queue = make(chan sample.Sample, pushQueueLen)
		go sub.dispatch()
	}
	return sub
}

// dispatch delivers queued samples until the subscription is
// undeclared.
func (s *subscription) dispatch() {
	for {
		select {
		case smp := <-s.queue:
			s.cb(smp)
		case <-s.done:
			return
		}
	}
}

// offer hands one sample to the subscription, applying the
// publication's congestion policy when the queue is full.
func (s *subscription) offer(smp sample.Sample, cc opts.CongestionControl) error {
	select {
	case <-s.done:
		return nil
	default:
	}

	if s.mode == engine.ModePull {
		s.mu.Lock()
		s.buf = append(s.buf, smp)
		s.mu.Unlock()
		return nil
	}

	select {
	case s.queue <- smp:
		return nil
	default:
	}

	if cc == opts.CongestionDrop {
		return nil // dropped silently, per policy
	}

	select {
	case s.queue <- smp:
		return nil
	case <-s.done:
		return nil
	case <-time.After(blockTimeout):
		return fmt.Errorf("%w: subscriber on %q", engine.ErrCongestion, s.key)
	}
}

// Pull delivers all currently buffered samples in arrival order, then
// returns. No-op for push-mode subscriptions. After Undeclare it
// delivers nothing.
func (s *subscription) Pull() error {
	if s.conn.closed.Load() {
		return engine.ErrClosed
	}
	select {
	case <-s.done:
		return nil
	default:
	}
	if s.mode != engine.ModePull {
		return nil
	}

	s.mu.Lock()
	pending := s.buf
	s.buf = nil
	s.mu.Unlock()

	for _, smp := range pending {
		s.cb(smp)
	}
	return nil
}

// Undeclare stops delivery and discards any samples still buffered for
// pull. Idempotent; an in-flight delivery already dispatched to the
// handler is not interrupted.
func (s *subscription) Undeclare() error {
	s.once.Do(func() {
		close(s.done)
		s.mu.Lock()
		s.buf = nil
		s.mu.Unlock()
		s.conn.mu.Lock()
		delete(s.conn.subs, s)
		s.conn.mu.Unlock()
	})
	return nil
}

// Compile-time interface satisfaction check.
var _ engine.Subscription = (*subscription)(nil)
