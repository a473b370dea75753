package session

import (
	"sync"
	"time"

	"github.com/zlink-protocol/zlink-go/pkg/bridge"
	"github.com/zlink-protocol/zlink-go/pkg/engine"
	"github.com/zlink-protocol/zlink-go/pkg/keyexpr"
	"github.com/zlink-protocol/zlink-go/pkg/log"
	"github.com/zlink-protocol/zlink-go/pkg/opts"
	"github.com/zlink-protocol/zlink-go/pkg/sample"
)

// Publisher is bound to one key expression and one session. Put and
// Delete reuse the bound key expression. Its configuration is fixed
// at declaration.
type Publisher struct {
	core *core
	key  keyexpr.KeyExpr
	cfg  opts.PublisherConfig
	reg  engine.Registration
	once sync.Once
}

// DeclarePublisher registers a publication intent on key. Recognized
// options: local_routing, priority, congestion_control.
func (s *Session) DeclarePublisher(key keyexpr.KeyExpr, options opts.Options) (*Publisher, error) {
	cfg := opts.DefaultPublisherConfig()
	if err := cfg.Apply(options); err != nil {
		return nil, err
	}
	reg, err := s.core.conn.DeclarePublisher(key, cfg)
	if err != nil {
		return nil, err
	}
	s.core.retain()
	s.logDeclare("declare_publisher", key)
	return &Publisher{core: s.core, key: key, cfg: cfg, reg: reg}, nil
}

// KeyExpr returns the bound key expression.
func (p *Publisher) KeyExpr() keyexpr.KeyExpr { return p.key }

// Put publishes value on the bound key expression.
func (p *Publisher) Put(value sample.Value) error {
	return p.write(value, sample.KindPut)
}

// Delete publishes a deletion marker on the bound key expression.
func (p *Publisher) Delete() error {
	return p.write(sample.Value{}, sample.KindDelete)
}

func (p *Publisher) write(value sample.Value, kind sample.Kind) error {
	return p.core.conn.Publish(sample.Sample{
		KeyExpr:   p.key,
		Value:     value,
		Kind:      kind,
		Timestamp: time.Now(),
		Source:    p.core.conn.ID(),
	}, opts.WriteConfig{
		Kind:              kind,
		CongestionControl: p.cfg.CongestionControl,
		Priority:          p.cfg.Priority,
		LocalRouting:      p.cfg.LocalRouting,
	})
}

// Undeclare releases the publisher. Idempotent.
func (p *Publisher) Undeclare() error {
	var err error
	p.once.Do(func() {
		err = p.reg.Undeclare()
		if rerr := p.core.release(); err == nil {
			err = rerr
		}
	})
	return err
}

// Subscriber is bound to one key expression and one handler, invoked
// once per matching incoming sample for the subscriber's lifetime.
type Subscriber struct {
	core *core
	key  keyexpr.KeyExpr
	sub  engine.Subscription
	once sync.Once
}

// DeclareSubscriber registers handler for samples matching key.
// Recognized options: local, reliability.
func (s *Session) DeclareSubscriber(key keyexpr.KeyExpr, handler func(sample.Sample), options opts.Options) (*Subscriber, error) {
	cfg := opts.DefaultSubscriberConfig()
	if err := cfg.Apply(options); err != nil {
		return nil, err
	}
	sub, err := s.declareSubscriber(key, engine.ModePush, cfg, handler)
	if err != nil {
		return nil, err
	}
	s.logDeclare("declare_subscriber", key)
	return sub, nil
}

func (s *Session) declareSubscriber(key keyexpr.KeyExpr, mode engine.SubscriberMode, cfg opts.SubscriberConfig, handler func(sample.Sample)) (*Subscriber, error) {
	br, err := bridge.New(handler, s.core.logger)
	if err != nil {
		return nil, err
	}
	sub, err := s.core.conn.DeclareSubscriber(key, mode, cfg, br.Invoke)
	if err != nil {
		return nil, err
	}
	s.core.retain()
	return &Subscriber{core: s.core, key: key, sub: sub}, nil
}

// KeyExpr returns the bound key expression.
func (s *Subscriber) KeyExpr() keyexpr.KeyExpr { return s.key }

// Undeclare stops further handler invocations and releases the
// subscriber. Idempotent.
func (s *Subscriber) Undeclare() error {
	var err error
	s.once.Do(func() {
		err = s.sub.Undeclare()
		if rerr := s.core.release(); err == nil {
			err = rerr
		}
	})
	return err
}

// PullSubscriber is a subscriber whose deliveries are buffered until
// an explicit Pull drains them. No sample reaches the handler except
// as a direct consequence of a Pull call.
type PullSubscriber struct {
	Subscriber
}

// DeclarePullSubscriber registers handler for samples matching key,
// buffered until Pull. Recognized options: local, reliability.
func (s *Session) DeclarePullSubscriber(key keyexpr.KeyExpr, handler func(sample.Sample), options opts.Options) (*PullSubscriber, error) {
	cfg := opts.DefaultSubscriberConfig()
	if err := cfg.Apply(options); err != nil {
		return nil, err
	}
	sub, err := s.declareSubscriber(key, engine.ModePull, cfg, handler)
	if err != nil {
		return nil, err
	}
	s.logDeclare("declare_pull_subscriber", key)
	return &PullSubscriber{Subscriber: *sub}, nil
}

// Pull delivers all currently buffered samples to the handler in
// arrival order, then returns. Returns immediately if none are
// buffered; fails only on a broken connection.
func (p *PullSubscriber) Pull() error {
	if err := p.sub.Pull(); err != nil {
		return err
	}
	p.core.logger.Log(log.Event{
		Category:  log.CategorySubmit,
		SessionID: p.core.conn.ID().String(),
		Operation: "pull",
		KeyExpr:   p.key.String(),
	})
	return nil
}

// Queryable is bound to one key expression and one handler, invoked
// once per matching incoming query. The handler answers through the
// query's reply interface.
type Queryable struct {
	core *core
	key  keyexpr.KeyExpr
	reg  engine.Registration
	once sync.Once
}

// DeclareQueryable registers handler for queries matching key.
// Recognized options: complete.
func (s *Session) DeclareQueryable(key keyexpr.KeyExpr, handler func(*engine.Query), options opts.Options) (*Queryable, error) {
	cfg := opts.DefaultQueryableConfig()
	if err := cfg.Apply(options); err != nil {
		return nil, err
	}
	br, err := bridge.New(handler, s.core.logger)
	if err != nil {
		return nil, err
	}
	reg, err := s.core.conn.DeclareQueryable(key, cfg, br.Invoke)
	if err != nil {
		return nil, err
	}
	s.core.retain()
	s.logDeclare("declare_queryable", key)
	return &Queryable{core: s.core, key: key, reg: reg}, nil
}

// KeyExpr returns the bound key expression.
func (q *Queryable) KeyExpr() keyexpr.KeyExpr { return q.key }

// Undeclare stops further handler invocations and releases the
// queryable. Idempotent.
func (q *Queryable) Undeclare() error {
	var err error
	q.once.Do(func() {
		err = q.reg.Undeclare()
		if rerr := q.core.release(); err == nil {
			err = rerr
		}
	})
	return err
}

func (s *Session) logDeclare(op string, key keyexpr.KeyExpr) {
	s.core.logger.Log(log.Event{
		Category:  log.CategorySession,
		SessionID: s.ID().String(),
		Operation: op,
		KeyExpr:   key.String(),
	})
}
