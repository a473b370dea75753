package inproc

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zlink-protocol/zlink-go/pkg/engine"
	"github.com/zlink-protocol/zlink-go/pkg/keyexpr"
	"github.com/zlink-protocol/zlink-go/pkg/opts"
	"github.com/zlink-protocol/zlink-go/pkg/proto"
	"github.com/zlink-protocol/zlink-go/pkg/sample"
)

// conn is one connection on a broker.
type conn struct {
	broker  *Broker
	id      proto.PeerID
	whatami proto.WhatAmI

	closed atomic.Bool

	mu         sync.Mutex
	subs       map[*subscription]struct{}
	queryables map[*queryable]struct{}
	publishers map[*publisherReg]struct{}
}

// Compile-time interface satisfaction check.
var _ engine.Conn = (*conn)(nil)

func (c *conn) ID() proto.PeerID { return c.id }

func (c *conn) WhatAmI() proto.WhatAmI { return c.whatami }

// Publish submits one sample. The sample is round-tripped through its
// CBOR wire form so receivers hold an independent copy.
func (c *conn) Publish(s sample.Sample, cfg opts.WriteConfig) error {
	if c.closed.Load() {
		return engine.ErrClosed
	}
	if s.KeyExpr.IsWild() {
		return fmt.Errorf("%w: %q", engine.ErrWildPublication, s.KeyExpr)
	}

	data, err := sample.EncodeSample(s)
	if err != nil {
		return fmt.Errorf("failed to encode sample: %w", err)
	}
	copied, err := sample.DecodeSample(data)
	if err != nil {
		return fmt.Errorf("failed to decode sample: %w", err)
	}

	return c.broker.route(c, copied, cfg)
}

// Query registers a reply callback and submits the query. Replies
// arrive on a broker goroutine after Query returns.
func (c *conn) Query(sel keyexpr.Selector, cfg opts.GetConfig, cb func(sample.Reply)) error {
	if c.closed.Load() {
		return engine.ErrClosed
	}
	go c.broker.query(c, sel, cfg, cb)
	return nil
}

// DeclareKeyExpr returns an optimized handle for the expression.
// In-process there is nothing to optimize beyond the canonization New
// already performed.
func (c *conn) DeclareKeyExpr(k keyexpr.KeyExpr) (keyexpr.KeyExpr, error) {
	if c.closed.Load() {
		return keyexpr.KeyExpr{}, engine.ErrClosed
	}
	return keyexpr.Optimized(k), nil
}

// DeclarePublisher registers a publication intent.
func (c *conn) DeclarePublisher(k keyexpr.KeyExpr, cfg opts.PublisherConfig) (engine.Registration, error) {
	if c.closed.Load() {
		return nil, engine.ErrClosed
	}
	if k.IsWild() {
		return nil, fmt.Errorf("%w: %q", engine.ErrWildPublication, k)
	}
	p := &publisherReg{conn: c, key: k, cfg: cfg}
	c.mu.Lock()
	c.publishers[p] = struct{}{}
	c.mu.Unlock()
	return p, nil
}

// DeclareSubscriber registers cb for samples matching k.
func (c *conn) DeclareSubscriber(k keyexpr.KeyExpr, mode engine.SubscriberMode, cfg opts.SubscriberConfig, cb func(sample.Sample)) (engine.Subscription, error) {
	if c.closed.Load() {
		return nil, engine.ErrClosed
	}
	sub := newSubscription(c, k, mode, cfg, cb)
	c.mu.Lock()
	c.subs[sub] = struct{}{}
	c.mu.Unlock()
	return sub, nil
}

// DeclareQueryable registers cb for queries matching k.
func (c *conn) DeclareQueryable(k keyexpr.KeyExpr, cfg opts.QueryableConfig, cb func(*engine.Query)) (engine.Registration, error) {
	if c.closed.Load() {
		return nil, engine.ErrClosed
	}
	q := &queryable{conn: c, key: k, cfg: cfg, cb: cb}
	c.mu.Lock()
	c.queryables[q] = struct{}{}
	c.mu.Unlock()
	return q, nil
}

// RoutersID enumerates currently known routers.
func (c *conn) RoutersID() []proto.PeerID { return c.broker.routersOf(c) }

// PeersID enumerates currently known non-router peers.
func (c *conn) PeersID() []proto.PeerID { return c.broker.peersOf(c) }

// Close releases the connection and undeclares everything on it.
func (c *conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.mu.Lock()
	subs := make([]*subscription, 0, len(c.subs))
	for s := range c.subs {
		subs = append(subs, s)
	}
	queryables := make([]*queryable, 0, len(c.queryables))
	for q := range c.queryables {
		queryables = append(queryables, q)
	}
	publishers := make([]*publisherReg, 0, len(c.publishers))
	for p := range c.publishers {
		publishers = append(publishers, p)
	}
	c.mu.Unlock()

	for _, s := range subs {
		_ = s.Undeclare()
	}
	for _, q := range queryables {
		_ = q.Undeclare()
	}
	for _, p := range publishers {
		_ = p.Undeclare()
	}

	c.broker.remove(c)
	return nil
}

// publisherReg is a declared publisher registration.
type publisherReg struct {
	conn *conn
	key  keyexpr.KeyExpr
	cfg  opts.PublisherConfig
	once sync.Once
}

// Undeclare releases the registration. Idempotent.
func (p *publisherReg) Undeclare() error {
	p.once.Do(func() {
		p.conn.mu.Lock()
		delete(p.conn.publishers, p)
		p.conn.mu.Unlock()
	})
	return nil
}

// queryable is a declared queryable registration.
type queryable struct {
	conn *conn
	key  keyexpr.KeyExpr
	cfg  opts.QueryableConfig
	cb   func(*engine.Query)
	once sync.Once
}

// Undeclare releases the registration. Idempotent.
func (q *queryable) Undeclare() error {
	q.once.Do(func() {
		q.conn.mu.Lock()
		delete(q.conn.queryables, q)
		q.conn.mu.Unlock()
	})
	return nil
}
