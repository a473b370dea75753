package inproc

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/zlink-protocol/zlink-go/pkg/config"
	"github.com/zlink-protocol/zlink-go/pkg/engine"
	"github.com/zlink-protocol/zlink-go/pkg/keyexpr"
	"github.com/zlink-protocol/zlink-go/pkg/opts"
	"github.com/zlink-protocol/zlink-go/pkg/proto"
	"github.com/zlink-protocol/zlink-go/pkg/sample"
)

// pushQueueLen is the per-subscriber delivery queue capacity.
const pushQueueLen = 256

// blockTimeout bounds how long a blocking-policy submission waits for
// a congested subscriber before it is rejected. Variable so tests can
// shorten the wait.
var blockTimeout = 5 * time.Second

// Broker is one in-process overlay: every connection opened from it
// reaches every other. The zero value is not usable; construct with
// New or share Default().
type Broker struct {
	id proto.PeerID

	mu    sync.RWMutex
	conns map[*conn]struct{}

	// store holds the latest put per concrete key; deletes evict.
	store map[string]sample.Sample
}

// New creates an empty broker.
func New() *Broker {
	return &Broker{
		id:    proto.RandomPeerID(),
		conns: make(map[*conn]struct{}),
		store: make(map[string]sample.Sample),
	}
}

var (
	defaultBroker     *Broker
	defaultBrokerOnce sync.Once
)

// Default returns the process-wide shared broker.
func Default() *Broker {
	defaultBrokerOnce.Do(func() {
		defaultBroker = New()
	})
	return defaultBroker
}

// Compile-time interface satisfaction check.
var _ engine.Engine = (*Broker)(nil)

// Open establishes one connection on the broker.
func (b *Broker) Open(cfg config.Config) (engine.Conn, error) {
	role, err := cfg.Role()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrOpen, err)
	}

	c := &conn{
		broker:     b,
		id:         cfg.PeerID(),
		whatami:    role,
		subs:       make(map[*subscription]struct{}),
		queryables: make(map[*queryable]struct{}),
		publishers: make(map[*publisherReg]struct{}),
	}

	b.mu.Lock()
	b.conns[c] = struct{}{}
	b.mu.Unlock()

	return c, nil
}

// remove detaches a closed connection.
func (b *Broker) remove(c *conn) {
	b.mu.Lock()
	delete(b.conns, c)
	b.mu.Unlock()
}

// route stores and fans out one publication. The sample has already
// been copied through its wire form by the submitting connection.
// A congested subscriber does not cut the fan-out short: every
// remaining target is still offered the sample, and the first delivery
// error is returned afterwards.
func (b *Broker) route(src *conn, s sample.Sample, cfg opts.WriteConfig) error {
	b.mu.Lock()
	switch s.Kind {
	case sample.KindPut:
		b.store[s.KeyExpr.String()] = s
	case sample.KindDelete:
		delete(b.store, s.KeyExpr.String())
	}
	var targets []*subscription
	for c := range b.conns {
		c.mu.Lock()
		for sub := range c.subs {
			targets = append(targets, sub)
		}
		c.mu.Unlock()
	}
	b.mu.Unlock()

	var firstErr error
	for _, sub := range targets {
		if sub.conn == src && !cfg.LocalRouting {
			continue
		}
		if sub.cfg.Local && sub.conn != src {
			continue
		}
		if !sub.key.Intersects(s.KeyExpr) {
			continue
		}
		if err := sub.offer(s, cfg.CongestionControl); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// query answers one distributed query. It runs on its own goroutine;
// registration already returned to the caller.
func (b *Broker) query(src *conn, sel keyexpr.Selector, cfg opts.GetConfig, emit func(sample.Reply)) {
	cons := newConsolidator(cfg.Consolidation, emit)

	// The broker's value store answers first.
	b.mu.RLock()
	var stored []sample.Sample
	for key, s := range b.store {
		if sel.KeyExpr().Intersects(keyexpr.MustNew(key)) {
			stored = append(stored, s)
		}
	}
	b.mu.RUnlock()
	sort.Slice(stored, func(i, j int) bool {
		return stored[i].KeyExpr.String() < stored[j].KeyExpr.String()
	})
	for _, s := range stored {
		cons.offer(sample.Reply{Sample: s, Replier: b.id})
	}

	// Then matching queryables, per the query target.
	b.mu.RLock()
	var all, complete []*queryable
	for c := range b.conns {
		c.mu.Lock()
		for q := range c.queryables {
			if !q.key.Intersects(sel.KeyExpr()) {
				continue
			}
			if q.conn == src && !cfg.LocalRouting {
				continue
			}
			all = append(all, q)
			if q.cfg.Complete {
				complete = append(complete, q)
			}
		}
		c.mu.Unlock()
	}
	b.mu.RUnlock()

	var selected []*queryable
	switch cfg.Target {
	case opts.TargetAll:
		selected = all
	case opts.TargetAllComplete:
		selected = complete
	default: // best matching
		selected = complete
		if len(selected) == 0 {
			selected = all
		}
	}
	sort.Slice(selected, func(i, j int) bool {
		return selected[i].conn.id.String() < selected[j].conn.id.String()
	})

	for _, q := range selected {
		replier := q.conn.id
		recv := engine.NewQuery(sel, func(r sample.Reply) error {
			if r.OK() {
				r.Replier = replier
			}
			cons.offer(r)
			return nil
		})
		q.cb(recv)
		recv.Finish()
	}

	cons.flush()
}

// routersOf lists connected routers other than self, ordered by ID.
func (b *Broker) routersOf(self *conn) []proto.PeerID {
	return b.peersWhere(self, func(c *conn) bool {
		return c.whatami == proto.WhatAmIRouter
	})
}

// peersOf lists connected non-router peers other than self, ordered
// by ID.
func (b *Broker) peersOf(self *conn) []proto.PeerID {
	return b.peersWhere(self, func(c *conn) bool {
		return c.whatami != proto.WhatAmIRouter
	})
}

func (b *Broker) peersWhere(self *conn, keep func(*conn) bool) []proto.PeerID {
	b.mu.RLock()
	ids := make([]proto.PeerID, 0, len(b.conns))
	for c := range b.conns {
		if c != self && keep(c) {
			ids = append(ids, c.id)
		}
	}
	b.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
