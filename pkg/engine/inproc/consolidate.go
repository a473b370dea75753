package inproc

import (
	"sort"
	"time"

	"github.com/zlink-protocol/zlink-go/pkg/opts"
	"github.com/zlink-protocol/zlink-go/pkg/sample"
)

// consolidator applies a reply consolidation policy on the way to the
// caller's reply callback. Error replies always pass through.
// It is used from a single query goroutine and needs no locking.
type consolidator struct {
	mode opts.Consolidation
	emit func(sample.Reply)

	// monotonic: newest forwarded timestamp per key.
	newest map[string]time.Time

	// latest: newest pending reply per key, emitted at flush.
	pending map[string]sample.Reply
}

func newConsolidator(mode opts.Consolidation, emit func(sample.Reply)) *consolidator {
	return &consolidator{
		mode:    mode,
		emit:    emit,
		newest:  make(map[string]time.Time),
		pending: make(map[string]sample.Reply),
	}
}

// offer feeds one reply through the policy.
func (c *consolidator) offer(r sample.Reply) {
	if !r.OK() {
		c.emit(r)
		return
	}

	key := r.Sample.KeyExpr.String()
	switch c.mode {
	case opts.ConsolidationNone:
		c.emit(r)
	case opts.ConsolidationMonotonic:
		if ts, seen := c.newest[key]; !seen || r.Sample.Timestamp.After(ts) {
			c.newest[key] = r.Sample.Timestamp
			c.emit(r)
		}
	case opts.ConsolidationLatest:
		if prev, seen := c.pending[key]; !seen || r.Sample.Timestamp.After(prev.Sample.Timestamp) {
			c.pending[key] = r
		}
	}
}

// flush emits replies held back by the latest policy, in key order.
func (c *consolidator) flush() {
	if c.mode != opts.ConsolidationLatest {
		return
	}
	keys := make([]string, 0, len(c.pending))
	for k := range c.pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c.emit(c.pending[k])
	}
}
