package inproc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zlink-protocol/zlink-go/pkg/keyexpr"
	"github.com/zlink-protocol/zlink-go/pkg/opts"
	"github.com/zlink-protocol/zlink-go/pkg/sample"
)

func reply(key, value string, ts time.Time) sample.Reply {
	return sample.Reply{Sample: sample.Sample{
		KeyExpr:   keyexpr.MustNew(key),
		Value:     sample.StringValue(value),
		Kind:      sample.KindPut,
		Timestamp: ts,
	}}
}

func TestConsolidationNone(t *testing.T) {
	var out []sample.Reply
	c := newConsolidator(opts.ConsolidationNone, func(r sample.Reply) { out = append(out, r) })

	now := time.Now()
	c.offer(reply("k", "a", now))
	c.offer(reply("k", "b", now))
	c.flush()

	assert.Len(t, out, 2)
}

func TestConsolidationMonotonic(t *testing.T) {
	var out []string
	c := newConsolidator(opts.ConsolidationMonotonic, func(r sample.Reply) {
		out = append(out, r.Sample.Value.String())
	})

	now := time.Now()
	c.offer(reply("k", "first", now))
	c.offer(reply("k", "stale", now.Add(-time.Second)))
	c.offer(reply("k", "newer", now.Add(time.Second)))
	c.offer(reply("other", "independent", now))
	c.flush()

	assert.Equal(t, []string{"first", "newer", "independent"}, out)
}

func TestConsolidationLatest(t *testing.T) {
	var out []string
	c := newConsolidator(opts.ConsolidationLatest, func(r sample.Reply) {
		out = append(out, r.Sample.Value.String())
	})

	now := time.Now()
	c.offer(reply("k", "old", now.Add(-time.Second)))
	c.offer(reply("k", "new", now))
	assert.Empty(t, out, "latest policy holds replies until flush")

	c.flush()
	assert.Equal(t, []string{"new"}, out)
}

func TestConsolidationErrorsPassThrough(t *testing.T) {
	var out []sample.Reply
	c := newConsolidator(opts.ConsolidationLatest, func(r sample.Reply) { out = append(out, r) })

	c.offer(sample.Reply{Err: "bad"})
	assert.Len(t, out, 1, "error replies bypass consolidation")
}
