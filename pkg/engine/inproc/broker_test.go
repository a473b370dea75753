package inproc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlink-protocol/zlink-go/pkg/config"
	"github.com/zlink-protocol/zlink-go/pkg/engine"
	"github.com/zlink-protocol/zlink-go/pkg/keyexpr"
	"github.com/zlink-protocol/zlink-go/pkg/opts"
	"github.com/zlink-protocol/zlink-go/pkg/sample"
)

const waitFor = 2 * time.Second

func openConn(t *testing.T, b *Broker, mode string) engine.Conn {
	t.Helper()
	c, err := b.Open(config.Config{Mode: mode})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func putSample(key string, value string) sample.Sample {
	return sample.Sample{
		KeyExpr:   keyexpr.MustNew(key),
		Value:     sample.StringValue(value),
		Kind:      sample.KindPut,
		Timestamp: time.Now(),
	}
}

func deleteSample(key string) sample.Sample {
	return sample.Sample{
		KeyExpr:   keyexpr.MustNew(key),
		Kind:      sample.KindDelete,
		Timestamp: time.Now(),
	}
}

func TestOpenInvalidMode(t *testing.T) {
	_, err := New().Open(config.Config{Mode: "gateway"})
	assert.ErrorIs(t, err, engine.ErrOpen)
}

func TestPublishSubscribeAcrossConns(t *testing.T) {
	b := New()
	pub := openConn(t, b, "peer")
	sub := openConn(t, b, "peer")

	got := make(chan sample.Sample, 8)
	_, err := sub.DeclareSubscriber(keyexpr.MustNew("demo/**"), engine.ModePush,
		opts.DefaultSubscriberConfig(), func(s sample.Sample) { got <- s })
	require.NoError(t, err)

	require.NoError(t, pub.Publish(putSample("demo/example", "42"), opts.DefaultPutConfig()))

	select {
	case s := <-got:
		assert.Equal(t, "demo/example", s.KeyExpr.String())
		assert.Equal(t, "42", s.Value.String())
		assert.Equal(t, sample.KindPut, s.Kind)
		assert.Equal(t, pub.ID(), s.Source)
	case <-time.After(waitFor):
		t.Fatal("sample not delivered")
	}
}

func TestPublishCopiesPayload(t *testing.T) {
	b := New()
	pub := openConn(t, b, "peer")
	sub := openConn(t, b, "peer")

	got := make(chan sample.Sample, 1)
	_, err := sub.DeclareSubscriber(keyexpr.MustNew("demo/a"), engine.ModePush,
		opts.DefaultSubscriberConfig(), func(s sample.Sample) { got <- s })
	require.NoError(t, err)

	payload := []byte("before")
	s := sample.Sample{
		KeyExpr:   keyexpr.MustNew("demo/a"),
		Value:     sample.NewValue(payload),
		Kind:      sample.KindPut,
		Timestamp: time.Now(),
	}
	require.NoError(t, pub.Publish(s, opts.DefaultPutConfig()))
	copy(payload, "mut...")

	select {
	case out := <-got:
		assert.Equal(t, "before", string(out.Value.Payload), "receiver must hold an independent copy")
	case <-time.After(waitFor):
		t.Fatal("sample not delivered")
	}
}

func TestPublishWildKeyRejected(t *testing.T) {
	b := New()
	pub := openConn(t, b, "peer")

	err := pub.Publish(putSample("demo/example", "x"), opts.DefaultPutConfig())
	require.NoError(t, err)

	s := putSample("demo/example", "x")
	s.KeyExpr = keyexpr.MustNew("demo/*")
	assert.ErrorIs(t, pub.Publish(s, opts.DefaultPutConfig()), engine.ErrWildPublication)
}

func TestLocalRoutingDisabledSkipsSameConn(t *testing.T) {
	b := New()
	c := openConn(t, b, "peer")
	other := openConn(t, b, "peer")

	same := make(chan sample.Sample, 1)
	_, err := c.DeclareSubscriber(keyexpr.MustNew("demo/a"), engine.ModePush,
		opts.DefaultSubscriberConfig(), func(s sample.Sample) { same <- s })
	require.NoError(t, err)

	remote := make(chan sample.Sample, 1)
	_, err = other.DeclareSubscriber(keyexpr.MustNew("demo/a"), engine.ModePush,
		opts.DefaultSubscriberConfig(), func(s sample.Sample) { remote <- s })
	require.NoError(t, err)

	cfg := opts.DefaultPutConfig()
	cfg.LocalRouting = false
	require.NoError(t, c.Publish(putSample("demo/a", "v"), cfg))

	select {
	case <-remote:
	case <-time.After(waitFor):
		t.Fatal("remote subscriber missed the sample")
	}
	select {
	case <-same:
		t.Fatal("same-conn subscriber must not receive with local routing off")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestLocalSubscriberOnlySeesOwnConn(t *testing.T) {
	b := New()
	c := openConn(t, b, "peer")
	other := openConn(t, b, "peer")

	got := make(chan sample.Sample, 2)
	cfg := opts.DefaultSubscriberConfig()
	cfg.Local = true
	_, err := c.DeclareSubscriber(keyexpr.MustNew("demo/a"), engine.ModePush, cfg,
		func(s sample.Sample) { got <- s })
	require.NoError(t, err)

	require.NoError(t, other.Publish(putSample("demo/a", "remote"), opts.DefaultPutConfig()))
	require.NoError(t, c.Publish(putSample("demo/a", "local"), opts.DefaultPutConfig()))

	select {
	case s := <-got:
		assert.Equal(t, "local", s.Value.String())
	case <-time.After(waitFor):
		t.Fatal("local publication not delivered")
	}
	select {
	case s := <-got:
		t.Fatalf("unexpected extra delivery: %v", s.Value)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTwoOverlappingSubscribersEachOnce(t *testing.T) {
	b := New()
	pub := openConn(t, b, "peer")
	sub := openConn(t, b, "peer")

	a := make(chan sample.Sample, 8)
	_, err := sub.DeclareSubscriber(keyexpr.MustNew("demo/**"), engine.ModePush,
		opts.DefaultSubscriberConfig(), func(s sample.Sample) { a <- s })
	require.NoError(t, err)

	bCh := make(chan sample.Sample, 8)
	_, err = sub.DeclareSubscriber(keyexpr.MustNew("demo/*"), engine.ModePush,
		opts.DefaultSubscriberConfig(), func(s sample.Sample) { bCh <- s })
	require.NoError(t, err)

	require.NoError(t, pub.Publish(putSample("demo/key", "once"), opts.DefaultPutConfig()))

	for _, ch := range []chan sample.Sample{a, bCh} {
		select {
		case <-ch:
		case <-time.After(waitFor):
			t.Fatal("subscriber missed the sample")
		}
		select {
		case <-ch:
			t.Fatal("subscriber received the sample twice")
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func collectReplies(t *testing.T, c engine.Conn, selector string, cfg opts.GetConfig, within time.Duration) []sample.Reply {
	t.Helper()
	sel, err := keyexpr.ParseSelector(selector)
	require.NoError(t, err)

	got := make(chan sample.Reply, 32)
	require.NoError(t, c.Query(sel, cfg, func(r sample.Reply) { got <- r }))

	var replies []sample.Reply
	timeout := time.After(within)
	for {
		select {
		case r := <-got:
			replies = append(replies, r)
		case <-timeout:
			return replies
		}
	}
}

func TestQueryAnswersFromStore(t *testing.T) {
	b := New()
	c := openConn(t, b, "peer")

	require.NoError(t, c.Publish(putSample("demo/example/a", "1"), opts.DefaultPutConfig()))
	require.NoError(t, c.Publish(putSample("demo/example/b", "2"), opts.DefaultPutConfig()))

	replies := collectReplies(t, c, "demo/example/**", opts.DefaultGetConfig(), 300*time.Millisecond)
	require.Len(t, replies, 2)
	assert.Equal(t, b.id, replies[0].Replier)
}

func TestQueryAfterDeleteYieldsNothing(t *testing.T) {
	b := New()
	c := openConn(t, b, "peer")

	require.NoError(t, c.Publish(putSample("demo/example", "v"), opts.DefaultPutConfig()))
	require.NoError(t, c.Publish(deleteSample("demo/example"), opts.DefaultDeleteConfig()))

	replies := collectReplies(t, c, "demo/example", opts.DefaultGetConfig(), 300*time.Millisecond)
	assert.Empty(t, replies)
}

func TestQueryLatestConsolidationDeduplicates(t *testing.T) {
	b := New()
	c := openConn(t, b, "peer")

	old := putSample("demo/example", "old")
	old.Timestamp = time.Now().Add(-time.Minute)
	require.NoError(t, c.Publish(old, opts.DefaultPutConfig()))
	require.NoError(t, c.Publish(putSample("demo/example", "new"), opts.DefaultPutConfig()))

	replies := collectReplies(t, c, "demo/example", opts.DefaultGetConfig(), 300*time.Millisecond)
	require.Len(t, replies, 1)
	assert.Equal(t, "new", replies[0].Sample.Value.String())
}

func TestQueryDispatchesToQueryables(t *testing.T) {
	b := New()
	querier := openConn(t, b, "client")
	server := openConn(t, b, "peer")

	_, err := server.DeclareQueryable(keyexpr.MustNew("calc/**"), opts.DefaultQueryableConfig(),
		func(q *engine.Query) {
			require.Equal(t, "calc/sum", q.KeyExpr().String())
			assert.Equal(t, "a=1", q.Parameters())
			_ = q.Reply(sample.Sample{
				KeyExpr:   keyexpr.MustNew("calc/sum"),
				Value:     sample.StringValue("3"),
				Kind:      sample.KindPut,
				Timestamp: time.Now(),
			})
		})
	require.NoError(t, err)

	cfg := opts.DefaultGetConfig()
	cfg.Consolidation = opts.ConsolidationNone
	replies := collectReplies(t, querier, "calc/sum?a=1", cfg, 300*time.Millisecond)
	require.Len(t, replies, 1)
	assert.Equal(t, "3", replies[0].Sample.Value.String())
	assert.Equal(t, server.ID(), replies[0].Replier)
}

func TestQueryTargetAllComplete(t *testing.T) {
	b := New()
	querier := openConn(t, b, "client")
	complete := openConn(t, b, "peer")
	partial := openConn(t, b, "peer")

	declare := func(c engine.Conn, isComplete bool, payload string) {
		cfg := opts.DefaultQueryableConfig()
		cfg.Complete = isComplete
		_, err := c.DeclareQueryable(keyexpr.MustNew("data/**"), cfg, func(q *engine.Query) {
			_ = q.Reply(sample.Sample{
				KeyExpr:   keyexpr.MustNew("data/item"),
				Value:     sample.StringValue(payload),
				Kind:      sample.KindPut,
				Timestamp: time.Now(),
			})
		})
		require.NoError(t, err)
	}
	declare(complete, true, "complete")
	declare(partial, false, "partial")

	cfg := opts.DefaultGetConfig()
	cfg.Consolidation = opts.ConsolidationNone
	cfg.Target = opts.TargetAllComplete
	replies := collectReplies(t, querier, "data/item", cfg, 300*time.Millisecond)
	require.Len(t, replies, 1)
	assert.Equal(t, "complete", replies[0].Sample.Value.String())

	cfg.Target = opts.TargetAll
	replies = collectReplies(t, querier, "data/item", cfg, 300*time.Millisecond)
	assert.Len(t, replies, 2)
}

func TestQueryErrorRepliesPassThrough(t *testing.T) {
	b := New()
	querier := openConn(t, b, "client")
	server := openConn(t, b, "peer")

	_, err := server.DeclareQueryable(keyexpr.MustNew("calc/div"), opts.DefaultQueryableConfig(),
		func(q *engine.Query) { _ = q.ReplyErr("division by zero") })
	require.NoError(t, err)

	replies := collectReplies(t, querier, "calc/div", opts.DefaultGetConfig(), 300*time.Millisecond)
	require.Len(t, replies, 1)
	assert.False(t, replies[0].OK())
	assert.Equal(t, "division by zero", replies[0].Err)
}

func TestClosedConnRejectsSubmission(t *testing.T) {
	b := New()
	c := openConn(t, b, "peer")
	require.NoError(t, c.Close())

	assert.ErrorIs(t, c.Publish(putSample("demo/a", "v"), opts.DefaultPutConfig()), engine.ErrClosed)
	assert.ErrorIs(t, c.Query(keyexpr.NewSelector(keyexpr.MustNew("demo/a"), ""),
		opts.DefaultGetConfig(), func(sample.Reply) {}), engine.ErrClosed)
	_, err := c.DeclareKeyExpr(keyexpr.MustNew("demo/a"))
	assert.ErrorIs(t, err, engine.ErrClosed)
}

func TestPeerEnumeration(t *testing.T) {
	b := New()
	self := openConn(t, b, "peer")
	openConn(t, b, "router")
	openConn(t, b, "router")
	openConn(t, b, "client")

	routers := self.RoutersID()
	require.Len(t, routers, 2)
	assert.LessOrEqual(t, routers[0].String(), routers[1].String(), "enumeration must be ordered")

	peers := self.PeersID()
	require.Len(t, peers, 1, "self must be excluded")
}

func TestDeclareKeyExprOptimizes(t *testing.T) {
	b := New()
	c := openConn(t, b, "peer")

	k, err := c.DeclareKeyExpr(keyexpr.MustNew("demo/example"))
	require.NoError(t, err)
	assert.True(t, k.IsOptimized())
	assert.Equal(t, "demo/example", k.String())
}

func TestDefaultBrokerShared(t *testing.T) {
	assert.Same(t, Default(), Default())
}
