package engine

import (
	"errors"
	"testing"

	"github.com/zlink-protocol/zlink-go/pkg/keyexpr"
	"github.com/zlink-protocol/zlink-go/pkg/sample"
)

func TestQueryAccessors(t *testing.T) {
	sel, err := keyexpr.ParseSelector("demo/**?filter=last")
	if err != nil {
		t.Fatal(err)
	}
	q := NewQuery(sel, func(sample.Reply) error { return nil })

	if q.KeyExpr().String() != "demo/**" {
		t.Errorf("KeyExpr = %q", q.KeyExpr())
	}
	if q.Parameters() != "filter=last" {
		t.Errorf("Parameters = %q", q.Parameters())
	}
	if q.Selector().String() != "demo/**?filter=last" {
		t.Errorf("Selector = %q", q.Selector())
	}
}

func TestQueryReply(t *testing.T) {
	var got []sample.Reply
	q := NewQuery(keyexpr.NewSelector(keyexpr.MustNew("demo/a"), ""), func(r sample.Reply) error {
		got = append(got, r)
		return nil
	})

	s := sample.Sample{KeyExpr: keyexpr.MustNew("demo/a"), Value: sample.StringValue("v")}
	if err := q.Reply(s); err != nil {
		t.Fatalf("Reply error = %v", err)
	}
	if err := q.ReplyErr("not here"); err != nil {
		t.Fatalf("ReplyErr error = %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d replies, want 2", len(got))
	}
	if !got[0].OK() || got[0].Sample.Value.String() != "v" {
		t.Errorf("first reply = %+v", got[0])
	}
	if got[1].OK() || got[1].Err != "not here" {
		t.Errorf("second reply = %+v", got[1])
	}
}

func TestQueryFinishRejectsLateReplies(t *testing.T) {
	q := NewQuery(keyexpr.NewSelector(keyexpr.MustNew("demo/a"), ""), func(sample.Reply) error { return nil })
	q.Finish()
	q.Finish() // idempotent

	err := q.Reply(sample.Sample{KeyExpr: keyexpr.MustNew("demo/a")})
	if !errors.Is(err, ErrQueryFinished) {
		t.Errorf("late Reply error = %v, want ErrQueryFinished", err)
	}
}

func TestSubscriberModeString(t *testing.T) {
	if ModePush.String() != "push" || ModePull.String() != "pull" {
		t.Error("unexpected mode names")
	}
}
