package engine

import (
	"errors"
	"sync"

	"github.com/zlink-protocol/zlink-go/pkg/keyexpr"
	"github.com/zlink-protocol/zlink-go/pkg/sample"
)

// Query errors.
var (
	// ErrQueryFinished is returned when replying to a query whose
	// reply window has closed.
	ErrQueryFinished = errors.New("query already finished")
)

// Query is one received request handed to a queryable's handler. The
// handler answers through Reply or ReplyErr; once the handler returns
// the query is finished and late replies are rejected.
type Query struct {
	selector keyexpr.Selector

	mu       sync.Mutex
	finished bool
	reply    func(sample.Reply) error
}

// NewQuery builds a received query around a reply sink. Engines call
// this when dispatching to a queryable.
func NewQuery(sel keyexpr.Selector, reply func(sample.Reply) error) *Query {
	return &Query{selector: sel, reply: reply}
}

// Selector returns the query's full selector.
func (q *Query) Selector() keyexpr.Selector { return q.selector }

// KeyExpr returns the queried key expression.
func (q *Query) KeyExpr() keyexpr.KeyExpr { return q.selector.KeyExpr() }

// Parameters returns the raw query parameters, empty if none.
func (q *Query) Parameters() string { return q.selector.Params() }

// Reply answers the query with one sample. The engine stamps the
// replier identity on the way out.
func (q *Query) Reply(s sample.Sample) error {
	return q.send(sample.Reply{Sample: s})
}

// ReplyErr answers the query with an application-level error.
func (q *Query) ReplyErr(msg string) error {
	return q.send(sample.Reply{Err: msg})
}

func (q *Query) send(r sample.Reply) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.finished {
		return ErrQueryFinished
	}
	return q.reply(r)
}

// Finish closes the reply window. Engines call it after the handler
// returns; it is idempotent.
func (q *Query) Finish() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.finished = true
}
