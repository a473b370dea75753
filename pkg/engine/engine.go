package engine

import (
	"errors"

	"github.com/zlink-protocol/zlink-go/pkg/config"
	"github.com/zlink-protocol/zlink-go/pkg/keyexpr"
	"github.com/zlink-protocol/zlink-go/pkg/opts"
	"github.com/zlink-protocol/zlink-go/pkg/proto"
	"github.com/zlink-protocol/zlink-go/pkg/sample"
)

// Engine errors.
var (
	// ErrClosed is returned when submitting on a closed connection.
	ErrClosed = errors.New("connection closed")

	// ErrCongestion is returned when a drop-policy submission cannot
	// be accepted because the path is backpressured.
	ErrCongestion = errors.New("path congested")

	// ErrOpen is returned when the engine cannot establish a session.
	ErrOpen = errors.New("failed to open session")

	// ErrWildPublication is returned when publishing on a key
	// expression containing wildcards.
	ErrWildPublication = errors.New("cannot publish on a wildcard key expression")
)

// SubscriberMode selects push or pull delivery for a subscriber.
type SubscriberMode uint8

const (
	// ModePush delivers each sample to the handler as it arrives.
	ModePush SubscriberMode = 0

	// ModePull buffers samples until an explicit pull drains them.
	ModePull SubscriberMode = 1
)

// String returns the mode name.
func (m SubscriberMode) String() string {
	switch m {
	case ModePush:
		return "push"
	case ModePull:
		return "pull"
	default:
		return "unknown"
	}
}

// Engine opens connections into an overlay network.
type Engine interface {
	// Open establishes one connection using the given configuration.
	Open(cfg config.Config) (Conn, error)
}

// Conn is one established connection to the overlay. All declared
// resources of a session share exactly one Conn. Implementations must
// be safe for concurrent use.
type Conn interface {
	// ID returns the connection's peer identifier.
	ID() proto.PeerID

	// WhatAmI returns the role the connection was opened with.
	WhatAmI() proto.WhatAmI

	// Publish submits one sample (put or delete, per the sample's
	// kind) with the resolved write configuration.
	Publish(s sample.Sample, cfg opts.WriteConfig) error

	// Query submits a distributed query. Registration is synchronous;
	// cb is invoked once per reply on engine goroutines, zero or more
	// times after Query returns.
	Query(sel keyexpr.Selector, cfg opts.GetConfig, cb func(sample.Reply)) error

	// DeclareKeyExpr asks the engine to optimize a key expression for
	// repeated use.
	DeclareKeyExpr(k keyexpr.KeyExpr) (keyexpr.KeyExpr, error)

	// DeclarePublisher registers a publication intent for a key
	// expression.
	DeclarePublisher(k keyexpr.KeyExpr, cfg opts.PublisherConfig) (Registration, error)

	// DeclareSubscriber registers cb for samples matching k. In
	// ModePull the returned registration buffers samples until Pull.
	DeclareSubscriber(k keyexpr.KeyExpr, mode SubscriberMode, cfg opts.SubscriberConfig, cb func(sample.Sample)) (Subscription, error)

	// DeclareQueryable registers cb for queries matching k.
	DeclareQueryable(k keyexpr.KeyExpr, cfg opts.QueryableConfig, cb func(*Query)) (Registration, error)

	// RoutersID enumerates currently known router peers, ordered.
	RoutersID() []proto.PeerID

	// PeersID enumerates currently known (non-router) peers, ordered.
	PeersID() []proto.PeerID

	// Close releases the connection. Registrations declared from it
	// stop receiving events.
	Close() error
}

// Registration is one declared resource on a connection. Undeclare is
// idempotent.
type Registration interface {
	Undeclare() error
}

// Subscription is a declared subscriber registration. Pull drains
// buffered samples for pull-mode subscribers; for push-mode
// subscribers it is a no-op.
type Subscription interface {
	Registration

	// Pull delivers all currently buffered samples to the handler in
	// arrival order, then returns. Returns immediately if none are
	// buffered; fails only on a closed connection.
	Pull() error
}
