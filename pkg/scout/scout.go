package scout

import (
	"context"
	"errors"

	"github.com/enbility/zeroconf/v3"

	"github.com/zlink-protocol/zlink-go/pkg/bridge"
	"github.com/zlink-protocol/zlink-go/pkg/config"
	"github.com/zlink-protocol/zlink-go/pkg/log"
	"github.com/zlink-protocol/zlink-go/pkg/proto"
)

// browse performs the mDNS lookup. Swapped out in tests.
var browse = func(ctx context.Context, service, domain string, entries, removed chan *zeroconf.ServiceEntry, opts ...zeroconf.ClientOption) error {
	return zeroconf.Browse(ctx, service, domain, entries, removed, opts...)
}

// Scout is a live discovery handle. Discovery continues until Stop.
type Scout struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Start begins scouting for peers. The handler is invoked once per
// discovered peer whose role matches what; `what` is a `|`-separated
// set drawn from "client", "peer" and "router", with the empty string
// meaning all three. An unparsable matcher fails synchronously and
// registers nothing.
func Start(handler func(proto.Hello), cfg config.Config, what string) (*Scout, error) {
	matcher := proto.MatchAll
	if what != "" {
		m, err := proto.ParseMatcher(what)
		if err != nil {
			return nil, err
		}
		matcher = m
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}
	br, err := bridge.New(handler, logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	s := &Scout{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(s.done)
		seen := make(map[proto.PeerID]struct{})
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				hello, err := DecodeHelloTXT(entry.Text)
				if err != nil {
					logger.Log(log.Event{
						Category: log.CategoryDiscovery,
						Detail:   "ignoring malformed announcement " + entry.Instance,
						Error:    err.Error(),
					})
					continue
				}
				if !matcher.Matches(hello.WhatAmI) {
					continue
				}
				if _, dup := seen[hello.ID]; dup {
					continue
				}
				seen[hello.ID] = struct{}{}
				logger.Log(log.Event{
					Category: log.CategoryDiscovery,
					Detail:   hello.String(),
				})
				br.Invoke(hello)

			case <-removed:
				// Peers that disappear may be re-announced later;
				// keep them in seen so each peer is reported once.

			case <-ctx.Done():
				return
			}
		}
	}()

	var opts []zeroconf.ClientOption
	if cfg.Scouting.Interface != "" {
		if ifaces := interfacesFor(cfg.Scouting.Interface); ifaces != nil {
			opts = append(opts, zeroconf.SelectIfaces(ifaces))
		}
	}
	go func() {
		err := browse(ctx, ServiceType, Domain, entries, removed, opts...)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Log(log.Event{
				Category: log.CategoryDiscovery,
				Detail:   "mDNS browse failed",
				Error:    err.Error(),
			})
		}
	}()

	return s, nil
}

// Stop ends discovery. No handler invocation starts after Stop
// returns; one already dispatched may still complete.
func (s *Scout) Stop() {
	s.cancel()
	<-s.done
}
