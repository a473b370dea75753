package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/zlink-protocol/zlink-go/pkg/bridge"
	"github.com/zlink-protocol/zlink-go/pkg/config"
	"github.com/zlink-protocol/zlink-go/pkg/engine"
	"github.com/zlink-protocol/zlink-go/pkg/engine/inproc"
	"github.com/zlink-protocol/zlink-go/pkg/keyexpr"
	"github.com/zlink-protocol/zlink-go/pkg/log"
	"github.com/zlink-protocol/zlink-go/pkg/opts"
	"github.com/zlink-protocol/zlink-go/pkg/proto"
	"github.com/zlink-protocol/zlink-go/pkg/sample"
	"github.com/zlink-protocol/zlink-go/pkg/scout"
)

// core is the shared state behind a session and all resources
// declared from it. The engine connection is released when the last
// reference goes.
type core struct {
	conn    engine.Conn
	logger  log.Logger
	adv     *scout.Advertiser
	refs    atomic.Int32
	onceLog sync.Once
}

// retain adds one reference on behalf of a declared resource.
func (c *core) retain() {
	c.refs.Add(1)
}

// release drops one reference and tears the connection down when it
// was the last one.
func (c *core) release() error {
	if c.refs.Add(-1) != 0 {
		return nil
	}
	var err error
	c.onceLog.Do(func() {
		if c.adv != nil {
			c.adv.Close()
		}
		err = c.conn.Close()
		c.logger.Log(log.Event{
			Category:  log.CategorySession,
			SessionID: c.conn.ID().String(),
			Detail:    "session closed",
		})
	})
	return err
}

// Session is the façade over one engine connection. It is safe for
// concurrent use and may be shared freely; all declared resources
// reference the same connection.
type Session struct {
	core  *core
	close sync.Once
}

// Open opens a session on the process-wide in-process engine.
func Open(cfg config.Config) (*Session, error) {
	return OpenWith(inproc.Default(), cfg)
}

// OpenWith opens a session on an explicit engine.
func OpenWith(e engine.Engine, cfg config.Config) (*Session, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}

	conn, err := e.Open(cfg)
	if err != nil {
		return nil, err
	}

	c := &core{conn: conn, logger: logger}
	c.refs.Store(1)

	if cfg.Scouting.Enabled {
		role := conn.WhatAmI()
		advCfg := scout.DefaultAdvertiserConfig()
		advCfg.Interface = cfg.Scouting.Interface
		if cfg.Scouting.Port != 0 {
			advCfg.Port = cfg.Scouting.Port
		}
		adv, err := scout.Advertise(proto.Hello{
			ID:       conn.ID(),
			WhatAmI:  role,
			Locators: cfg.Listen,
		}, advCfg)
		if err != nil {
			// Announcement is best-effort; the session works without it.
			logger.Log(log.Event{
				Category:  log.CategoryDiscovery,
				SessionID: conn.ID().String(),
				Error:     err.Error(),
			})
		} else {
			c.adv = adv
		}
	}

	logger.Log(log.Event{
		Category:  log.CategorySession,
		SessionID: conn.ID().String(),
		Detail:    "session opened as " + conn.WhatAmI().String(),
	})
	return &Session{core: c}, nil
}

// ID returns this session's peer identifier.
func (s *Session) ID() proto.PeerID {
	return s.core.conn.ID()
}

// RoutersID enumerates currently known router peers, ordered. Empty
// if none are known.
func (s *Session) RoutersID() []proto.PeerID {
	return s.core.conn.RoutersID()
}

// PeersID enumerates currently known non-router peers, ordered. Empty
// if none are known.
func (s *Session) PeersID() []proto.PeerID {
	return s.core.conn.PeersID()
}

// Put publishes value on key. Recognized options: kind,
// congestion_control, priority, local_routing.
func (s *Session) Put(key keyexpr.KeyExpr, value sample.Value, options opts.Options) error {
	cfg := opts.DefaultPutConfig()
	if err := cfg.Apply(options); err != nil {
		return err
	}
	return s.publish(key, value, cfg, "put")
}

// Delete publishes a deletion marker on key. The recognized option
// set is symmetric to Put's.
func (s *Session) Delete(key keyexpr.KeyExpr, options opts.Options) error {
	cfg := opts.DefaultDeleteConfig()
	if err := cfg.Apply(options); err != nil {
		return err
	}
	return s.publish(key, sample.Value{}, cfg, "delete")
}

func (s *Session) publish(key keyexpr.KeyExpr, value sample.Value, cfg opts.WriteConfig, op string) error {
	smp := sample.Sample{
		KeyExpr:   key,
		Value:     value,
		Kind:      cfg.Kind,
		Timestamp: time.Now(),
		Source:    s.core.conn.ID(),
	}
	if err := s.core.conn.Publish(smp, cfg); err != nil {
		return err
	}
	s.core.logger.Log(log.Event{
		Category:  log.CategorySubmit,
		SessionID: s.ID().String(),
		Operation: op,
		KeyExpr:   key.String(),
	})
	return nil
}

// Get runs a distributed query for selector. The handler receives
// each Reply on engine goroutines; registration, not completion, is
// synchronous. Recognized options: local_routing, consolidation,
// target.
func (s *Session) Get(selector keyexpr.Selector, handler func(sample.Reply), options opts.Options) error {
	cfg := opts.DefaultGetConfig()
	if err := cfg.Apply(options); err != nil {
		return err
	}
	br, err := bridge.New(handler, s.core.logger)
	if err != nil {
		return err
	}
	if err := s.core.conn.Query(selector, cfg, br.Invoke); err != nil {
		return err
	}
	s.core.logger.Log(log.Event{
		Category:  log.CategorySubmit,
		SessionID: s.ID().String(),
		Operation: "get",
		KeyExpr:   selector.String(),
	})
	return nil
}

// DeclareKeyExpr asks the engine to optimize a key expression for
// repeated use.
func (s *Session) DeclareKeyExpr(key keyexpr.KeyExpr) (keyexpr.KeyExpr, error) {
	return s.core.conn.DeclareKeyExpr(key)
}

// Close releases this session's reference to the connection. The
// connection itself is torn down once every declared resource has
// been undeclared as well. Close is idempotent.
func (s *Session) Close() error {
	var err error
	s.close.Do(func() {
		err = s.core.release()
	})
	return err
}
