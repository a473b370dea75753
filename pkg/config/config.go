package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zlink-protocol/zlink-go/pkg/log"
	"github.com/zlink-protocol/zlink-go/pkg/proto"
)

// Default timing values.
const (
	// DefaultScoutPeriod is how often a scouting session re-announces
	// itself.
	DefaultScoutPeriod = 2 * time.Minute
)

// ScoutingConfig configures peer discovery over mDNS.
type ScoutingConfig struct {
	// Enabled announces this session on the local network and lets
	// scouts discover it.
	Enabled bool `yaml:"enabled"`

	// Interface restricts discovery to one network interface.
	// Empty means all interfaces.
	Interface string `yaml:"interface,omitempty"`

	// Port is the port announced in discovery records.
	Port int `yaml:"port,omitempty"`
}

// Config configures a session.
type Config struct {
	// Mode is the role this session plays: "client", "peer" or
	// "router". Defaults to "peer".
	Mode string `yaml:"mode"`

	// Connect lists locators of peers to connect to at open.
	Connect []string `yaml:"connect,omitempty"`

	// Listen lists locators this session accepts connections on.
	Listen []string `yaml:"listen,omitempty"`

	// IdentitySeed, when set, derives a stable peer ID from it so the
	// session keeps its identity across restarts. Empty means a fresh
	// random ID per open.
	IdentitySeed string `yaml:"identity_seed,omitempty"`

	// Scouting configures discovery announcements.
	Scouting ScoutingConfig `yaml:"scouting,omitempty"`

	// Logger receives façade events. Nil disables logging.
	Logger log.Logger `yaml:"-"`
}

// Default returns the default session configuration.
func Default() Config {
	return Config{
		Mode: proto.WhatAmIPeer.String(),
	}
}

// Validate checks the configuration for construction-time errors.
func (c Config) Validate() error {
	if _, err := c.Role(); err != nil {
		return err
	}
	return nil
}

// Role parses the configured mode.
func (c Config) Role() (proto.WhatAmI, error) {
	if c.Mode == "" {
		return proto.WhatAmIPeer, nil
	}
	return proto.ParseWhatAmI(c.Mode)
}

// PeerID resolves the session identity: derived from IdentitySeed
// when one is configured, random otherwise.
func (c Config) PeerID() proto.PeerID {
	if c.IdentitySeed != "" {
		return proto.DerivePeerID(c.IdentitySeed)
	}
	return proto.RandomPeerID()
}

// FromYAML parses a configuration document. Absent fields keep their
// defaults.
func FromYAML(data []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadFile reads and parses a configuration file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return FromYAML(data)
}
