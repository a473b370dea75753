package scout

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"

	"github.com/zlink-protocol/zlink-go/pkg/proto"
)

// AdvertiserConfig configures session announcements.
type AdvertiserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// Port is the port published in the service record.
	// Defaults to DefaultPort.
	Port int

	// TTL is the DNS record TTL. Default: 120 seconds.
	TTL time.Duration
}

// DefaultAdvertiserConfig returns the default advertiser configuration.
func DefaultAdvertiserConfig() AdvertiserConfig {
	return AdvertiserConfig{
		Port: DefaultPort,
		TTL:  120 * time.Second,
	}
}

// Advertiser announces one peer on the local network until closed.
type Advertiser struct {
	mu     sync.Mutex
	server *zeroconf.Server
}

// Advertise starts announcing the peer described by h.
func Advertise(h proto.Hello, cfg AdvertiserConfig) (*Advertiser, error) {
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}

	var opts []zeroconf.ServerOption
	if cfg.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(cfg.TTL.Seconds())))
	}

	instanceName := fmt.Sprintf("zlink-%.8s", h.ID.String())
	server, err := zeroconf.Register(
		instanceName,
		ServiceType,
		Domain,
		port,
		EncodeHelloTXT(h),
		interfacesFor(cfg.Interface),
		opts...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register zlink service: %w", err)
	}

	return &Advertiser{server: server}, nil
}

// Close stops the announcement. Idempotent.
func (a *Advertiser) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}

// interfacesFor resolves an interface name. Nil means all interfaces.
func interfacesFor(name string) []net.Interface {
	if name == "" {
		return nil
	}
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}
