// Command zlink is an interactive shell for a zlink session.
//
// It opens one session on the overlay and exposes the session
// operations as commands: publish and delete values, query selectors,
// declare subscribers and pull subscribers, and scout for peers.
//
// Usage:
//
//	zlink [flags]
//
// Flags:
//
//	-config string  Configuration file path (YAML)
//	-mode string    Session mode: peer, client, router (default "peer")
//	-verbose        Log session events
//
// Examples:
//
//	# Open an interactive peer session
//	zlink
//
//	# Open a client session with a config file
//	zlink -mode client -config /etc/zlink/client.yaml
package main

import (
	"context"
	"flag"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/zlink-protocol/zlink-go/cmd/zlink/interactive"
	"github.com/zlink-protocol/zlink-go/pkg/config"
	"github.com/zlink-protocol/zlink-go/pkg/log"
	"github.com/zlink-protocol/zlink-go/pkg/session"
)

var (
	configFile string
	mode       string
	verbose    bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&mode, "mode", "peer", "Session mode: peer, client, router")
	flag.BoolVar(&verbose, "verbose", false, "Log session events")
}

func main() {
	flag.Parse()

	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.LoadFile(configFile)
		if err != nil {
			stdlog.Fatalf("Invalid configuration: %v", err)
		}
		cfg = loaded
	}
	if mode != "" {
		cfg.Mode = mode
	}

	shell, err := interactive.New(cfg)
	if err != nil {
		stdlog.Fatalf("Failed to create shell: %v", err)
	}

	if verbose {
		zl := zerolog.New(zerolog.ConsoleWriter{Out: shell.Stderr()}).With().Timestamp().Logger()
		cfg.Logger = log.NewZerologAdapter(zl)
	}

	s, err := session.Open(cfg)
	if err != nil {
		stdlog.Fatalf("Failed to open session: %v", err)
	}
	shell.Bind(s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	shell.Run(ctx, cancel)

	if err := s.Close(); err != nil {
		stdlog.Printf("Error closing session: %v", err)
	}
}
