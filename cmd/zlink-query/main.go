// Command zlink-query issues one distributed query and prints the
// replies.
//
// Usage:
//
//	zlink-query [flags]
//
// Flags:
//
//	-config string         Configuration file path (YAML)
//	-mode string           Session mode: peer, client, router (default "peer")
//	-selector string       Selector to query (default "demo/example/**")
//	-target string         Query target: best_matching, all, all_complete
//	-consolidation string  Reply consolidation: none, monotonic, latest
//	-timeout duration      How long to wait for replies (default 1s)
//	-verbose               Log session events to stderr
//
// Examples:
//
//	# Query everything under demo/example
//	zlink-query -selector 'demo/example/**'
//
//	# Query a computed value with parameters, keeping all replies
//	zlink-query -selector 'calc/sum?lhs=1;rhs=2' -consolidation none
package main

import (
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/zlink-protocol/zlink-go/pkg/config"
	"github.com/zlink-protocol/zlink-go/pkg/keyexpr"
	"github.com/zlink-protocol/zlink-go/pkg/log"
	"github.com/zlink-protocol/zlink-go/pkg/opts"
	"github.com/zlink-protocol/zlink-go/pkg/sample"
	"github.com/zlink-protocol/zlink-go/pkg/session"
)

var (
	configFile    string
	mode          string
	selector      string
	target        string
	consolidation string
	timeout       time.Duration
	verbose       bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&mode, "mode", "peer", "Session mode: peer, client, router")
	flag.StringVar(&selector, "selector", "demo/example/**", "Selector to query")
	flag.StringVar(&target, "target", "", "Query target: best_matching, all, all_complete")
	flag.StringVar(&consolidation, "consolidation", "", "Reply consolidation: none, monotonic, latest")
	flag.DurationVar(&timeout, "timeout", time.Second, "How long to wait for replies")
	flag.BoolVar(&verbose, "verbose", false, "Log session events to stderr")
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		stdlog.Fatalf("Invalid configuration: %v", err)
	}

	sel, err := keyexpr.ParseSelector(selector)
	if err != nil {
		stdlog.Fatalf("Invalid selector %q: %v", selector, err)
	}

	s, err := session.Open(cfg)
	if err != nil {
		stdlog.Fatalf("Failed to open session: %v", err)
	}
	defer func() { _ = s.Close() }()

	options := opts.Options{}
	if target != "" {
		options[opts.OptTarget] = target
	}
	if consolidation != "" {
		options[opts.OptConsolidation] = consolidation
	}

	replies := make(chan sample.Reply, 64)
	if err := s.Get(sel, func(r sample.Reply) { replies <- r }, options); err != nil {
		stdlog.Fatalf("Query failed: %v", err)
	}

	fmt.Printf("Querying %q...\n", selector)
	n := 0
	deadline := time.After(timeout)
collect:
	for {
		select {
		case r := <-replies:
			n++
			printReply(r)
		case <-deadline:
			break collect
		}
	}
	fmt.Printf("%d replies\n", n)
}

func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.LoadFile(configFile)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if mode != "" {
		cfg.Mode = mode
	}
	if verbose {
		zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		cfg.Logger = log.NewZerologAdapter(zl)
	}
	return cfg, cfg.Validate()
}

func printReply(r sample.Reply) {
	if !r.OK() {
		fmt.Printf(">> error from %s: %s\n", r.Replier, r.Err)
		return
	}
	fmt.Printf(">> [%s] %s = %q (from %s)\n",
		r.Sample.Kind, r.Sample.KeyExpr, r.Sample.Value.String(), r.Replier)
}
