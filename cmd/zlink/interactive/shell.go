// Package interactive provides the interactive command loop for the
// zlink shell.
package interactive

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/zlink-protocol/zlink-go/pkg/config"
	"github.com/zlink-protocol/zlink-go/pkg/keyexpr"
	"github.com/zlink-protocol/zlink-go/pkg/proto"
	"github.com/zlink-protocol/zlink-go/pkg/sample"
	"github.com/zlink-protocol/zlink-go/pkg/scout"
	"github.com/zlink-protocol/zlink-go/pkg/session"
)

// replyWait bounds how long get collects replies before reporting.
const replyWait = time.Second

// Shell handles the interactive session commands.
type Shell struct {
	cfg config.Config
	s   *session.Session
	rl  *readline.Instance

	subs     map[string]*session.Subscriber
	pulls    map[string]*session.PullSubscriber
	scouting *scout.Scout
}

// New creates a shell. Bind must be called before Run.
func New(cfg config.Config) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "zlink> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Shell{
		cfg:   cfg,
		rl:    rl,
		subs:  make(map[string]*session.Subscriber),
		pulls: make(map[string]*session.PullSubscriber),
	}, nil
}

// Bind attaches the session the commands operate on.
func (sh *Shell) Bind(s *session.Session) { sh.s = s }

// Stdout returns a writer that coordinates with the readline prompt.
func (sh *Shell) Stdout() io.Writer { return sh.rl.Stdout() }

// Stderr returns a writer that coordinates with the readline prompt.
func (sh *Shell) Stderr() io.Writer { return sh.rl.Stderr() }

// Run starts the interactive command loop. It returns when the user
// exits or ctx is cancelled.
func (sh *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer sh.rl.Close()
	defer sh.teardown()

	fmt.Fprintf(sh.Stdout(), "Session %s open as %s\n", sh.s.ID(), sh.cfg.Mode)
	sh.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := sh.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(sh.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			sh.printHelp()

		case "info":
			sh.cmdInfo()

		case "put", "p":
			sh.cmdPut(args)

		case "delete", "del":
			sh.cmdDelete(args)

		case "get", "g":
			sh.cmdGet(args)

		case "sub", "s":
			sh.cmdSub(args)

		case "pull-sub", "ps":
			sh.cmdPullSub(args)

		case "pull":
			sh.cmdPull(args)

		case "unsub", "u":
			sh.cmdUnsub(args)

		case "peers":
			sh.printIDs("peer", sh.s.PeersID())

		case "routers":
			sh.printIDs("router", sh.s.RoutersID())

		case "scout":
			sh.cmdScout(args)

		case "scout-stop":
			sh.cmdScoutStop()

		case "exit", "quit", "q":
			fmt.Fprintln(sh.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(sh.Stdout(), "Unknown command: %s (try 'help')\n", cmd)
		}
	}
}

func (sh *Shell) printHelp() {
	fmt.Fprint(sh.Stdout(), `Commands:
  put <key> <value...>     Publish a value
  delete <key>             Publish a deletion
  get <selector>           Query and print replies
  sub <keyexpr>            Subscribe; samples print as they arrive
  pull-sub <keyexpr>       Subscribe with explicit pulls
  pull [keyexpr]           Drain buffered samples (all pull subscribers if omitted)
  unsub <keyexpr>          Undeclare a subscriber
  peers                    List known peers
  routers                  List known routers
  scout [what]             Discover peers via mDNS (what: peer|client|router, '|'-separated)
  scout-stop               Stop scouting
  info                     Show session identity
  help                     Show this help
  exit                     Close the session and quit
`)
}

func (sh *Shell) cmdInfo() {
	fmt.Fprintf(sh.Stdout(), "zid:  %s\n", sh.s.ID())
	fmt.Fprintf(sh.Stdout(), "mode: %s\n", sh.cfg.Mode)
}

func (sh *Shell) cmdPut(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(sh.Stdout(), "Usage: put <key> <value...>")
		return
	}
	k, err := keyexpr.New(args[0])
	if err != nil {
		fmt.Fprintf(sh.Stdout(), "Invalid key expression: %v\n", err)
		return
	}
	value := strings.Join(args[1:], " ")
	if err := sh.s.Put(k, sample.StringValue(value), nil); err != nil {
		fmt.Fprintf(sh.Stdout(), "Put failed: %v\n", err)
		return
	}
	fmt.Fprintf(sh.Stdout(), "Put %s = %q\n", k, value)
}

func (sh *Shell) cmdDelete(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(sh.Stdout(), "Usage: delete <key>")
		return
	}
	k, err := keyexpr.New(args[0])
	if err != nil {
		fmt.Fprintf(sh.Stdout(), "Invalid key expression: %v\n", err)
		return
	}
	if err := sh.s.Delete(k, nil); err != nil {
		fmt.Fprintf(sh.Stdout(), "Delete failed: %v\n", err)
		return
	}
	fmt.Fprintf(sh.Stdout(), "Deleted %s\n", k)
}

func (sh *Shell) cmdGet(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(sh.Stdout(), "Usage: get <selector>")
		return
	}
	sel, err := keyexpr.ParseSelector(args[0])
	if err != nil {
		fmt.Fprintf(sh.Stdout(), "Invalid selector: %v\n", err)
		return
	}

	replies := make(chan sample.Reply, 64)
	if err := sh.s.Get(sel, func(r sample.Reply) { replies <- r }, nil); err != nil {
		fmt.Fprintf(sh.Stdout(), "Get failed: %v\n", err)
		return
	}

	n := 0
	deadline := time.After(replyWait)
collect:
	for {
		select {
		case r := <-replies:
			n++
			if !r.OK() {
				fmt.Fprintf(sh.Stdout(), ">> error from %s: %s\n", r.Replier, r.Err)
				continue
			}
			fmt.Fprintf(sh.Stdout(), ">> %s = %q (from %s)\n",
				r.Sample.KeyExpr, r.Sample.Value.String(), r.Replier)
		case <-deadline:
			break collect
		}
	}
	fmt.Fprintf(sh.Stdout(), "%d replies\n", n)
}

func (sh *Shell) cmdSub(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(sh.Stdout(), "Usage: sub <keyexpr>")
		return
	}
	k, err := keyexpr.New(args[0])
	if err != nil {
		fmt.Fprintf(sh.Stdout(), "Invalid key expression: %v\n", err)
		return
	}
	if _, dup := sh.subs[k.String()]; dup {
		fmt.Fprintf(sh.Stdout(), "Already subscribed to %s\n", k)
		return
	}

	out := sh.Stdout()
	sub, err := sh.s.DeclareSubscriber(k, func(s sample.Sample) {
		fmt.Fprintf(out, "<< [%s] %s = %q\n", s.Kind, s.KeyExpr, s.Value.String())
	}, nil)
	if err != nil {
		fmt.Fprintf(sh.Stdout(), "Subscribe failed: %v\n", err)
		return
	}
	sh.subs[k.String()] = sub
	fmt.Fprintf(sh.Stdout(), "Subscribed to %s\n", k)
}

func (sh *Shell) cmdPullSub(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(sh.Stdout(), "Usage: pull-sub <keyexpr>")
		return
	}
	k, err := keyexpr.New(args[0])
	if err != nil {
		fmt.Fprintf(sh.Stdout(), "Invalid key expression: %v\n", err)
		return
	}
	if _, dup := sh.pulls[k.String()]; dup {
		fmt.Fprintf(sh.Stdout(), "Already subscribed to %s\n", k)
		return
	}

	out := sh.Stdout()
	sub, err := sh.s.DeclarePullSubscriber(k, func(s sample.Sample) {
		fmt.Fprintf(out, "<< [%s] %s = %q\n", s.Kind, s.KeyExpr, s.Value.String())
	}, nil)
	if err != nil {
		fmt.Fprintf(sh.Stdout(), "Subscribe failed: %v\n", err)
		return
	}
	sh.pulls[k.String()] = sub
	fmt.Fprintf(sh.Stdout(), "Pull-subscribed to %s (use 'pull' to drain)\n", k)
}

func (sh *Shell) cmdPull(args []string) {
	if len(args) == 1 {
		sub, ok := sh.pulls[args[0]]
		if !ok {
			fmt.Fprintf(sh.Stdout(), "No pull subscriber on %s\n", args[0])
			return
		}
		if err := sub.Pull(); err != nil {
			fmt.Fprintf(sh.Stdout(), "Pull failed: %v\n", err)
		}
		return
	}
	if len(sh.pulls) == 0 {
		fmt.Fprintln(sh.Stdout(), "No pull subscribers")
		return
	}
	keys := make([]string, 0, len(sh.pulls))
	for k := range sh.pulls {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := sh.pulls[k].Pull(); err != nil {
			fmt.Fprintf(sh.Stdout(), "Pull on %s failed: %v\n", k, err)
		}
	}
}

func (sh *Shell) cmdUnsub(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(sh.Stdout(), "Usage: unsub <keyexpr>")
		return
	}
	key := args[0]
	if sub, ok := sh.subs[key]; ok {
		delete(sh.subs, key)
		if err := sub.Undeclare(); err != nil {
			fmt.Fprintf(sh.Stdout(), "Undeclare failed: %v\n", err)
			return
		}
		fmt.Fprintf(sh.Stdout(), "Unsubscribed from %s\n", key)
		return
	}
	if sub, ok := sh.pulls[key]; ok {
		delete(sh.pulls, key)
		if err := sub.Undeclare(); err != nil {
			fmt.Fprintf(sh.Stdout(), "Undeclare failed: %v\n", err)
			return
		}
		fmt.Fprintf(sh.Stdout(), "Unsubscribed from %s\n", key)
		return
	}
	fmt.Fprintf(sh.Stdout(), "No subscriber on %s\n", key)
}

func (sh *Shell) cmdScout(args []string) {
	if sh.scouting != nil {
		fmt.Fprintln(sh.Stdout(), "Already scouting (use 'scout-stop' first)")
		return
	}
	what := ""
	if len(args) > 0 {
		what = args[0]
	}

	out := sh.Stdout()
	sc, err := scout.Start(func(h proto.Hello) {
		fmt.Fprintf(out, "<< hello from %s (%s) at %s\n",
			h.ID, h.WhatAmI, strings.Join(h.Locators, ", "))
	}, sh.cfg, what)
	if err != nil {
		fmt.Fprintf(sh.Stdout(), "Scout failed: %v\n", err)
		return
	}
	sh.scouting = sc
	fmt.Fprintln(sh.Stdout(), "Scouting... (use 'scout-stop' to stop)")
}

func (sh *Shell) cmdScoutStop() {
	if sh.scouting == nil {
		fmt.Fprintln(sh.Stdout(), "Not scouting")
		return
	}
	sh.scouting.Stop()
	sh.scouting = nil
	fmt.Fprintln(sh.Stdout(), "Scouting stopped")
}

func (sh *Shell) printIDs(kind string, ids []proto.PeerID) {
	if len(ids) == 0 {
		fmt.Fprintf(sh.Stdout(), "No known %ss\n", kind)
		return
	}
	for _, id := range ids {
		fmt.Fprintf(sh.Stdout(), "  %s\n", id)
	}
}

// teardown undeclares everything the shell created.
func (sh *Shell) teardown() {
	if sh.scouting != nil {
		sh.scouting.Stop()
	}
	for _, sub := range sh.subs {
		_ = sub.Undeclare()
	}
	for _, sub := range sh.pulls {
		_ = sub.Undeclare()
	}
}
