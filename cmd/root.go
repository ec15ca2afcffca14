// Package cmd wires up the CLI flags and dispatches to the chat core.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"tcpchat/config"
	"tcpchat/internal/core"
	"tcpchat/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X tcpchat/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs a chat session.
func Execute(ctx context.Context, args []string) error {
	cfg := config.New()
	config.LoadFromEnv(cfg)

	fs := flag.NewFlagSet("tcpchat", flag.ContinueOnError)

	// ── connection ───────────────────────────────────────────────
	timeoutSec := int(cfg.Timeout / time.Second)
	fs.IntVarP(&timeoutSec, "timeout", "w", timeoutSec, "Connect timeout in seconds")
	fs.BoolVarP(&cfg.NoDNS, "no-dns", "N", cfg.NoDNS, "Numeric-only, no DNS resolution")

	// ── session ──────────────────────────────────────────────────
	fs.StringVarP(&cfg.Nickname, "nick", "n", cfg.Nickname, "Nickname to announce after connecting")
	fs.DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "Read poll interval")
	fs.IntVar(&cfg.ChunkSize, "chunk", cfg.ChunkSize, "Maximum bytes per read")
	fs.IntVar(&cfg.QueueSize, "queue", cfg.QueueSize, "Inbound events buffered before the reader waits")

	// ── output ───────────────────────────────────────────────────
	fs.BoolVar(&cfg.Plain, "plain", cfg.Plain, "Line-oriented console instead of the full-screen UI")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Append log output to this file")
	envVerbose := cfg.Verbose
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")

	var showVersion, showHelp, dryRun bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")
	fs.BoolVar(&dryRun, "dry-run", false, "Validate configuration and exit")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp || (len(args) == 0 && cfg.Host == "") {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Printf("tcpchat %s\n", version)
		return nil
	}

	cfg.Timeout = time.Duration(timeoutSec) * time.Second
	if !fs.Changed("verbose") {
		cfg.Verbose = envVerbose
	}

	// ── positional arguments ─────────────────────────────────────
	if err := cfg.SetPositional(fs.Args()); err != nil {
		return err
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	// ── build components ─────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)
	if cfg.LogFile != "" {
		f, err := logger.OpenFile(cfg.LogFile)
		if err != nil {
			return err
		}
		defer f.Close()
	}

	mode, err := core.Build(cfg, logger)
	if err != nil {
		return err
	}
	if dryRun {
		logger.Info("dry run: would connect to %s", cfg.Address())
		return nil
	}
	return mode.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `tcpchat – terminal client for line-less TCP chat servers v%s

Usage:
  tcpchat [options] <host> <port>
  tcpchat [options] <host:port>

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
In the chat:
  <text>              Send a message (/msg <text>)
  /nick <name>        Change nickname (alias /nickname)
  /quit               Leave (also Ctrl+C or Esc in the full-screen UI)

Examples:
  tcpchat chat.example.com 4000              Connect
  tcpchat -n alice 127.0.0.1:4000            Connect and set a nickname
  tcpchat --plain --log-file chat.log h 4000 Console mode with logging
  echo "hello" | tcpchat chat.example.com 4000
`)
}
