// Package config defines the runtime configuration for tcpchat and
// provides helpers for parsing the server address.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"tcpchat/internal/errors"
)

// Config holds every tuneable for a single chat session.
type Config struct {
	// ── Connection ───────────────────────────────────────────────────
	Host    string
	Port    int
	Timeout time.Duration // dial timeout
	NoDNS   bool

	// ── Session ──────────────────────────────────────────────────────
	Nickname     string        // sent as /nickname right after connecting
	PollInterval time.Duration // read deadline per reader iteration
	ChunkSize    int           // max bytes per read
	QueueSize    int           // pending inbound events before the reader blocks

	// ── Output ───────────────────────────────────────────────────────
	Plain   bool   // force the line-oriented console instead of the TUI
	LogFile string // where log output goes while the TUI owns the screen
	Verbose int
}

// New returns a Config populated with the defaults from defaults.go.
func New() *Config {
	return &Config{
		Timeout:      DefaultConnTimeout,
		PollInterval: DefaultPollInterval,
		ChunkSize:    DefaultChunkSize,
		QueueSize:    DefaultQueueSize,
	}
}

// Address returns "host:port".
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ── Address parsing ──────────────────────────────────────────────────

// ParsePort accepts a decimal port in 1-65535.
func ParsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range 1-65535", port)
	}
	return port, nil
}

// ParseAddress splits "host:port" (IPv6 hosts in brackets).
func ParseAddress(addr string) (host string, port int, err error) {
	h, p, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid address %q – expected host:port", addr)
	}
	if h == "" {
		return "", 0, fmt.Errorf("host is required in %q", addr)
	}
	port, err = ParsePort(p)
	if err != nil {
		return "", 0, err
	}
	return h, port, nil
}

// SetPositional fills Host and Port from the command line: either a
// single "host:port" argument or separate host and port arguments.
func (c *Config) SetPositional(args []string) error {
	switch len(args) {
	case 0:
		if c.Host == "" {
			return fmt.Errorf("server address required (use --help for usage)")
		}
		return nil
	case 1:
		if !strings.Contains(args[0], ":") {
			c.Host = args[0]
			if c.Port == 0 {
				return fmt.Errorf("port required")
			}
			return nil
		}
		host, port, err := ParseAddress(args[0])
		if err != nil {
			return err
		}
		c.Host, c.Port = host, port
		return nil
	case 2:
		port, err := ParsePort(args[1])
		if err != nil {
			return fmt.Errorf("port: %w", err)
		}
		c.Host, c.Port = args[0], port
		return nil
	default:
		return fmt.Errorf("too many arguments")
	}
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Host == "" {
		return &errors.ConfigError{
			Field:   "host",
			Message: "server host is required",
			Hint:    "tcpchat <host> <port>",
		}
	}
	if c.Port < 1 || c.Port > 65535 {
		return &errors.ConfigError{
			Field:   "port",
			Value:   c.Port,
			Message: "out of range 1-65535",
			Hint:    "use a port between 1 and 65535",
		}
	}
	if c.NoDNS && net.ParseIP(c.Host) == nil {
		return &errors.ConfigError{
			Field:   "no-dns",
			Value:   c.Host,
			Message: "cannot parse host as an IP address",
			Hint:    "drop -N or pass a numeric address",
		}
	}
	if c.ChunkSize < MinChunkSize {
		return &errors.ConfigError{
			Field:   "chunk",
			Value:   c.ChunkSize,
			Message: fmt.Sprintf("must be at least %d bytes", MinChunkSize),
			Hint:    "one UTF-8 code point must fit in a chunk",
		}
	}
	if c.QueueSize < 1 {
		return &errors.ConfigError{
			Field:   "queue",
			Value:   c.QueueSize,
			Message: "must be at least 1",
		}
	}
	if c.PollInterval <= 0 {
		return &errors.ConfigError{
			Field:   "poll",
			Value:   c.PollInterval,
			Message: "must be positive",
			Hint:    fmt.Sprintf("the default is %s", DefaultPollInterval),
		}
	}
	if strings.ContainsAny(c.Nickname, "\r\n") {
		return &errors.ConfigError{
			Field:   "nick",
			Value:   c.Nickname,
			Message: "must be a single line",
		}
	}
	return nil
}
