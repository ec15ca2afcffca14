package core

import (
	"os"

	"golang.org/x/term"

	"tcpchat/config"
	"tcpchat/internal/chat"
	"tcpchat/internal/consumer"
	"tcpchat/internal/metrics"
	"tcpchat/internal/transport"
	"tcpchat/util"
)

// isTerminal reports whether stdin and stdout are both a terminal.
// Replaced in tests.
var isTerminal = func() bool { //nolint:gochecknoglobals
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Build constructs the ChatMode for cfg.  The TUI is used on an
// interactive terminal unless cfg.Plain is set; otherwise the line
// console.  While the TUI owns the screen, log output is discarded
// unless a log file was configured.
func Build(cfg *config.Config, logger *util.Logger) (Mode, error) {
	address, err := util.ResolveAddr(cfg.Host, cfg.Port, cfg.NoDNS)
	if err != nil {
		return nil, err
	}

	return &ChatMode{
		Dialer:   &transport.TCPDialer{Timeout: cfg.Timeout},
		Address:  address,
		Nickname: cfg.Nickname,
		Consumer: buildConsumer(cfg, logger),
		Options: chat.Options{
			ChunkSize:    cfg.ChunkSize,
			QueueSize:    cfg.QueueSize,
			PollInterval: cfg.PollInterval,
		},
		Logger:  logger,
		Metrics: metrics.New(),
	}, nil
}

// buildConsumer selects the foreground loop.
func buildConsumer(cfg *config.Config, logger *util.Logger) consumer.Consumer {
	if cfg.Plain || !isTerminal() {
		return &consumer.Console{Logger: logger.Named("console")}
	}
	if cfg.LogFile == "" {
		logger.Discard()
	}
	return &consumer.TUI{AltScreen: true}
}
