package core

import (
	"context"

	"golang.org/x/sync/errgroup"

	"tcpchat/internal/chat"
	"tcpchat/internal/consumer"
	"tcpchat/internal/metrics"
	"tcpchat/internal/session"
	"tcpchat/internal/transport"
	"tcpchat/util"
)

// ChatMode dials the server, optionally announces a nickname, and runs
// a consumer until the session ends.
type ChatMode struct {
	Dialer   transport.Dialer
	Address  string
	Nickname string
	Consumer consumer.Consumer
	Options  chat.Options
	Logger   *util.Logger
	Metrics  *metrics.Collector
}

// Run blocks until the session is over.  Only a failed dial or a
// consumer failure is an error; the server hanging up is a normal end.
// Cancelling ctx shuts the session down with ReasonSignal.
func (m *ChatMode) Run(ctx context.Context) error {
	m.Logger.Verbose("connecting to %s", m.Address)

	conn, err := session.Dial(ctx, m.Dialer, m.Address, m.Metrics)
	if err != nil {
		return err
	}
	m.Logger.Verbose("connected to %s", conn.RemoteAddr())

	opts := m.Options
	opts.Logger = m.Logger
	opts.Metrics = m.Metrics
	// ctx cancellation reaches the session through the watcher below.
	client := chat.Start(context.WithoutCancel(ctx), conn, opts)
	defer client.Close()

	if m.Nickname != "" {
		if err := client.ChangeNickname(m.Nickname); err != nil {
			m.Logger.Warn("%v", err)
		}
	}

	var g errgroup.Group
	g.Go(func() error {
		defer client.Shutdown(session.ReasonUserQuit)
		return m.Consumer.Consume(ctx, client)
	})
	g.Go(func() error {
		select {
		case <-ctx.Done():
			m.Logger.Verbose("interrupted")
			client.Shutdown(session.ReasonSignal)
		case <-client.Done():
		}
		return nil
	})
	err = g.Wait()

	lc := client.Lifecycle()
	if cause := lc.Err(); cause != nil {
		m.Logger.Verbose("session ended (%s): %v", lc.Reason(), cause)
	} else {
		m.Logger.Verbose("session ended (%s)", lc.Reason())
	}
	m.Logger.Debug("metrics:\n%s", m.Metrics.JSON())
	return err
}
