package chat

import (
	"context"
	"time"

	"tcpchat/internal/metrics"
	"tcpchat/internal/session"
	"tcpchat/internal/transport"
	"tcpchat/util"
)

// Options tunes a Client.  Zero values fall back to the defaults below.
type Options struct {
	ChunkSize    int
	QueueSize    int
	PollInterval time.Duration
	Logger       *util.Logger
	Metrics      *metrics.Collector
}

const (
	defaultChunkSize    = 1024
	defaultQueueSize    = 100
	defaultPollInterval = 50 * time.Millisecond
)

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = defaultChunkSize
	}
	if o.QueueSize <= 0 {
		o.QueueSize = defaultQueueSize
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
	if o.Logger == nil {
		o.Logger = util.NewLogger(0)
	}
	return o
}

// Client is one chat session: a guarded connection, its reader, its
// dispatcher and the lifecycle that ends them.
type Client struct {
	conn       *session.Conn
	lifecycle  *session.Lifecycle
	dispatcher *Dispatcher
	events     chan Event
	readerDone chan struct{}
}

// Connect dials address and starts the reader.  A dial failure is a
// *errors.ConnectionError.
func Connect(ctx context.Context, d transport.Dialer, address string, opts Options) (*Client, error) {
	opts = opts.withDefaults()
	conn, err := session.Dial(ctx, d, address, opts.Metrics)
	if err != nil {
		return nil, err
	}
	opts.Logger.Verbose("connected to %s", conn.RemoteAddr())
	return Start(ctx, conn, opts), nil
}

// Start runs a session over an established connection.  Cancelling ctx
// ends the session the same way Close does.
func Start(ctx context.Context, conn *session.Conn, opts Options) *Client {
	opts = opts.withDefaults()
	lc := session.NewLifecycle(ctx, conn, opts.Logger.Named("session"))
	events := make(chan Event, opts.QueueSize)

	c := &Client{
		conn:       conn,
		lifecycle:  lc,
		dispatcher: NewDispatcher(conn, opts.Logger.Named("dispatch"), opts.Metrics),
		events:     events,
		readerDone: make(chan struct{}),
	}

	r := NewReader(conn, lc, events, opts.ChunkSize, opts.PollInterval,
		opts.Logger.Named("reader"), opts.Metrics)
	go func() {
		defer close(c.readerDone)
		r.Run()
	}()
	return c
}

// Events delivers inbound events in receipt order.  The last one is a
// Disconnected, after which the channel is closed.
func (c *Client) Events() <-chan Event { return c.events }

// Send writes cmd; see Dispatcher.Dispatch.
func (c *Client) Send(cmd Command) error { return c.dispatcher.Dispatch(cmd) }

// SendMessage writes "/msg <text>".
func (c *Client) SendMessage(text string) error { return c.dispatcher.SendMessage(text) }

// ChangeNickname writes "/nickname <name>".
func (c *Client) ChangeNickname(name string) error { return c.dispatcher.ChangeNickname(name) }

// Lifecycle exposes the session's shutdown controller.
func (c *Client) Lifecycle() *session.Lifecycle { return c.lifecycle }

// Done is closed once the session has shut down.
func (c *Client) Done() <-chan struct{} { return c.lifecycle.Done() }

// Shutdown ends the session for reason and waits for the reader to
// exit.  Safe to call more than once.
func (c *Client) Shutdown(reason session.Reason) {
	c.lifecycle.Shutdown(reason, nil)
	<-c.readerDone
}

// Close ends the session as a user quit.
func (c *Client) Close() error {
	c.Shutdown(session.ReasonUserQuit)
	return nil
}

// Wait blocks until the reader has exited.
func (c *Client) Wait() { <-c.readerDone }
