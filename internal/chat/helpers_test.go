package chat

import (
	"bytes"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tcpchat/internal/session"
	"tcpchat/util"
)

// step is one scripted result of Read.
type step struct {
	data []byte
	err  error
}

// scriptConn is a net.Conn whose reads follow a script and whose
// writes are recorded.  Once the script is exhausted Read reports a
// poll timeout until the conn is closed.
type scriptConn struct {
	mu       sync.Mutex
	steps    []step
	written  bytes.Buffer
	writeErr error
	closed   chan struct{}
	once     sync.Once
}

func newScriptConn(steps ...step) *scriptConn {
	return &scriptConn{steps: steps, closed: make(chan struct{})}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func (c *scriptConn) Read(p []byte) (int, error) {
	c.mu.Lock()
	if len(c.steps) > 0 {
		s := c.steps[0]
		c.steps = c.steps[1:]
		c.mu.Unlock()
		return copy(p, s.data), s.err
	}
	c.mu.Unlock()

	select {
	case <-c.closed:
		return 0, net.ErrClosed
	case <-time.After(time.Millisecond):
		return 0, timeoutErr{}
	}
}

func (c *scriptConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	return c.written.Write(p)
}

func (c *scriptConn) Written() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.written.String()
}

func (c *scriptConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *scriptConn) LocalAddr() net.Addr              { return &net.TCPAddr{} }
func (c *scriptConn) RemoteAddr() net.Addr             { return &net.TCPAddr{} }
func (c *scriptConn) SetDeadline(time.Time) error      { return nil }
func (c *scriptConn) SetReadDeadline(time.Time) error  { return nil }
func (c *scriptConn) SetWriteDeadline(time.Time) error { return nil }

func quietLogger() *util.Logger {
	l := util.NewLogger(0)
	l.SetOutput(io.Discard)
	return l
}

// collect drains events until the channel closes or timeout expires.
func collect(t *testing.T, events <-chan Event, timeout time.Duration) []Event {
	t.Helper()
	var out []Event
	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-deadline:
			t.Fatalf("event channel not closed after %v; got %v", timeout, out)
			return nil
		}
	}
}

// splitTerminal checks the events end with exactly one Disconnected and
// returns the concatenated text before it.
func splitTerminal(t *testing.T, events []Event) (string, Disconnected) {
	t.Helper()
	require.NotEmpty(t, events)

	var text bytes.Buffer
	for i, ev := range events {
		switch e := ev.(type) {
		case Text:
			text.WriteString(e.Data)
		case Disconnected:
			require.Equal(t, len(events)-1, i, "Disconnected must be last, got %v", events)
			return text.String(), e
		}
	}
	t.Fatalf("no Disconnected in %v", events)
	return "", Disconnected{}
}

// startScripted runs a client over a scripted connection.
func startScripted(t *testing.T, sc *scriptConn, opts Options) *Client {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = time.Millisecond
	}
	c := Start(testContext(t), session.NewConn(sc, "script", opts.Metrics), opts)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// peer is an in-process TCP chat server for one client.
type peer struct {
	ln   net.Listener
	conn chan net.Conn
}

func newPeer(t *testing.T) *peer {
	t.Helper()
	ln, err := util.ListenLoopback()
	require.NoError(t, err)
	p := &peer{ln: ln, conn: make(chan net.Conn, 1)}
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		p.conn <- c
	}()
	t.Cleanup(func() { ln.Close() })
	return p
}

func (p *peer) Addr() string { return p.ln.Addr().String() }

// Accept returns the server side of the client's connection.
func (p *peer) Accept(t *testing.T) net.Conn {
	t.Helper()
	select {
	case c := <-p.conn:
		t.Cleanup(func() { c.Close() })
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("peer: no connection")
		return nil
	}
}

func sessionConn(raw net.Conn) *session.Conn {
	return session.NewConn(raw, raw.RemoteAddr().String(), nil)
}
