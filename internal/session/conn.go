// Package session owns the single connection a chat session runs over
// and the controller that decides when the session ends.
//
// The socket is shared by the background reader and by whichever
// goroutine issues outbound commands.  Every read attempt and every
// write happens inside one mutual-exclusion guard; callers never see
// the raw net.Conn outside of it.
package session

import (
	"context"
	"net"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"tcpchat/internal/errors"
	"tcpchat/internal/metrics"
	"tcpchat/internal/transport"
)

// Conn is a duplex byte stream to one remote address guarded by a
// single mutex.  Reads and writes are mutually exclusive.
type Conn struct {
	raw     net.Conn
	addr    string
	metrics *metrics.Collector

	mu      sync.Mutex   // the guard
	writers atomic.Int32 // writers announced but not yet holding the guard

	closeOnce sync.Once
	closed    atomic.Bool
	closeErr  error
}

// Dial opens the connection.  A failure is returned as a
// *errors.ConnectionError; there is no retry.
func Dial(ctx context.Context, d transport.Dialer, address string, m *metrics.Collector) (*Conn, error) {
	raw, err := d.Dial(ctx, address)
	if err != nil {
		return nil, errors.Dial(address, err)
	}
	return NewConn(raw, address, m), nil
}

// NewConn wraps an already established connection.
func NewConn(raw net.Conn, address string, m *metrics.Collector) *Conn {
	return &Conn{raw: raw, addr: address, metrics: m}
}

// Addr returns the address the connection was dialled with.
func (c *Conn) Addr() string { return c.addr }

// RemoteAddr returns the peer address reported by the socket.
func (c *Conn) RemoteAddr() net.Addr { return c.raw.RemoteAddr() }

// Exclusive runs fn with sole access to the socket.  The guard is
// released when fn returns, including on error or panic.  After Close
// fn is not called and errors.ErrClosed is returned.
func (c *Conn) Exclusive(fn func(net.Conn) error) error {
	start := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics.GuardWait(time.Since(start))

	if c.closed.Load() {
		return errors.ErrClosed
	}
	return fn(c.raw)
}

// ExclusiveWrite is Exclusive for the outbound side.  The caller is
// counted as a pending writer until it holds the guard so that the
// reader steps aside between read attempts.
func (c *Conn) ExclusiveWrite(fn func(net.Conn) error) error {
	c.writers.Add(1)
	announced := true
	defer func() {
		if announced {
			c.writers.Add(-1)
		}
	}()

	return c.Exclusive(func(raw net.Conn) error {
		c.writers.Add(-1)
		announced = false
		return fn(raw)
	})
}

// ExclusiveRead is Exclusive for the inbound side.  Before taking the
// guard it yields until no writer is pending, so a writer that queued
// during the previous read attempt always goes next.
func (c *Conn) ExclusiveRead(ctx context.Context, fn func(net.Conn) error) error {
	for c.writers.Load() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		runtime.Gosched()
	}
	return c.Exclusive(fn)
}

// PendingWriters reports how many writers are waiting for the guard.
func (c *Conn) PendingWriters() int { return int(c.writers.Load()) }

// Close closes the socket once; later calls return the first result.
// It does not take the guard: closing is what unblocks a read or write
// that is holding it.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.raw.Close()
	})
	return c.closeErr
}

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool { return c.closed.Load() }
