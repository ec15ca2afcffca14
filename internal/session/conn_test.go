package session

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tcpchat/internal/errors"
	"tcpchat/internal/metrics"
	"tcpchat/internal/transport"
)

func pipeConn(t *testing.T) (*Conn, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return NewConn(client, "pipe", metrics.New()), server
}

func TestDial_Failure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = Dial(context.Background(), &transport.TCPDialer{Timeout: time.Second}, addr, nil)
	require.Error(t, err)

	var ce *errors.ConnectionError
	require.True(t, errors.As(err, &ce), "want *ConnectionError, got %T", err)
	assert.Equal(t, addr, ce.Addr)
}

func TestDial_Success(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	c, err := Dial(context.Background(), &transport.TCPDialer{Timeout: time.Second}, ln.Addr().String(), nil)
	require.NoError(t, err)
	defer c.Close()

	peer := <-accepted
	defer peer.Close()

	assert.Equal(t, ln.Addr().String(), c.Addr())
	assert.Equal(t, ln.Addr().String(), c.RemoteAddr().String())
}

func TestConn_ExclusiveIsMutuallyExclusive(t *testing.T) {
	c, _ := pipeConn(t)

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(write bool) {
			defer wg.Done()
			fn := func(net.Conn) error {
				n := inside.Add(1)
				for {
					m := maxInside.Load()
					if n <= m || maxInside.CompareAndSwap(m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				inside.Add(-1)
				return nil
			}
			if write {
				_ = c.ExclusiveWrite(fn)
			} else {
				_ = c.ExclusiveRead(context.Background(), fn)
			}
		}(i%2 == 0)
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
}

func TestConn_ExclusiveReleasesOnPanic(t *testing.T) {
	c, _ := pipeConn(t)

	func() {
		defer func() { _ = recover() }()
		_ = c.Exclusive(func(net.Conn) error { panic("boom") })
	}()

	done := make(chan struct{})
	go func() {
		_ = c.Exclusive(func(net.Conn) error { return nil })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("guard was not released after panic")
	}
}

func TestConn_ExclusiveReturnsFnError(t *testing.T) {
	c, _ := pipeConn(t)
	boom := errors.New("boom")
	err := c.Exclusive(func(net.Conn) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestConn_CloseIdempotent(t *testing.T) {
	c, _ := pipeConn(t)

	require.NoError(t, c.Close())
	assert.NoError(t, c.Close())
	assert.True(t, c.Closed())

	called := false
	err := c.Exclusive(func(net.Conn) error { called = true; return nil })
	assert.ErrorIs(t, err, errors.ErrClosed)
	assert.False(t, called)
}

func TestConn_ExclusiveWriteAfterCloseResetsPending(t *testing.T) {
	c, _ := pipeConn(t)
	require.NoError(t, c.Close())

	err := c.ExclusiveWrite(func(net.Conn) error { return nil })
	assert.ErrorIs(t, err, errors.ErrClosed)
	assert.Equal(t, 0, c.PendingWriters())
}

func TestConn_CloseUnblocksHeldRead(t *testing.T) {
	c, _ := pipeConn(t)

	readErr := make(chan error, 1)
	go func() {
		readErr <- c.Exclusive(func(raw net.Conn) error {
			_, err := raw.Read(make([]byte, 8))
			return err
		})
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, c.Close())

	select {
	case err := <-readErr:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("Close did not unblock the read")
	}
}

// TestConn_WriterGoesNextAfterRead checks that a writer queued while the
// reader holds the guard is served before the reader's next attempt.
func TestConn_WriterGoesNextAfterRead(t *testing.T) {
	c, _ := pipeConn(t)
	ctx := context.Background()

	var order []string
	var mu sync.Mutex
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	holding := make(chan struct{})
	release := make(chan struct{})
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		_ = c.ExclusiveRead(ctx, func(net.Conn) error {
			record("read1")
			close(holding)
			<-release
			return nil
		})
		_ = c.ExclusiveRead(ctx, func(net.Conn) error {
			record("read2")
			return nil
		})
	}()

	<-holding
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		_ = c.ExclusiveWrite(func(net.Conn) error {
			record("write")
			return nil
		})
	}()

	require.Eventually(t, func() bool { return c.PendingWriters() == 1 }, time.Second, time.Millisecond)
	close(release)
	<-readerDone
	<-writerDone

	assert.Equal(t, []string{"read1", "write", "read2"}, order)
}

func TestConn_ExclusiveReadHonoursContextWhileYielding(t *testing.T) {
	c, _ := pipeConn(t)
	c.writers.Add(1) // a writer that never arrives
	defer c.writers.Add(-1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.ExclusiveRead(ctx, func(net.Conn) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
