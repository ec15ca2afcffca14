package session

import (
	"context"
	"sync"

	"tcpchat/util"
)

// Reason records why a session ended.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonPeerClosed
	ReasonReadError
	ReasonUserQuit
	ReasonSignal
)

func (r Reason) String() string {
	switch r {
	case ReasonPeerClosed:
		return "peer closed"
	case ReasonReadError:
		return "read error"
	case ReasonUserQuit:
		return "user quit"
	case ReasonSignal:
		return "signal"
	default:
		return "running"
	}
}

// Lifecycle is the single place a session is torn down.  The reader
// reports a terminal event through it, the UI reports user quit through
// it, and the process reports signals through it.  Only the first
// Shutdown does anything.
type Lifecycle struct {
	conn   *Conn
	logger *util.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	mu     sync.Mutex
	reason Reason
	cause  error
	hooks  []func(Reason)
}

// NewLifecycle ties conn to a context derived from parent.  The context
// is cancelled by Shutdown.
func NewLifecycle(parent context.Context, conn *Conn, logger *util.Logger) *Lifecycle {
	ctx, cancel := context.WithCancel(parent)
	return &Lifecycle{
		conn:   conn,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Context is cancelled when the session shuts down.
func (l *Lifecycle) Context() context.Context { return l.ctx }

// Done is closed once shutdown has completed.
func (l *Lifecycle) Done() <-chan struct{} { return l.done }

// OnShutdown registers fn to run during shutdown.  If the session has
// already ended fn runs immediately.
func (l *Lifecycle) OnShutdown(fn func(Reason)) {
	l.mu.Lock()
	if l.reason == ReasonNone {
		l.hooks = append(l.hooks, fn)
		l.mu.Unlock()
		return
	}
	r := l.reason
	l.mu.Unlock()
	fn(r)
}

// Shutdown ends the session: it cancels the context, closes the
// connection, runs the hooks and closes Done.  It reports whether this
// call performed the shutdown; every later call is a no-op.
func (l *Lifecycle) Shutdown(reason Reason, cause error) bool {
	first := false
	l.once.Do(func() {
		first = true

		l.mu.Lock()
		l.reason = reason
		l.cause = cause
		hooks := l.hooks
		l.hooks = nil
		l.mu.Unlock()

		if cause != nil {
			l.logger.Verbose("shutting down (%s): %v", reason, cause)
		} else {
			l.logger.Verbose("shutting down (%s)", reason)
		}

		l.cancel()
		if err := l.conn.Close(); err != nil && !util.IsHarmless(err) {
			l.logger.Warn("close %s: %v", l.conn.Addr(), err)
		}
		for _, fn := range hooks {
			fn(reason)
		}
		close(l.done)
	})
	return first
}

// Reason returns why the session ended, or ReasonNone while running.
func (l *Lifecycle) Reason() Reason {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reason
}

// Err returns the error that ended the session, if any.
func (l *Lifecycle) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cause
}
