package chat

import (
	"context"
	"io"
	"net"
	"time"

	"tcpchat/internal/errors"
	"tcpchat/internal/metrics"
	"tcpchat/internal/session"
	"tcpchat/util"
)

// Reader drains the connection on a background goroutine and turns
// what it reads into events.  It is the only producer on its channel
// and closes the channel when it exits.
type Reader struct {
	conn      *session.Conn
	lifecycle *session.Lifecycle
	events    chan<- Event
	chunkSize int
	poll      time.Duration
	logger    *util.Logger
	metrics   *metrics.Collector

	decoder Decoder
}

// NewReader builds a reader that reads chunkSize bytes at a time and
// holds the guard for at most poll per idle attempt.
func NewReader(conn *session.Conn, lc *session.Lifecycle, events chan<- Event,
	chunkSize int, poll time.Duration, logger *util.Logger, m *metrics.Collector) *Reader {
	return &Reader{
		conn:      conn,
		lifecycle: lc,
		events:    events,
		chunkSize: chunkSize,
		poll:      poll,
		logger:    logger,
		metrics:   m,
	}
}

// Run loops until the peer closes, a read fails, or the lifecycle is
// shut down.  Exactly one Disconnected is emitted (unless the consumer
// is already gone) and nothing follows it.
func (r *Reader) Run() {
	defer close(r.events)

	ctx := r.lifecycle.Context()
	buf := make([]byte, r.chunkSize)

	for {
		if ctx.Err() != nil {
			r.stop(ctx.Err())
			return
		}

		var n int
		err := r.conn.ExclusiveRead(ctx, func(raw net.Conn) error {
			if err := raw.SetReadDeadline(time.Now().Add(r.poll)); err != nil {
				return err
			}
			var rerr error
			n, rerr = raw.Read(buf)
			return rerr
		})

		if n > 0 {
			r.metrics.BytesReceived(int64(n))
			text, derr := r.decoder.Decode(buf[:n])
			if derr != nil {
				r.fail(errors.Read(r.conn.Addr(), derr))
				return
			}
			if text != "" && !r.emit(ctx, Text{Data: text}) {
				r.stop(ctx.Err())
				return
			}
		}

		switch {
		case err == nil && n > 0:
			continue
		case err == nil, errors.Is(err, io.EOF):
			r.peerClosed()
			return
		case errors.IsTimeout(err):
			r.metrics.IdlePoll()
			continue
		case ctx.Err() != nil || r.conn.Closed():
			// Shut down from the other side while reading.
			r.stop(err)
			return
		default:
			r.fail(errors.Read(r.conn.Addr(), err))
			return
		}
	}
}

// emit blocks until the consumer has room or the session ends.
func (r *Reader) emit(ctx context.Context, ev Event) bool {
	select {
	case r.events <- ev:
		r.metrics.TextEmitted()
		return true
	case <-ctx.Done():
		return false
	}
}

// terminal delivers the final event.  While the session is live it
// waits for room like any other event; once the session is shutting
// down it only delivers if there is room, since nobody may be reading.
func (r *Reader) terminal(ev Disconnected) {
	select {
	case r.events <- ev:
		return
	case <-r.lifecycle.Context().Done():
	}
	select {
	case r.events <- ev:
	default:
		r.logger.Debug("consumer gone, dropping %v", ev)
	}
}

func (r *Reader) peerClosed() {
	if err := r.decoder.Flush(); err != nil {
		r.fail(errors.Read(r.conn.Addr(), err))
		return
	}
	r.logger.Verbose("peer %s closed the connection", r.conn.Addr())
	r.terminal(Disconnected{})
	r.lifecycle.Shutdown(session.ReasonPeerClosed, nil)
}

func (r *Reader) fail(err error) {
	r.logger.Warn("%v", err)
	r.metrics.RecordError(err.Error())
	r.terminal(Disconnected{Err: err})
	r.lifecycle.Shutdown(session.ReasonReadError, err)
}

// stop handles an exit requested locally.  Normally the lifecycle has
// already shut down and only the event is left to deliver; the
// Shutdown call covers a connection closed behind the lifecycle's back.
func (r *Reader) stop(cause error) {
	if cause != nil && !util.IsHarmless(cause) && !errors.Is(cause, context.Canceled) {
		r.logger.Debug("reader stopping: %v", cause)
	}
	r.lifecycle.Shutdown(session.ReasonUserQuit, nil)
	r.terminal(Disconnected{Err: errors.ErrClosed})
}
