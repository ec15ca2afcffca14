package chat

import (
	"net"

	"tcpchat/internal/errors"
	"tcpchat/internal/metrics"
	"tcpchat/internal/session"
	"tcpchat/util"
)

// Dispatcher encodes outbound commands and writes them to the shared
// connection.  It runs on the caller's goroutine.
//
// Writes have no deadline: a peer that stops reading blocks the caller
// (and, through the guard, the reader) until the session is closed.
type Dispatcher struct {
	conn    *session.Conn
	logger  *util.Logger
	metrics *metrics.Collector
}

// NewDispatcher returns a dispatcher writing to conn.
func NewDispatcher(conn *session.Conn, logger *util.Logger, m *metrics.Collector) *Dispatcher {
	return &Dispatcher{conn: conn, logger: logger, metrics: m}
}

// Dispatch writes cmd.  A command with an empty argument is a no-op.
// A failed write is not retried and is returned as a
// *errors.DeliveryError; the connection stays open.
func (d *Dispatcher) Dispatch(cmd Command) error {
	payload, ok := Encode(cmd)
	if !ok {
		return nil
	}

	err := d.conn.ExclusiveWrite(func(raw net.Conn) error {
		_, err := util.WriteAll(raw, payload)
		return err
	})
	if err != nil {
		derr := errors.Delivery(cmd.Directive(), err)
		d.metrics.DeliveryFailed(derr.Error())
		d.logger.Warn("%v", derr)
		return derr
	}

	d.metrics.CommandSent(int64(len(payload)))
	d.logger.Debug("sent %s (%d bytes)", cmd.Directive(), len(payload))
	return nil
}

// SendMessage writes "/msg <text>".
func (d *Dispatcher) SendMessage(text string) error {
	return d.Dispatch(SendMessage{Text: text})
}

// ChangeNickname writes "/nickname <name>".
func (d *Dispatcher) ChangeNickname(name string) error {
	return d.Dispatch(ChangeNickname{Name: name})
}
