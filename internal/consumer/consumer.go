// Package consumer defines what the user sees and does over an
// established chat session.  Each Consumer drains the session's events
// for display and turns user input into outbound commands; it operates
// on a Session rather than a raw connection, which keeps consumers
// testable and decoupled from the network.
package consumer

import (
	"context"

	"tcpchat/internal/chat"
	"tcpchat/internal/session"
)

// Session is the part of a chat.Client a consumer uses.
type Session interface {
	// Events delivers inbound events, ending with Disconnected.
	Events() <-chan chat.Event
	// Send writes one command.  It may block on the network and must
	// not be called from a UI's synchronous update path.
	Send(cmd chat.Command) error
	// Shutdown ends the session; later calls are no-ops.
	Shutdown(reason session.Reason)
}

// Consumer is the foreground loop of a chat session.
type Consumer interface {
	// Consume runs until the session ends.  A disconnect is a normal
	// end, not an error.
	Consume(ctx context.Context, sess Session) error
}

var _ Session = (*chat.Client)(nil)
