// Package transport provides the abstraction for establishing the one
// outbound connection a chat session runs over.  Transports handle the
// "how" of reaching the server, independent of what is exchanged once
// connected (which is the chat layer's job).
package transport

import (
	"context"
	"net"
)

// Dialer opens the outbound connection to the chat server.
type Dialer interface {
	// Dial establishes a connection to the given address.
	Dial(ctx context.Context, address string) (net.Conn, error)
}

// DialerFunc adapts an ordinary function to the Dialer interface.
// Tests use it to hand the session one end of a net.Pipe.
type DialerFunc func(ctx context.Context, address string) (net.Conn, error)

// Dial calls f(ctx, address).
func (f DialerFunc) Dial(ctx context.Context, address string) (net.Conn, error) {
	return f(ctx, address)
}
