// Package chat implements the client side of the line-less text chat
// protocol: a background reader that turns socket bytes into events, a
// dispatcher that writes the two outbound directives, and the Client
// that ties both to one guarded connection.
package chat

import "fmt"

// Event is something the reader hands to the consumer.  It is either
// Text or Disconnected.
type Event interface {
	isEvent()
}

// Text is a decoded chunk of server output.  It is not necessarily a
// complete line.
type Text struct {
	Data string
}

// Disconnected is the last event of a connection.  Err is nil when the
// peer closed the connection cleanly.
type Disconnected struct {
	Err error
}

func (Text) isEvent()         {}
func (Disconnected) isEvent() {}

func (t Text) String() string { return fmt.Sprintf("Text(%q)", t.Data) }

func (d Disconnected) String() string {
	if d.Err == nil {
		return "Disconnected"
	}
	return fmt.Sprintf("Disconnected(%v)", d.Err)
}
