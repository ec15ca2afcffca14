package consumer

import (
	"sync"

	"tcpchat/internal/chat"
	"tcpchat/internal/errors"
	"tcpchat/internal/session"
)

// fakeSession mimics chat.Client: Shutdown makes the "reader" deliver
// Disconnected(ErrClosed) and close the channel.
type fakeSession struct {
	events chan chat.Event

	mu      sync.Mutex
	sent    []chat.Command
	reasons []session.Reason
	sendErr error
	once    sync.Once
}

func newFakeSession(buffered ...chat.Event) *fakeSession {
	f := &fakeSession{events: make(chan chat.Event, 16)}
	for _, ev := range buffered {
		f.events <- ev
	}
	return f
}

func (f *fakeSession) Events() <-chan chat.Event { return f.events }

func (f *fakeSession) Send(cmd chat.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return errors.Delivery(cmd.Directive(), f.sendErr)
	}
	f.sent = append(f.sent, cmd)
	return nil
}

func (f *fakeSession) Shutdown(reason session.Reason) {
	f.mu.Lock()
	f.reasons = append(f.reasons, reason)
	f.mu.Unlock()
	f.once.Do(func() {
		select {
		case f.events <- chat.Disconnected{Err: errors.ErrClosed}:
		default:
		}
		close(f.events)
	})
}

func (f *fakeSession) Sent() []chat.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]chat.Command(nil), f.sent...)
}

func (f *fakeSession) Reasons() []session.Reason {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]session.Reason(nil), f.reasons...)
}

var _ Session = (*fakeSession)(nil)
