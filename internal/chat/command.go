package chat

// Wire directives.  A payload is the directive, one space, and the
// argument, with no terminator.
const (
	DirectiveMessage  = "/msg"
	DirectiveNickname = "/nickname"
)

// Command is an outbound request from the consumer.  It is either
// SendMessage or ChangeNickname.
type Command interface {
	// Directive returns the wire prefix, e.g. "/msg".
	Directive() string
	arg() string
}

// SendMessage posts Text to the room.
type SendMessage struct {
	Text string
}

// ChangeNickname asks the server to rename the user to Name.
type ChangeNickname struct {
	Name string
}

func (SendMessage) Directive() string    { return DirectiveMessage }
func (m SendMessage) arg() string        { return m.Text }
func (ChangeNickname) Directive() string { return DirectiveNickname }
func (n ChangeNickname) arg() string     { return n.Name }

// Encode returns the wire payload for cmd.  ok is false when the
// argument is empty; such commands are never sent.
func Encode(cmd Command) (payload []byte, ok bool) {
	a := cmd.arg()
	if a == "" {
		return nil, false
	}
	d := cmd.Directive()
	payload = make([]byte, 0, len(d)+1+len(a))
	payload = append(payload, d...)
	payload = append(payload, ' ')
	payload = append(payload, a...)
	return payload, true
}
