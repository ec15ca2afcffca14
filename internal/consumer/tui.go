package consumer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"tcpchat/internal/chat"
	"tcpchat/internal/errors"
	"tcpchat/internal/session"
)

// eventMsg carries one value received from the session's event channel.
// ok is false once the channel has been closed.
type eventMsg struct {
	ev chat.Event
	ok bool
}

// deliveryMsg reports the outcome of one Send.
type deliveryMsg struct {
	cmd chat.Command
	err error
}

// listenCmd blocks until the next event arrives.
func listenCmd(events <-chan chat.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		return eventMsg{ev: ev, ok: ok}
	}
}

// sendCmd performs a Send off the update path.
func sendCmd(sess Session, cmd chat.Command) tea.Cmd {
	return func() tea.Msg {
		return deliveryMsg{cmd: cmd, err: sess.Send(cmd)}
	}
}

// quitCmd ends the session.  The reader's closing event then stops the
// program.
func quitCmd(sess Session) tea.Cmd {
	return func() tea.Msg {
		sess.Shutdown(session.ReasonUserQuit)
		return nil
	}
}

// Model is the bubbletea model of the chat window: a scrolling
// transcript above a one-line input.
type Model struct {
	sess       Session
	styles     Styles
	transcript *Transcript

	viewport viewport.Model
	input    textinput.Model
	lines    []string

	// outbox keeps sends in typing order; only its head is in flight.
	outbox   []chat.Command
	inflight bool

	status   string
	quitting bool
	closed   bool
	width    int
	height   int
}

// NewModel creates a chat window over sess.  transcript may be nil.
func NewModel(sess Session, styles Styles, transcript *Transcript) Model {
	ti := textinput.New()
	ti.Placeholder = "message, /nick <name>, /quit"
	ti.Prompt = styles.Prompt.Render("> ")
	ti.CharLimit = 0
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	if transcript == nil {
		transcript = &Transcript{}
	}
	return Model{
		sess:       sess,
		styles:     styles,
		transcript: transcript,
		viewport:   vp,
		input:      ti,
		status:     "connected",
	}
}

// Init starts listening for events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(listenCmd(m.sess.Events()), textinput.Blink)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			cmd := m.quit()
			return m, cmd
		case tea.KeyEnter:
			cmd := m.submit()
			return m, cmd
		}

	case eventMsg:
		if !msg.ok {
			return m.disconnected(chat.Disconnected{Err: errors.ErrChannelClosed})
		}
		switch ev := msg.ev.(type) {
		case chat.Text:
			m.transcript.Append(ev.Data)
			m.addLine(m.styles.Text.Render(strings.TrimRight(ev.Data, "\r\n")))
		case chat.Disconnected:
			return m.disconnected(ev)
		}
		cmds = append(cmds, listenCmd(m.sess.Events()))

	case deliveryMsg:
		m.inflight = false
		if len(m.outbox) > 0 {
			m.outbox = m.outbox[1:]
		}
		if msg.err != nil {
			m.addLine(m.styles.Error.Render(fmt.Sprintf("! not delivered: %v", msg.err)))
		}
		if cmd := m.flush(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	var tiCmd tea.Cmd
	m.input, tiCmd = m.input.Update(msg)
	if tiCmd != nil {
		cmds = append(cmds, tiCmd)
	}
	return m, tea.Batch(cmds...)
}

// View renders the window.
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(m.styles.StatusBar.Render(m.status))
	sb.WriteString("\n")
	sb.WriteString(m.input.View())
	return sb.String()
}

// Lines returns the rendered transcript lines.
func (m Model) Lines() []string { return m.lines }

// Closed reports whether the session has ended.
func (m Model) Closed() bool { return m.closed }

func (m *Model) submit() tea.Cmd {
	a := ParseInput(m.input.Value())
	m.input.Reset()
	if a.Quit {
		return m.quit()
	}
	if a.Command == nil || m.closed {
		return nil
	}
	m.outbox = append(m.outbox, a.Command)
	return m.flush()
}

// flush starts sending the head of the outbox if nothing is in flight.
func (m *Model) flush() tea.Cmd {
	if m.inflight || len(m.outbox) == 0 {
		return nil
	}
	m.inflight = true
	return sendCmd(m.sess, m.outbox[0])
}

func (m *Model) quit() tea.Cmd {
	if m.quitting {
		return nil
	}
	m.quitting = true
	m.status = "disconnecting..."
	return quitCmd(m.sess)
}

func (m Model) disconnected(ev chat.Disconnected) (tea.Model, tea.Cmd) {
	m.closed = true
	switch {
	case ev.Err == nil:
		m.status = "server closed the connection"
	case errors.Is(ev.Err, errors.ErrClosed), errors.Is(ev.Err, errors.ErrChannelClosed):
		m.status = "disconnected"
	default:
		m.status = fmt.Sprintf("disconnected: %v", ev.Err)
	}
	m.addLine(m.styles.Notice.Render("*** " + m.status))
	return m, tea.Quit
}

func (m *Model) addLine(line string) {
	m.lines = append(m.lines, line)
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func (m *Model) updateLayout() {
	h := m.height - 2
	if h < 1 {
		h = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = h
	m.input.Width = max(m.width-4, 1)
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

// TUI is the full-screen consumer used on interactive terminals.
type TUI struct {
	// Input/Output override the terminal; nil means stdin/stdout.
	Input     io.Reader
	Output    io.Writer
	AltScreen bool
	Styles    *Styles

	Transcript Transcript
}

// Consume runs the chat window until the session ends.
func (t *TUI) Consume(ctx context.Context, sess Session) error {
	styles := DefaultStyles()
	if t.Styles != nil {
		styles = *t.Styles
	}
	model := NewModel(sess, styles, &t.Transcript)

	var opts []tea.ProgramOption
	if t.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if t.Input != nil {
		opts = append(opts, tea.WithInput(t.Input))
	}
	if t.Output != nil {
		opts = append(opts, tea.WithOutput(t.Output))
	}
	p := tea.NewProgram(model, opts...)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			sess.Shutdown(session.ReasonSignal)
		case <-done:
		}
	}()

	_, err := p.Run()
	// No-op unless the program stopped before a Disconnected arrived.
	sess.Shutdown(session.ReasonUserQuit)
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
