package consumer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"tcpchat/internal/chat"
	"tcpchat/internal/errors"
	"tcpchat/internal/session"
	"tcpchat/util"
)

// Console is the line-oriented consumer used when stdin is not a
// terminal or --plain is given.  Server text is written to Stdout
// verbatim; notices go to Notices.
type Console struct {
	// Stdin/Stdout/Notices default to os.Stdin/os.Stdout/os.Stderr
	// when nil.  Override in tests for deterministic I/O.
	Stdin   io.Reader
	Stdout  io.Writer
	Notices io.Writer
	Logger  *util.Logger

	Transcript Transcript
}

// inputResult is what the input goroutine reports back to the loop.
type inputResult struct {
	cmd  chat.Command
	err  error
	quit bool
}

func (c *Console) stdin() io.Reader {
	if c.Stdin != nil {
		return c.Stdin
	}
	return os.Stdin
}

func (c *Console) stdout() io.Writer {
	if c.Stdout != nil {
		return c.Stdout
	}
	return os.Stdout
}

func (c *Console) notices() io.Writer {
	if c.Notices != nil {
		return c.Notices
	}
	return os.Stderr
}

// Consume prints events until the session ends.  Input lines are read
// and sent on a separate goroutine so a slow write never holds up the
// display.  End of input counts as /quit.
func (c *Console) Consume(ctx context.Context, sess Session) error {
	done := make(chan struct{})
	defer close(done)

	results := make(chan inputResult)
	go c.pumpInput(sess, results, done)

	events := sess.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				c.notice("*** connection closed")
				if c.Logger != nil {
					c.Logger.Verbose("%v", errors.ErrChannelClosed)
				}
				return nil
			}
			switch e := ev.(type) {
			case chat.Text:
				c.Transcript.Append(e.Data)
				if _, err := io.WriteString(c.stdout(), e.Data); err != nil {
					sess.Shutdown(session.ReasonUserQuit)
					return fmt.Errorf("write output: %w", err)
				}
			case chat.Disconnected:
				c.disconnected(e)
				return nil
			}

		case r := <-results:
			switch {
			case r.quit:
				// Keep draining; the reader's closing event ends the loop.
				sess.Shutdown(session.ReasonUserQuit)
			case r.err != nil:
				c.notice("! not delivered: %v", r.err)
			}

		case <-ctx.Done():
			sess.Shutdown(session.ReasonSignal)
			ctx = context.Background()
		}
	}
}

// pumpInput reads lines, sends them, and reports failures and quit.
func (c *Console) pumpInput(sess Session, results chan<- inputResult, done <-chan struct{}) {
	report := func(r inputResult) bool {
		select {
		case results <- r:
			return true
		case <-done:
			return false
		}
	}

	sc := bufio.NewScanner(c.stdin())
	for sc.Scan() {
		a := ParseInput(sc.Text())
		if a.Quit {
			report(inputResult{quit: true})
			return
		}
		if a.Command == nil {
			continue
		}
		if err := sess.Send(a.Command); err != nil {
			if !report(inputResult{cmd: a.Command, err: err}) {
				return
			}
		}
	}
	if err := sc.Err(); err != nil && c.Logger != nil {
		c.Logger.Warn("reading input: %v", err)
	}
	report(inputResult{quit: true})
}

func (c *Console) disconnected(e chat.Disconnected) {
	switch {
	case e.Err == nil:
		c.notice("*** server closed the connection")
	case errors.Is(e.Err, errors.ErrClosed):
		c.notice("*** disconnected")
	default:
		c.notice("*** disconnected: %v", e.Err)
	}
}

func (c *Console) notice(format string, args ...interface{}) {
	fmt.Fprintf(c.notices(), format+"\n", args...)
}
