package chat

import (
	"io"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tcpchat/internal/errors"
	"tcpchat/internal/metrics"
	"tcpchat/internal/session"
)

func newTestDispatcher(sc *scriptConn) (*Dispatcher, *session.Conn, *metrics.Collector) {
	m := metrics.New()
	conn := session.NewConn(sc, "script", m)
	return NewDispatcher(conn, quietLogger(), m), conn, m
}

func TestDispatcher_EmptyCommandsWriteNothing(t *testing.T) {
	sc := newScriptConn()
	d, _, m := newTestDispatcher(sc)

	require.NoError(t, d.SendMessage(""))
	require.NoError(t, d.ChangeNickname(""))

	assert.Empty(t, sc.Written())
	assert.Zero(t, m.CommandsSent())
}

func TestDispatcher_SendMessage(t *testing.T) {
	sc := newScriptConn()
	d, _, m := newTestDispatcher(sc)

	require.NoError(t, d.SendMessage("hi"))
	assert.Equal(t, "/msg hi", sc.Written())
	assert.Equal(t, int64(1), m.CommandsSent())
	assert.Equal(t, int64(7), m.TotalBytesOut())
}

func TestDispatcher_ChangeNickname(t *testing.T) {
	sc := newScriptConn()
	d, _, _ := newTestDispatcher(sc)

	require.NoError(t, d.ChangeNickname("bob"))
	assert.Equal(t, "/nickname bob", sc.Written())
}

func TestDispatcher_DispatchSequence(t *testing.T) {
	sc := newScriptConn()
	d, _, _ := newTestDispatcher(sc)

	for _, cmd := range []Command{
		SendMessage{Text: "one"},
		ChangeNickname{Name: "alice"},
		SendMessage{},
		SendMessage{Text: "two"},
	} {
		require.NoError(t, d.Dispatch(cmd))
	}
	assert.Equal(t, "/msg one/nickname alice/msg two", sc.Written())
}

func TestDispatcher_WriteErrorIsDeliveryFailure(t *testing.T) {
	sc := newScriptConn()
	sc.writeErr = syscall.EPIPE
	d, conn, m := newTestDispatcher(sc)

	err := d.SendMessage("lost")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrDeliveryFailed)
	assert.ErrorIs(t, err, syscall.EPIPE)

	var de *errors.DeliveryError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "/msg", de.Command)

	assert.False(t, conn.Closed(), "a failed send must not close the connection")
	assert.Equal(t, int64(1), m.DeliveryFailures())

	// The next command is attempted normally.
	sc.mu.Lock()
	sc.writeErr = nil
	sc.mu.Unlock()
	require.NoError(t, d.ChangeNickname("bob"))
	assert.Equal(t, "/nickname bob", sc.Written())
}

func TestDispatcher_AfterCloseFails(t *testing.T) {
	sc := newScriptConn()
	d, conn, _ := newTestDispatcher(sc)
	require.NoError(t, conn.Close())

	err := d.SendMessage("too late")
	assert.ErrorIs(t, err, errors.ErrDeliveryFailed)
	assert.ErrorIs(t, err, errors.ErrClosed)
}

func TestDispatcher_ShortWritesAreCompleted(t *testing.T) {
	sc := newScriptConn()
	conn := session.NewConn(&trickleConn{scriptConn: sc}, "trickle", nil)
	d := NewDispatcher(conn, quietLogger(), nil)

	require.NoError(t, d.SendMessage("a longer message"))
	assert.Equal(t, "/msg a longer message", sc.Written())
}

// trickleConn writes at most two bytes per call.
type trickleConn struct {
	*scriptConn
}

func (c *trickleConn) Write(p []byte) (int, error) {
	if len(p) > 2 {
		p = p[:2]
	}
	return c.scriptConn.Write(p)
}

var _ io.Writer = (*trickleConn)(nil)
