package chat

import (
	"unicode/utf8"

	"tcpchat/internal/errors"
)

// Decoder turns a stream of arbitrary byte chunks into UTF-8 strings.
// A code point split across two chunks is held back (at most three
// bytes) and prefixed to the next chunk.
type Decoder struct {
	pending []byte
	pos     int // stream offset of pending[0]
}

// Decode returns the longest valid prefix of the pending bytes plus
// chunk.  An incomplete sequence at the very end is kept for the next
// call; any other invalid byte is a *errors.DecodeError.
func (d *Decoder) Decode(chunk []byte) (string, error) {
	buf := chunk
	if len(d.pending) > 0 {
		buf = append(d.pending, chunk...)
	}

	i := 0
	for i < len(buf) {
		if buf[i] < utf8.RuneSelf {
			i++
			continue
		}
		r, size := utf8.DecodeRune(buf[i:])
		if r == utf8.RuneError && size == 1 {
			if !utf8.FullRune(buf[i:]) {
				break
			}
			return "", &errors.DecodeError{Offset: d.pos + i}
		}
		i += size
	}

	out := string(buf[:i])
	d.pos += i
	d.pending = append(d.pending[:0:0], buf[i:]...)
	return out, nil
}

// Pending reports how many bytes are held back.
func (d *Decoder) Pending() int { return len(d.pending) }

// Flush reports an error if the stream ended inside a code point.
func (d *Decoder) Flush() error {
	if len(d.pending) == 0 {
		return nil
	}
	err := &errors.DecodeError{Offset: d.pos, Tail: true}
	d.pending = nil
	return err
}
