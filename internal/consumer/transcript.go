package consumer

import (
	"strings"
	"sync"
)

// Transcript is the append-only record of received text, in arrival
// order.
type Transcript struct {
	mu     sync.Mutex
	chunks []string
	size   int
}

// Append records one received chunk.
func (t *Transcript) Append(chunk string) {
	t.mu.Lock()
	t.chunks = append(t.chunks, chunk)
	t.size += len(chunk)
	t.mu.Unlock()
}

// String returns every chunk concatenated.
func (t *Transcript) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var sb strings.Builder
	sb.Grow(t.size)
	for _, c := range t.chunks {
		sb.WriteString(c)
	}
	return sb.String()
}

// Chunks returns a copy of the recorded chunks.
func (t *Transcript) Chunks() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.chunks...)
}

// Len returns the number of chunks.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.chunks)
}
