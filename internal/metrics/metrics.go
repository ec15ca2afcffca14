// Package metrics provides lightweight, lock-free counters for tracking
// runtime statistics of a chat session.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime metrics for a chat session.
// A nil Collector is safe to use; all methods become no-ops.
type Collector struct {
	bytesIn          atomic.Int64
	bytesOut         atomic.Int64
	textEvents       atomic.Int64
	idlePolls        atomic.Int64
	commandsSent     atomic.Int64
	deliveryFailures atomic.Int64
	guardWaitNanos   atomic.Int64
	guardMaxNanos    atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Inbound ──────────────────────────────────────────────────────────

// BytesReceived records n bytes read from the connection.
func (c *Collector) BytesReceived(n int64) {
	if c == nil {
		return
	}
	c.bytesIn.Add(n)
}

// TextEmitted records one Text event handed to the consumer.
func (c *Collector) TextEmitted() {
	if c == nil {
		return
	}
	c.textEvents.Add(1)
}

// IdlePoll records a read attempt that timed out with no data ready.
func (c *Collector) IdlePoll() {
	if c == nil {
		return
	}
	c.idlePolls.Add(1)
}

// TotalBytesIn returns total bytes received.
func (c *Collector) TotalBytesIn() int64 {
	if c == nil {
		return 0
	}
	return c.bytesIn.Load()
}

// TextEvents returns the number of Text events emitted.
func (c *Collector) TextEvents() int64 {
	if c == nil {
		return 0
	}
	return c.textEvents.Load()
}

// IdlePolls returns the number of empty read attempts.
func (c *Collector) IdlePolls() int64 {
	if c == nil {
		return 0
	}
	return c.idlePolls.Load()
}

// ── Outbound ─────────────────────────────────────────────────────────

// CommandSent records a command whose payload was fully written.
func (c *Collector) CommandSent(payloadBytes int64) {
	if c == nil {
		return
	}
	c.commandsSent.Add(1)
	c.bytesOut.Add(payloadBytes)
}

// DeliveryFailed records a command that could not be written.
func (c *Collector) DeliveryFailed(msg string) {
	if c == nil {
		return
	}
	c.deliveryFailures.Add(1)
	c.recordError(msg)
}

// TotalBytesOut returns total bytes written.
func (c *Collector) TotalBytesOut() int64 {
	if c == nil {
		return 0
	}
	return c.bytesOut.Load()
}

// CommandsSent returns the number of commands written.
func (c *Collector) CommandsSent() int64 {
	if c == nil {
		return 0
	}
	return c.commandsSent.Load()
}

// DeliveryFailures returns the number of failed commands.
func (c *Collector) DeliveryFailures() int64 {
	if c == nil {
		return 0
	}
	return c.deliveryFailures.Load()
}

// ── Guard contention ─────────────────────────────────────────────────

// GuardWait records how long a caller waited for the connection guard.
func (c *Collector) GuardWait(d time.Duration) {
	if c == nil {
		return
	}
	n := int64(d)
	c.guardWaitNanos.Add(n)
	for {
		cur := c.guardMaxNanos.Load()
		if n <= cur || c.guardMaxNanos.CompareAndSwap(cur, n) {
			return
		}
	}
}

// MaxGuardWait returns the longest single wait for the guard.
func (c *Collector) MaxGuardWait() time.Duration {
	if c == nil {
		return 0
	}
	return time.Duration(c.guardMaxNanos.Load())
}

// ── Errors ───────────────────────────────────────────────────────────

// RecordError stores msg as the most recent error.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.recordError(msg)
}

func (c *Collector) recordError(msg string) {
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime           string `json:"uptime"`
	BytesIn          int64  `json:"bytes_in"`
	BytesOut         int64  `json:"bytes_out"`
	TextEvents       int64  `json:"text_events"`
	IdlePolls        int64  `json:"idle_polls"`
	CommandsSent     int64  `json:"commands_sent"`
	DeliveryFailures int64  `json:"delivery_failures"`
	GuardWaitTotal   string `json:"guard_wait_total"`
	GuardWaitMax     string `json:"guard_wait_max"`
	LastError        string `json:"last_error,omitempty"`
	LastErrorMessage string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:           time.Since(c.startTime).Truncate(time.Second).String(),
		BytesIn:          c.bytesIn.Load(),
		BytesOut:         c.bytesOut.Load(),
		TextEvents:       c.textEvents.Load(),
		IdlePolls:        c.idlePolls.Load(),
		CommandsSent:     c.commandsSent.Load(),
		DeliveryFailures: c.deliveryFailures.Load(),
		GuardWaitTotal:   time.Duration(c.guardWaitNanos.Load()).String(),
		GuardWaitMax:     time.Duration(c.guardMaxNanos.Load()).String(),
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
