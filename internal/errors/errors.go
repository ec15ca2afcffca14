// Package errors provides domain-specific error types for tcpchat.
//
// These types carry structured context (operation, address, offending
// command) that helps callers decide how to handle failures: a dial
// failure is fatal, a read failure ends the session, and a delivery
// failure is reported for that one command only.
package errors

import (
	"errors"
	"fmt"
	"net"
	"os"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrClosed         = errors.New("connection is closed")
	ErrDeliveryFailed = errors.New("delivery failed")
	ErrChannelClosed  = errors.New("event channel closed")
	ErrInvalidUTF8    = errors.New("invalid utf-8")
)

// ── Structured error types ───────────────────────────────────────────

// ConnectionError reports that the initial dial did not succeed.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ReadError is any failure of the inbound side other than a poll
// timeout.  It always ends the session.
type ReadError struct {
	Addr string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Addr, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// DecodeError marks inbound bytes that are not valid UTF-8 even after
// a split trailing sequence has been carried into the next chunk.
type DecodeError struct {
	Offset int  // byte offset of the first bad byte within the pending data
	Tail   bool // true when an incomplete sequence was left at end of stream
}

func (e *DecodeError) Error() string {
	if e.Tail {
		return fmt.Sprintf("%v: truncated sequence at offset %d", ErrInvalidUTF8, e.Offset)
	}
	return fmt.Sprintf("%v at offset %d", ErrInvalidUTF8, e.Offset)
}

func (e *DecodeError) Unwrap() error { return ErrInvalidUTF8 }

// DeliveryError reports that one outbound command could not be written.
// The connection itself is left alone.
type DeliveryError struct {
	Command string // directive, e.g. "/msg"
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Command, ErrDeliveryFailed, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause so that
// errors.Is works for either.
func (e *DeliveryError) Unwrap() []error { return []error{ErrDeliveryFailed, e.Err} }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Dial wraps a dial failure.
func Dial(addr string, err error) *ConnectionError {
	return &ConnectionError{Addr: addr, Err: err}
}

// Read wraps a read failure.
func Read(addr string, err error) *ReadError {
	return &ReadError{Addr: addr, Err: err}
}

// Delivery wraps a failed write of the given directive.
func Delivery(command string, err error) *DeliveryError {
	return &DeliveryError{Command: command, Err: err}
}

// ── Classification helpers ───────────────────────────────────────────

// IsTimeout reports whether err is a deadline expiry, i.e. the read
// simply found no data ready.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// IsClosed reports whether err comes from using a connection that has
// already been closed locally.
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed) || errors.Is(err, net.ErrClosed)
}

// ── Re-exports for convenience ───────────────────────────────────────
//
// These allow callers to use tcpchat/internal/errors as a drop-in
// replacement for the standard library in common operations.

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
