package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags and environment variable loading.

const (
	// DefaultChunkSize is the largest single read from the socket.
	DefaultChunkSize = 1024

	// MinChunkSize is the longest UTF-8 encoding of one code point.
	MinChunkSize = 4

	// DefaultQueueSize is how many inbound events may be pending before
	// the reader blocks waiting for the consumer.
	DefaultQueueSize = 100

	// DefaultPollInterval bounds how long one read attempt holds the
	// connection guard while no data is ready.
	DefaultPollInterval = 50 * time.Millisecond

	// DefaultConnTimeout is the TCP dial timeout.
	DefaultConnTimeout = 10 * time.Second
)
