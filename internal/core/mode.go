// Package core is the orchestration layer.  It composes the transport,
// the chat session and a consumer into the one operational mode of
// tcpchat, and provides a builder that assembles it from a Config.
//
// Architecture layers (bottom → top):
//
//	transport  →  session  →  chat  →  consumer  →  core  →  cmd (CLI)
package core

import "context"

// Mode is a complete run of the program, from connection establishment
// to teardown.
type Mode interface {
	Run(ctx context.Context) error
}
