package core

import (
	"errors"

	"github.com/google/uuid"
)

// NewID returns a random identifier suitable for sessions, messages and
// synthesized tool call ids.
func NewID() string {
	return uuid.NewString()
}

var (
	// ErrNotFound is returned by stores when the requested record does not
	// exist. Callers that treat absence as a normal outcome (memory lookups,
	// session reads) should test for it with errors.Is.
	ErrNotFound = errors.New("not found")

	// ErrBusy is returned by Agent.Process when a previous call on the same
	// agent is still in flight. The per-session history is an exclusively
	// owned append log; callers must serialize Process calls per session.
	ErrBusy = errors.New("agent busy: a process call is already in flight")
)
