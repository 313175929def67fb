package core

import (
	"context"
	"time"
)

// Session is the durable record for one conversation.
type Session struct {
	ID      string    `json:"id"`
	Title   string    `json:"title,omitempty"`
	Summary string    `json:"summary,omitempty"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// SessionStore persists session records.
type SessionStore interface {
	// Create stores a new session under the given id (a fresh id is
	// generated when empty) and returns it.
	Create(ctx context.Context, id string) (*Session, error)

	// Get returns the session with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session and its messages.
	Delete(ctx context.Context, id string) error
}

// MessageStore persists the ordered message log of a session and supports
// similarity search over it. Ordering is by insertion; implementations must
// return messages in append order.
type MessageStore interface {
	// Append adds a message to the end of the session log.
	Append(ctx context.Context, sessionID string, msg Message) error

	// Messages returns the full ordered log for a session.
	Messages(ctx context.Context, sessionID string) ([]Message, error)

	// TruncateFrom removes the message at the given zero-based index and
	// everything after it.
	TruncateFrom(ctx context.Context, sessionID string, index int) error

	// Search ranks user/assistant messages that carry an embedding by
	// similarity to the query embedding. Tool plumbing turns are never
	// retrieval targets.
	Search(ctx context.Context, sessionID string, embedding []float32, limit int) ([]ScoredMessage, error)
}
