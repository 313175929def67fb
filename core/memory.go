package core

import (
	"context"
	"time"
)

// MemoryFact is a durable key -> content pair with an optional embedding.
// Keys are unique: saving an existing key replaces content, embedding and
// timestamp (upsert semantics). Facts never expire on their own.
type MemoryFact struct {
	Key       string    `json:"key"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScoredFact pairs a retrieved fact with its cosine similarity to the query.
type ScoredFact struct {
	Fact  MemoryFact
	Score float64
}

// ScoredMessage pairs a retrieved message with its cosine similarity to the
// query.
type ScoredMessage struct {
	Message Message
	Score   float64
}

// Default result counts for similarity search when the caller passes a
// non-positive limit.
const (
	DefaultFactSearchLimit    = 8
	DefaultMessageSearchLimit = 5
)

// MemoryStore persists and retrieves memory facts. Implementations back
// Search with any ranking they like (the bundled ones use brute-force cosine
// similarity); the contract is query embedding in, ranked facts with scores
// out, so an approximate index can be substituted without touching callers.
type MemoryStore interface {
	// Save upserts a fact by key.
	Save(ctx context.Context, fact MemoryFact) error

	// Get returns the fact stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (*MemoryFact, error)

	// Delete removes the fact stored under key, or returns ErrNotFound.
	Delete(ctx context.Context, key string) error

	// Recent lists up to limit facts ordered by most recently updated.
	Recent(ctx context.Context, limit int) ([]MemoryFact, error)

	// Search ranks facts that carry an embedding by similarity to the query
	// embedding, descending, and returns at most limit results.
	Search(ctx context.Context, embedding []float32, limit int) ([]ScoredFact, error)
}
