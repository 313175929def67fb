package memory

import (
	"context"
	"sync"

	"github.com/mindkeep-ai/mindkeep/core"
	"github.com/mindkeep-ai/mindkeep/vector"
)

// InMemoryMessageStore is a volatile core.MessageStore keeping per-session
// append-only message logs. Safe for concurrent access; returned slices are
// defensive copies.
type InMemoryMessageStore struct {
	mu       sync.RWMutex
	sessions map[string][]core.Message
}

// NewInMemoryMessageStore constructs an empty in-memory message store.
func NewInMemoryMessageStore() *InMemoryMessageStore {
	return &InMemoryMessageStore{sessions: make(map[string][]core.Message)}
}

// Append adds a message to the end of the session log.
func (s *InMemoryMessageStore) Append(_ context.Context, sessionID string, msg core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], msg)
	return nil
}

// Messages returns a copy of the full ordered log for a session.
func (s *InMemoryMessageStore) Messages(_ context.Context, sessionID string) ([]core.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.sessions[sessionID]
	out := make([]core.Message, len(log))
	copy(out, log)
	return out, nil
}

// TruncateFrom removes the message at index and everything after it.
func (s *InMemoryMessageStore) TruncateFrom(_ context.Context, sessionID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log, ok := s.sessions[sessionID]
	if !ok || index < 0 || index >= len(log) {
		return core.ErrNotFound
	}
	s.sessions[sessionID] = log[:index]
	return nil
}

// Search ranks embedded user/assistant messages by cosine similarity to the
// query embedding, in log order for stable tie-breaking.
func (s *InMemoryMessageStore) Search(_ context.Context, sessionID string, embedding []float32, limit int) ([]core.ScoredMessage, error) {
	if limit <= 0 {
		limit = core.DefaultMessageSearchLimit
	}

	s.mu.RLock()
	var candidates []core.Message
	var embeddings [][]float32
	for _, msg := range s.sessions[sessionID] {
		if msg.Embedding == nil {
			continue
		}
		if msg.Role != core.RoleUser && msg.Role != core.RoleAssistant {
			continue
		}
		candidates = append(candidates, msg)
		embeddings = append(embeddings, msg.Embedding)
	}
	s.mu.RUnlock()

	ranked, err := vector.Rank(embedding, embeddings, limit)
	if err != nil {
		return nil, err
	}

	results := make([]core.ScoredMessage, len(ranked))
	for i, r := range ranked {
		results[i] = core.ScoredMessage{Message: candidates[r.Index], Score: r.Score}
	}
	return results, nil
}
