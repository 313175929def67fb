package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mindkeep-ai/mindkeep/core"
	"github.com/mindkeep-ai/mindkeep/vector"
)

// InMemoryStore is a volatile core.MemoryStore keeping facts in a map keyed
// by their unique key. Saving an existing key replaces content, embedding and
// timestamp. Safe for concurrent access.
type InMemoryStore struct {
	mu    sync.RWMutex
	facts map[string]core.MemoryFact
}

// NewInMemoryStore constructs an empty in-memory fact store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{facts: make(map[string]core.MemoryFact)}
}

// Save upserts a fact by key.
func (s *InMemoryStore) Save(_ context.Context, fact core.MemoryFact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fact.UpdatedAt.IsZero() {
		fact.UpdatedAt = time.Now().UTC()
	}
	s.facts[fact.Key] = fact
	return nil
}

// Get returns the fact under key, or core.ErrNotFound.
func (s *InMemoryStore) Get(_ context.Context, key string) (*core.MemoryFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fact, ok := s.facts[key]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &fact, nil
}

// Delete removes the fact under key, or returns core.ErrNotFound.
func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.facts[key]; !ok {
		return core.ErrNotFound
	}
	delete(s.facts, key)
	return nil
}

// Recent lists up to limit facts, most recently updated first.
func (s *InMemoryStore) Recent(_ context.Context, limit int) ([]core.MemoryFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	facts := make([]core.MemoryFact, 0, len(s.facts))
	for _, fact := range s.facts {
		facts = append(facts, fact)
	}
	sort.Slice(facts, func(i, j int) bool { return facts[i].UpdatedAt.After(facts[j].UpdatedAt) })
	if limit > 0 && len(facts) > limit {
		facts = facts[:limit]
	}
	return facts, nil
}

// Search ranks embedded facts by cosine similarity to the query embedding.
// Candidates keep a stable order (key-sorted) so tie-breaking is
// deterministic.
func (s *InMemoryStore) Search(_ context.Context, embedding []float32, limit int) ([]core.ScoredFact, error) {
	if limit <= 0 {
		limit = core.DefaultFactSearchLimit
	}

	s.mu.RLock()
	keys := make([]string, 0, len(s.facts))
	for key, fact := range s.facts {
		if fact.Embedding != nil {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	candidates := make([]core.MemoryFact, len(keys))
	embeddings := make([][]float32, len(keys))
	for i, key := range keys {
		candidates[i] = s.facts[key]
		embeddings[i] = s.facts[key].Embedding
	}
	s.mu.RUnlock()

	ranked, err := vector.Rank(embedding, embeddings, limit)
	if err != nil {
		return nil, err
	}

	results := make([]core.ScoredFact, len(ranked))
	for i, r := range ranked {
		results[i] = core.ScoredFact{Fact: candidates[r.Index], Score: r.Score}
	}
	return results, nil
}
