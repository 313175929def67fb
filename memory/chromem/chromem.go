// Package chromem implements core.MemoryStore on top of chromem-go, a pure
// Go embedded vector database. The collection handles similarity ranking;
// key-based lookups go through a side index since chromem has no primary-key
// reads. Embeddings are always provided by the caller, never computed by the
// collection.
package chromem

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/mindkeep-ai/mindkeep/core"
	"github.com/mindkeep-ai/mindkeep/logging"
)

// Store is a chromem-go backed memory fact store.
type Store struct {
	mu         sync.RWMutex
	collection *chromem.Collection
	facts      map[string]core.MemoryFact // key -> fact, including unembedded ones
	logger     logging.Logger
}

// New creates a store with a fresh collection. A nil logger disables logging.
func New(name string, logger logging.Logger) (*Store, error) {
	if name == "" {
		name = "memories"
	}
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection(name, nil, nil)
	if err != nil {
		return nil, err
	}
	return &Store{
		collection: collection,
		facts:      make(map[string]core.MemoryFact),
		logger:     logger,
	}, nil
}

// Save upserts a fact by key. The fact's key doubles as the chromem document
// id, so re-saving replaces the stored document and its embedding.
func (s *Store) Save(ctx context.Context, fact core.MemoryFact) error {
	if fact.UpdatedAt.IsZero() {
		fact.UpdatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if fact.Embedding != nil {
		doc := chromem.Document{
			ID:        fact.Key,
			Content:   fact.Content,
			Embedding: fact.Embedding,
			Metadata: map[string]string{
				"updated_at": strconv.FormatInt(fact.UpdatedAt.Unix(), 10),
			},
		}
		if err := s.collection.AddDocument(ctx, doc); err != nil {
			return err
		}
	} else if _, ok := s.facts[fact.Key]; ok {
		// Replacing an embedded fact with an unembedded one: drop the stale
		// document so search cannot return outdated content.
		if err := s.collection.Delete(ctx, nil, nil, fact.Key); err != nil {
			s.logger.Warn("failed to drop stale document", "key", fact.Key, "error", err.Error())
		}
	}

	s.facts[fact.Key] = fact
	return nil
}

// Get returns the fact under key, or core.ErrNotFound.
func (s *Store) Get(_ context.Context, key string) (*core.MemoryFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fact, ok := s.facts[key]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &fact, nil
}

// Delete removes the fact under key, or returns core.ErrNotFound.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fact, ok := s.facts[key]
	if !ok {
		return core.ErrNotFound
	}
	if fact.Embedding != nil {
		if err := s.collection.Delete(ctx, nil, nil, key); err != nil {
			return err
		}
	}
	delete(s.facts, key)
	return nil
}

// Recent lists up to limit facts, most recently updated first.
func (s *Store) Recent(_ context.Context, limit int) ([]core.MemoryFact, error) {
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

// Search ranks embedded facts by similarity to the query embedding using the
// chromem collection. The requested count is clamped to the collection size,
// which chromem otherwise rejects.
func (s *Store) Search(ctx context.Context, embedding []float32, limit int) ([]core.ScoredFact, error) {
	if limit <= 0 {
		limit = core.DefaultFactSearchLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if count := s.collection.Count(); count < limit {
		limit = count
	}
	if limit == 0 {
		return nil, nil
	}

	results, err := s.collection.QueryEmbedding(ctx, embedding, limit, nil, nil)
	if err != nil {
		return nil, err
	}

	scored := make([]core.ScoredFact, 0, len(results))
	for _, r := range results {
		fact, ok := s.facts[r.ID]
		if !ok {
			continue
		}
		scored = append(scored, core.ScoredFact{Fact: fact, Score: float64(r.Similarity)})
	}
	return scored, nil
}
