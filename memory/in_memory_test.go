package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindkeep-ai/mindkeep/core"
	"github.com/mindkeep-ai/mindkeep/embedding"
)

func TestInMemoryStore_SaveIsUpsert(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	first := core.MemoryFact{Key: "city", Content: "Paris", UpdatedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, store.Save(ctx, first))
	second := core.MemoryFact{Key: "city", Content: "Rome", Embedding: []float32{1, 0}}
	require.NoError(t, store.Save(ctx, second))

	fact, err := store.Get(ctx, "city")
	require.NoError(t, err)
	assert.Equal(t, "Rome", fact.Content)
	assert.Equal(t, []float32{1, 0}, fact.Embedding)
	assert.True(t, fact.UpdatedAt.After(first.UpdatedAt))

	facts, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, facts, 1)
}

func TestInMemoryStore_GetAndDeleteUnknownKey(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "missing"), core.ErrNotFound)
}

func TestInMemoryStore_RecentOrdersByUpdate(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Save(ctx, core.MemoryFact{Key: "old", Content: "1", UpdatedAt: now.Add(-2 * time.Hour)}))
	require.NoError(t, store.Save(ctx, core.MemoryFact{Key: "new", Content: "2", UpdatedAt: now}))
	require.NoError(t, store.Save(ctx, core.MemoryFact{Key: "mid", Content: "3", UpdatedAt: now.Add(-time.Hour)}))

	facts, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, facts, 2)
	assert.Equal(t, "new", facts[0].Key)
	assert.Equal(t, "mid", facts[1].Key)
}

func TestInMemoryStore_SearchRanksBySimilarity(t *testing.T) {
	store := NewInMemoryStore()
	embedder := embedding.NewMockEmbedder(0)
	ctx := context.Background()

	for key, content := range map[string]string{
		"favorite_tea": "lapsang souchong",
		"hometown":     "Lisbon",
		"pet":          "a corgi named Biscuit",
	} {
		vec, err := embedder.Embed(ctx, content)
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, core.MemoryFact{Key: key, Content: content, Embedding: vec}))
	}
	// Facts without embeddings are never candidates.
	require.NoError(t, store.Save(ctx, core.MemoryFact{Key: "unembedded", Content: "ignored"}))

	query, err := embedder.Embed(ctx, "lapsang souchong")
	require.NoError(t, err)

	results, err := store.Search(ctx, query, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "favorite_tea", results[0].Fact.Key)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestInMemoryStore_SearchDimensionMismatchFailsFast(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, core.MemoryFact{Key: "a", Content: "x", Embedding: []float32{1, 0, 0}}))

	_, err := store.Search(ctx, []float32{1, 0}, 5)
	assert.Error(t, err)
}
