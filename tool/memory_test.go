package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindkeep-ai/mindkeep/core"
	"github.com/mindkeep-ai/mindkeep/embedding"
	"github.com/mindkeep-ai/mindkeep/memory"
)

// brokenEmbedder fails every call; saves must still go through.
type brokenEmbedder struct{}

func (brokenEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("provider unavailable")
}

func (brokenEmbedder) Dimensions() int { return 0 }

func newToolkitRegistry(embedder embedding.Embedder) (*Registry, core.MemoryStore) {
	store := memory.NewInMemoryStore()
	r := NewRegistry(nil)
	r.RegisterAll(NewMemoryToolkit(store, embedder, nil).Tools())
	return r, store
}

func TestMemoryToolkit_SaveGetDeleteCycle(t *testing.T) {
	r, store := newToolkitRegistry(embedding.NewMockEmbedder(0))
	ctx := context.Background()

	result := r.Execute(ctx, "save_memory", map[string]any{"key": "user_name", "content": "Alex"})
	require.Nil(t, result.Error)
	assert.Contains(t, result.ForModel, "user_name")

	fact, err := store.Get(ctx, "user_name")
	require.NoError(t, err)
	assert.Equal(t, "Alex", fact.Content)
	assert.NotNil(t, fact.Embedding)

	result = r.Execute(ctx, "get_memory", map[string]any{"key": "user_name"})
	assert.Equal(t, "user_name: Alex", result.ForModel)

	result = r.Execute(ctx, "delete_memory", map[string]any{"key": "user_name"})
	require.Nil(t, result.Error)

	result = r.Execute(ctx, "get_memory", map[string]any{"key": "user_name"})
	assert.Contains(t, result.ForModel, "No memory stored")
}

func TestMemoryToolkit_SaveOverwritesExistingKey(t *testing.T) {
	r, store := newToolkitRegistry(embedding.NewMockEmbedder(0))
	ctx := context.Background()

	r.Execute(ctx, "save_memory", map[string]any{"key": "city", "content": "Paris"})
	r.Execute(ctx, "save_memory", map[string]any{"key": "city", "content": "Rome"})

	fact, err := store.Get(ctx, "city")
	require.NoError(t, err)
	assert.Equal(t, "Rome", fact.Content)

	facts, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, facts, 1)
}

func TestMemoryToolkit_SaveSurvivesEmbeddingFailure(t *testing.T) {
	r, store := newToolkitRegistry(brokenEmbedder{})
	ctx := context.Background()

	result := r.Execute(ctx, "save_memory", map[string]any{"key": "pet", "content": "a corgi named Biscuit"})
	require.Nil(t, result.Error)

	fact, err := store.Get(ctx, "pet")
	require.NoError(t, err)
	assert.Nil(t, fact.Embedding)
}

func TestMemoryToolkit_SearchFindsRelatedFact(t *testing.T) {
	r, _ := newToolkitRegistry(embedding.NewMockEmbedder(0))
	ctx := context.Background()

	r.Execute(ctx, "save_memory", map[string]any{"key": "favorite_tea", "content": "lapsang souchong"})
	r.Execute(ctx, "save_memory", map[string]any{"key": "hometown", "content": "Lisbon"})

	// The mock embedder is deterministic, so the exact content is its own
	// nearest neighbor.
	result := r.Execute(ctx, "search_memories", map[string]any{"query": "lapsang souchong", "limit": 1.0})
	require.Nil(t, result.Error)
	assert.Equal(t, "favorite_tea: lapsang souchong", result.ForModel)
}

func TestMemoryToolkit_ListMemories(t *testing.T) {
	r, _ := newToolkitRegistry(embedding.NewMockEmbedder(0))
	ctx := context.Background()

	result := r.Execute(ctx, "list_memories", map[string]any{})
	assert.Contains(t, result.ForModel, "No memories")

	r.Execute(ctx, "save_memory", map[string]any{"key": "a", "content": "one"})
	r.Execute(ctx, "save_memory", map[string]any{"key": "b", "content": "two"})

	result = r.Execute(ctx, "list_memories", map[string]any{})
	assert.Contains(t, result.ForModel, "a: one")
	assert.Contains(t, result.ForModel, "b: two")
}
