package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindkeep-ai/mindkeep/core"
	"github.com/mindkeep-ai/mindkeep/embedding"
	"github.com/mindkeep-ai/mindkeep/memory"
	"github.com/mindkeep-ai/mindkeep/model"
)

// failingEmbedder always errors, to exercise the best-effort path.
type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("embedding service down")
}

func (failingEmbedder) Dimensions() int { return 0 }

// failingMemoryStore errors on search only.
type failingMemoryStore struct {
	core.MemoryStore
}

func (failingMemoryStore) Search(context.Context, []float32, int) ([]core.ScoredFact, error) {
	return nil, errors.New("store down")
}

func seededMemoryAgent(t *testing.T, chatModel model.ChatModel) (*Agent, core.MemoryStore) {
	t.Helper()
	embedder := embedding.NewMockEmbedder(0)
	store := memory.NewInMemoryStore()

	ctx := context.Background()
	for _, fact := range []core.MemoryFact{
		{Key: "favorite_tea", Content: "lapsang souchong"},
		{Key: "hometown", Content: "Lisbon"},
	} {
		vec, err := embedder.Embed(ctx, fact.Content)
		require.NoError(t, err)
		fact.Embedding = vec
		require.NoError(t, store.Save(ctx, fact))
	}

	a := New(chatModel, func(o *Options) {
		o.SystemPrompt = "You are helpful."
		o.Memories = store
		o.Embedder = embedder
	})
	return a, store
}

func TestInjectMemories_AugmentsSystemCopyOnly(t *testing.T) {
	a, _ := seededMemoryAgent(t, model.NewMockModel("test"))

	window := []core.Message{
		core.NewSystemMessage("You are helpful."),
		core.NewUserMessage("what tea do I like?", nil),
	}

	out := a.injectMemories(context.Background(), window)

	require.Len(t, out, 2)
	assert.Contains(t, out[0].Content, "You are helpful.")
	assert.Contains(t, out[0].Content, memoryBlockHeader)
	assert.Contains(t, out[0].Content, "favorite_tea: lapsang souchong")

	// The input window must not be mutated.
	assert.Equal(t, "You are helpful.", window[0].Content)
}

func TestInjectMemories_CreatesSystemMessageWhenAbsent(t *testing.T) {
	a, _ := seededMemoryAgent(t, model.NewMockModel("test"))

	window := []core.Message{core.NewUserMessage("what tea do I like?", nil)}
	out := a.injectMemories(context.Background(), window)

	require.Len(t, out, 2)
	assert.Equal(t, core.RoleSystem, out[0].Role)
	assert.Contains(t, out[0].Content, memoryBlockHeader)
}

func TestInjectMemories_SkipsEmptyWindowAndEmptyQuery(t *testing.T) {
	a, _ := seededMemoryAgent(t, model.NewMockModel("test"))

	assert.Empty(t, a.injectMemories(context.Background(), nil))

	window := []core.Message{core.NewAssistantMessage("", []core.ToolCall{{ID: "c1", Name: "x"}})}
	out := a.injectMemories(context.Background(), window)
	assert.Equal(t, window, out)
}

func TestInjectMemories_SwallowsEmbedderFailure(t *testing.T) {
	a := New(model.NewMockModel("test"), func(o *Options) {
		o.Memories = memory.NewInMemoryStore()
		o.Embedder = failingEmbedder{}
	})

	window := []core.Message{core.NewUserMessage("hello", nil)}
	out := a.injectMemories(context.Background(), window)
	assert.Equal(t, window, out)
}

func TestInjectMemories_SwallowsSearchFailure(t *testing.T) {
	a := New(model.NewMockModel("test"), func(o *Options) {
		o.Memories = failingMemoryStore{}
		o.Embedder = embedding.NewMockEmbedder(0)
	})

	window := []core.Message{core.NewUserMessage("hello", nil)}
	out := a.injectMemories(context.Background(), window)
	assert.Equal(t, window, out)
}

func TestProcess_InjectsMemoriesOnFirstIterationOnly(t *testing.T) {
	mock := model.NewMockModel("test")
	mock.Enqueue(&model.Response{
		ToolCalls: []core.ToolCall{{ID: "c1", Name: "missing_tool", Arguments: `{}`}},
	})
	mock.Enqueue(&model.Response{Content: "done"})

	a, _ := seededMemoryAgent(t, mock)

	_, err := a.Process(context.Background(), "what tea do I like?")
	require.NoError(t, err)

	// Second iteration's request must carry the plain system prompt again.
	last := mock.LastRequest()
	require.NotEmpty(t, last.Messages)
	assert.Equal(t, core.RoleSystem, last.Messages[0].Role)
	assert.NotContains(t, last.Messages[0].Content, memoryBlockHeader)
}

func TestProcess_RetrievalFailureDoesNotAbortTurn(t *testing.T) {
	mock := model.NewMockModel("test")
	mock.AddResponse("hello", "hi")

	a := New(mock, func(o *Options) {
		o.Memories = memory.NewInMemoryStore()
		o.Embedder = failingEmbedder{}
	})

	answer, err := a.Process(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi", answer)
}
