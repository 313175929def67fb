package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mindkeep-ai/mindkeep/core"
	"github.com/mindkeep-ai/mindkeep/embedding"
	"github.com/mindkeep-ai/mindkeep/logging"
)

// MemoryToolkit bundles the built-in tools that let the model manage the
// durable memory store: save, get, delete, list and semantic search. The
// embedder is used to tag saved facts so they become retrievable by
// similarity; embedding failures degrade to storing the fact without a
// vector rather than failing the save.
type MemoryToolkit struct {
	store    core.MemoryStore
	embedder embedding.Embedder
	logger   logging.Logger
}

// NewMemoryToolkit constructs the toolkit. A nil logger disables logging.
func NewMemoryToolkit(store core.MemoryStore, embedder embedding.Embedder, logger logging.Logger) *MemoryToolkit {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &MemoryToolkit{store: store, embedder: embedder, logger: logger}
}

// Tools returns the toolkit's tools in a stable order, ready for Registry.RegisterAll.
func (k *MemoryToolkit) Tools() []Tool {
	return []Tool{k.saveTool(), k.getTool(), k.deleteTool(), k.listTool(), k.searchTool()}
}

type saveMemoryArgs struct {
	Key     string `json:"key" description:"Short snake_case identifier for the fact, e.g. user_name"`
	Content string `json:"content" description:"The fact to remember"`
}

func (k *MemoryToolkit) saveTool() Tool {
	return NewFunctionToolFromStruct(
		"save_memory",
		"Save a fact to long-term memory under a key. Saving an existing key overwrites it.",
		saveMemoryArgs{},
		func(ctx context.Context, args map[string]any) (*Result, error) {
			key, _ := args["key"].(string)
			content, _ := args["content"].(string)

			fact := core.MemoryFact{Key: key, Content: content, UpdatedAt: time.Now().UTC()}
			if k.embedder != nil {
				vec, err := k.embedder.Embed(ctx, content)
				if err != nil {
					k.logger.Warn("memory embedding failed, saving without vector", "key", key, "error", err.Error())
				} else {
					fact.Embedding = vec
				}
			}
			if err := k.store.Save(ctx, fact); err != nil {
				return nil, fmt.Errorf("save memory: %w", err)
			}
			return TextResult("Saved memory %q.", key), nil
		},
	)
}

type memoryKeyArgs struct {
	Key string `json:"key" description:"The key of the fact"`
}

func (k *MemoryToolkit) getTool() Tool {
	return NewFunctionToolFromStruct(
		"get_memory",
		"Look up a fact from long-term memory by its exact key.",
		memoryKeyArgs{},
		func(ctx context.Context, args map[string]any) (*Result, error) {
			key, _ := args["key"].(string)
			fact, err := k.store.Get(ctx, key)
			if errors.Is(err, core.ErrNotFound) {
				return TextResult("No memory stored under key %q.", key), nil
			}
			if err != nil {
				return nil, fmt.Errorf("get memory: %w", err)
			}
			return TextResult("%s: %s", fact.Key, fact.Content), nil
		},
	)
}

func (k *MemoryToolkit) deleteTool() Tool {
	return NewFunctionToolFromStruct(
		"delete_memory",
		"Delete a fact from long-term memory by its exact key.",
		memoryKeyArgs{},
		func(ctx context.Context, args map[string]any) (*Result, error) {
			key, _ := args["key"].(string)
			err := k.store.Delete(ctx, key)
			if errors.Is(err, core.ErrNotFound) {
				return TextResult("No memory stored under key %q.", key), nil
			}
			if err != nil {
				return nil, fmt.Errorf("delete memory: %w", err)
			}
			return TextResult("Deleted memory %q.", key), nil
		},
	)
}

type listMemoriesArgs struct {
	Limit *int `json:"limit,omitempty" description:"Maximum number of facts to list (default 20)"`
}

func (k *MemoryToolkit) listTool() Tool {
	return NewFunctionToolFromStruct(
		"list_memories",
		"List the most recently updated facts in long-term memory.",
		listMemoriesArgs{},
		func(ctx context.Context, args map[string]any) (*Result, error) {
			limit := 20
			if v, ok := args["limit"].(float64); ok && v > 0 {
				limit = int(v)
			}
			facts, err := k.store.Recent(ctx, limit)
			if err != nil {
				return nil, fmt.Errorf("list memories: %w", err)
			}
			if len(facts) == 0 {
				return TextResult("No memories stored yet."), nil
			}
			var sb strings.Builder
			for _, fact := range facts {
				fmt.Fprintf(&sb, "%s: %s\n", fact.Key, fact.Content)
			}
			return &Result{ForModel: strings.TrimRight(sb.String(), "\n")}, nil
		},
	)
}

type searchMemoriesArgs struct {
	Query string `json:"query" description:"Text to search memories for"`
	Limit *int   `json:"limit,omitempty" description:"Maximum number of results (default 8)"`
}

func (k *MemoryToolkit) searchTool() Tool {
	return NewFunctionToolFromStruct(
		"search_memories",
		"Search long-term memory for facts semantically related to a query.",
		searchMemoriesArgs{},
		func(ctx context.Context, args map[string]any) (*Result, error) {
			if k.embedder == nil {
				return TextResult("Memory search is not available."), nil
			}
			query, _ := args["query"].(string)
			limit := core.DefaultFactSearchLimit
			if v, ok := args["limit"].(float64); ok && v > 0 {
				limit = int(v)
			}

			vec, err := k.embedder.Embed(ctx, query)
			if err != nil {
				return nil, fmt.Errorf("embed query: %w", err)
			}
			results, err := k.store.Search(ctx, vec, limit)
			if err != nil {
				return nil, fmt.Errorf("search memories: %w", err)
			}
			if len(results) == 0 {
				return TextResult("No related memories found."), nil
			}
			var sb strings.Builder
			for _, r := range results {
				fmt.Fprintf(&sb, "%s: %s\n", r.Fact.Key, r.Fact.Content)
			}
			return &Result{ForModel: strings.TrimRight(sb.String(), "\n")}, nil
		},
	)
}
