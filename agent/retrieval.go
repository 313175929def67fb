package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/mindkeep-ai/mindkeep/core"
	"github.com/mindkeep-ai/mindkeep/logging"
)

const memoryBlockHeader = "Relevant memories:"

// injectMemories augments the windowed context with long-term facts related
// to the last message. It runs on the loop's first iteration only. The whole
// path is best-effort: any embedding or search failure is logged and the
// unaugmented window is returned, never an error.
func (a *Agent) injectMemories(ctx context.Context, window []core.Message) []core.Message {
	if a.memories == nil || a.embedder == nil {
		return window
	}
	if len(window) == 0 {
		return window
	}
	query := window[len(window)-1].Content
	if strings.TrimSpace(query) == "" {
		return window
	}

	vec, err := a.embedder.Embed(ctx, query)
	if err != nil {
		a.logRetrieval(query, 0, err)
		return window
	}
	results, err := a.memories.Search(ctx, vec, a.memoryTopK)
	if err != nil {
		a.logRetrieval(query, 0, err)
		return window
	}
	a.logRetrieval(query, len(results), nil)
	if len(results) == 0 {
		return window
	}

	var sb strings.Builder
	sb.WriteString(memoryBlockHeader)
	for _, r := range results {
		fmt.Fprintf(&sb, "\n%s: %s", r.Fact.Key, r.Fact.Content)
	}
	block := sb.String()

	// Augment a copy of the windowed system message for this turn only; the
	// stored system prompt is never mutated.
	out := make([]core.Message, len(window))
	copy(out, window)
	if out[0].Role == core.RoleSystem {
		sys := out[0]
		sys.Content = sys.Content + "\n\n" + block
		out[0] = sys
		return out
	}
	return append([]core.Message{core.NewSystemMessage(block)}, out...)
}

func (a *Agent) logRetrieval(query string, results int, err error) {
	if al, ok := a.logger.(*logging.AgentLogger); ok {
		al.LogRetrieval(query, results, err)
		return
	}
	if err != nil {
		a.logger.Warn("memory retrieval failed", "error", err.Error())
		return
	}
	a.logger.Debug("memory retrieval completed", "results", results)
}
