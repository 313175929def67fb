package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/mindkeep-ai/mindkeep/core"
	"github.com/mindkeep-ai/mindkeep/embedding"
)

type recallArgs struct {
	Query string `json:"query" description:"What to look for in past conversation"`
	Limit *int   `json:"limit,omitempty" description:"Maximum number of messages to return (default 5)"`
}

// NewRecallTool builds a tool that searches a session's past user and
// assistant messages by semantic similarity. Tool plumbing turns are never
// part of the candidate set.
func NewRecallTool(store core.MessageStore, embedder embedding.Embedder, sessionID string) Tool {
	return NewFunctionToolFromStruct(
		"recall_conversation",
		"Search earlier parts of this conversation for messages related to a query.",
		recallArgs{},
		func(ctx context.Context, args map[string]any) (*Result, error) {
			query, _ := args["query"].(string)
			limit := core.DefaultMessageSearchLimit
			if v, ok := args["limit"].(float64); ok && v > 0 {
				limit = int(v)
			}

			vec, err := embedder.Embed(ctx, query)
			if err != nil {
				return nil, fmt.Errorf("embed query: %w", err)
			}
			results, err := store.Search(ctx, sessionID, vec, limit)
			if err != nil {
				return nil, fmt.Errorf("search messages: %w", err)
			}
			if len(results) == 0 {
				return TextResult("No related messages found."), nil
			}

			var sb strings.Builder
			for _, r := range results {
				fmt.Fprintf(&sb, "[%s] %s\n", r.Message.Role, r.Message.Content)
			}
			return &Result{ForModel: strings.TrimRight(sb.String(), "\n")}, nil
		},
	)
}
