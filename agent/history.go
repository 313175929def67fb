package agent

import "github.com/mindkeep-ai/mindkeep/core"

// windowHistory bounds the model-visible context while keeping the
// conversation's steering instructions and structural validity.
//
// Exactly one system message is logically active: a non-empty configured
// prompt supersedes any system message found in history. The most recent
// window non-system messages are kept, then leading tool messages are
// dropped until the window no longer starts with one, since a tool result
// without its preceding assistant turn would violate the message invariant.
// The returned slice is freshly allocated so callers may augment it for a
// single turn without touching stored history.
func windowHistory(history []core.Message, systemPrompt string, window int) []core.Message {
	var system *core.Message
	rest := make([]core.Message, 0, len(history))
	for i := range history {
		if history[i].Role == core.RoleSystem {
			if system == nil {
				msg := history[i]
				system = &msg
			}
			continue
		}
		rest = append(rest, history[i])
	}
	if systemPrompt != "" {
		msg := core.NewSystemMessage(systemPrompt)
		system = &msg
	}

	if window > 0 && len(rest) > window {
		rest = rest[len(rest)-window:]
	}
	for len(rest) > 0 && rest[0].Role == core.RoleTool {
		rest = rest[1:]
	}

	out := make([]core.Message, 0, len(rest)+1)
	if system != nil {
		out = append(out, *system)
	}
	return append(out, rest...)
}
