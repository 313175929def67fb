// Package agent implements the conversational orchestration loop: it owns a
// session's message history, bounds the context sent to the chat model,
// proactively injects relevant memories, dispatches requested tool calls
// through the registry and feeds results back until the model produces a
// final textual answer.
//
// An Agent processes one request at a time. Process rejects re-entrant calls
// with core.ErrBusy; callers serialize per session. Within a call the loop is
// strictly sequential: tool calls from a single model turn run one at a time,
// in the order the model issued them, so later calls observe the side effects
// of earlier ones.
package agent
