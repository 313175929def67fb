package core

import "time"

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleSystem carries the steering instructions for the conversation.
	RoleSystem Role = "system"
	// RoleUser is a human-authored turn.
	RoleUser Role = "user"
	// RoleAssistant is a model-authored turn, possibly carrying tool calls.
	RoleAssistant Role = "assistant"
	// RoleTool carries the result of a single tool call back to the model.
	RoleTool Role = "tool"
)

// ToolCall is a model-issued request to invoke a named tool with a serialized
// (JSON) argument payload. The ID correlates the request with the RoleTool
// message that answers it.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"`
}

// Message is a single turn in a conversation.
//
// Invariant: a RoleTool message must be preceded, within the same processing
// cycle, by a RoleAssistant message whose ToolCalls contains ToolCallID. The
// windowing logic in the agent package preserves this even after truncation.
//
// Messages are created by the loop and never mutated afterwards, with one
// exception: late-arriving images may be attached to the most recent pending
// user message (see Agent.Process).
type Message struct {
	ID        string     `json:"id"`
	Role      Role       `json:"role"`
	Content   string     `json:"content,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`   // assistant turns only
	ToolCallID string    `json:"tool_call_id,omitempty"` // tool turns only
	Name      string     `json:"name,omitempty"`         // sender or tool name
	Images    []string   `json:"images,omitempty"`       // base64 payloads, user/tool turns
	Embedding []float32  `json:"-"`                      // persisted, never sent to the model
	CreatedAt time.Time  `json:"created_at"`
}

// NewSystemMessage creates a system turn holding steering instructions.
func NewSystemMessage(content string) Message {
	return Message{ID: NewID(), Role: RoleSystem, Content: content, CreatedAt: time.Now().UTC()}
}

// NewUserMessage creates a user turn with optional image attachments.
func NewUserMessage(content string, images []string) Message {
	return Message{ID: NewID(), Role: RoleUser, Content: content, Images: images, CreatedAt: time.Now().UTC()}
}

// NewAssistantMessage creates an assistant turn. Content may be empty when
// the turn carries only tool calls.
func NewAssistantMessage(content string, toolCalls []ToolCall) Message {
	return Message{ID: NewID(), Role: RoleAssistant, Content: content, ToolCalls: toolCalls, CreatedAt: time.Now().UTC()}
}

// NewToolMessage creates a tool turn answering the tool call with the given
// id. Name records the tool that produced the result.
func NewToolMessage(toolCallID, name, content string, images []string) Message {
	return Message{
		ID:         NewID(),
		Role:       RoleTool,
		Content:    content,
		ToolCallID: toolCallID,
		Name:       name,
		Images:     images,
		CreatedAt:  time.Now().UTC(),
	}
}
