package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/mindkeep-ai/mindkeep/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the
// model. Parameters is a JSON Schema object (minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized model input for one completion: the
// windowed conversation plus the tool catalog. Adapters must omit the tool
// parameter entirely when Tools is empty.
type Request struct {
	Messages []core.Message
	Tools    []ToolDefinition
}

// TokenUsage captures token consumption for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the next assistant turn produced by a provider. Content may be
// empty when the turn carries only tool calls.
type Response struct {
	Content      string
	ToolCalls    []core.ToolCall
	FinishReason string
	Usage        *TokenUsage
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	SupportsTools bool   `json:"supports_tools"`
}

// ChatModel is the minimal interface required to drive the agent loop.
// Generate blocks until the provider returns a complete turn; timeouts are
// delegated to the context and the underlying client.
type ChatModel interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	Info() Info
}

// MockModel is an in-memory ChatModel for tests and examples. Turns can be
// scripted with Enqueue (consumed in order); once the script is exhausted it
// falls back to canned text responses keyed by the last user message.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	script    []*Response
	responses map[string]string
	calls     int
	lastReq   *Request
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: "mock", SupportsTools: true},
		responses: make(map[string]string),
	}
}

// Enqueue appends a scripted turn returned by the next Generate call.
func (m *MockModel) Enqueue(resp *Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, resp)
}

// AddResponse registers a canned completion for an exact user input.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// Calls reports how many Generate invocations the mock has served.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the most recent request passed to Generate.
func (m *MockModel) LastRequest() *Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastReq
}

// Generate implements ChatModel.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	reqCopy := req
	m.lastReq = &reqCopy

	if len(m.script) > 0 {
		next := m.script[0]
		m.script = m.script[1:]
		return next, nil
	}

	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("mock model: no messages provided")
	}
	last := req.Messages[len(req.Messages)-1]
	text := m.responses[last.Content]
	if text == "" {
		text = fmt.Sprintf("Mock response to: %s", last.Content)
	}
	return &Response{Content: text, FinishReason: "stop"}, nil
}

// Info implements ChatModel.
func (m *MockModel) Info() Info { return m.info }
