package tool

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/mindkeep-ai/mindkeep/logging"
	"github.com/mindkeep-ai/mindkeep/model"
)

// Registry maps tool names to implementations and is the agent loop's single
// dispatch point. Registration is last-write-wins per name; the catalog
// handed to the model preserves first-registration order.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	order  []string
	logger logging.Logger
}

// NewRegistry constructs an empty registry. A nil logger disables logging.
func NewRegistry(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Registry{tools: make(map[string]Tool), logger: logger}
}

// Register adds or replaces the tool under its name. Re-registering an
// existing name keeps its original position in the catalog.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name()]; !exists {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

// RegisterAll registers every tool in the slice, in order.
func (r *Registry) RegisterAll(tools []Tool) {
	for _, t := range tools {
		r.Register(t)
	}
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Len reports the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Definitions returns the tool catalog in registration order, in the shape
// handed to the chat provider each turn.
func (r *Registry) Definitions() []model.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]model.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}

// Execute dispatches a call to the named tool and always returns a usable
// Result. Unknown names yield a NOT_FOUND failure result, panics are
// recovered into PANIC failure results, and returned errors are folded into
// the result's Error field with explanatory ForModel text. The agent loop
// must never crash because a tool misbehaved.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) *Result {
	t, ok := r.Get(name)
	if !ok {
		return &Result{
			ForModel: fmt.Sprintf("tool %q is not available", name),
			Error:    &ToolError{Tool: name, Message: "tool not registered", Code: CodeNotFound},
		}
	}

	start := time.Now()
	result, err := r.callSafely(ctx, t, args)
	if logger, ok := r.logger.(*logging.AgentLogger); ok {
		logger.LogToolCall(name, time.Since(start), err == nil, err)
	} else if err != nil {
		r.logger.Error("tool execution failed", "tool", name, "error", err.Error())
	} else {
		r.logger.Info("tool execution completed", "tool", name, "duration_ms", time.Since(start).Milliseconds())
	}

	if err != nil {
		toolErr, ok := err.(*ToolError)
		if !ok {
			toolErr = &ToolError{Tool: name, Message: err.Error(), Code: CodeExecution}
		}
		return &Result{
			ForModel: fmt.Sprintf("tool %s failed: %s", name, toolErr.Message),
			Error:    toolErr,
		}
	}
	if result == nil {
		result = &Result{ForModel: "(no result)"}
	}
	return result
}

// callSafely invokes the tool, converting panics into errors.
func (r *Registry) callSafely(ctx context.Context, t Tool, args map[string]any) (result *Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tool panicked", "tool", t.Name(), "recover", rec, "stack", string(debug.Stack()))
			result = nil
			err = &ToolError{Tool: t.Name(), Message: fmt.Sprintf("panic: %v", rec), Code: CodePanic}
		}
	}()
	return t.Call(ctx, args)
}
