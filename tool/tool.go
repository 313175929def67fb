// Package tool implements the function/tool calling subsystem: the Tool
// contract exposed to the model, a FunctionTool adapter with schema-validated
// arguments, and the Registry the agent loop dispatches through. Registry
// execution never propagates tool failures as errors; misbehaving tools are
// converted into structured failure results so a single bad call can never
// crash the loop.
package tool

import (
	"context"
	"fmt"

	"github.com/mindkeep-ai/mindkeep/internal/util"
)

// Tool defines a capability the model can invoke by name.
//
// Implementations should provide descriptive snake_case names, a minimal
// JSON-schema parameter contract, and handle their own argument coercion
// beyond the shared type validation.
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description is shown to the model to guide tool selection.
	Description() string

	// Parameters returns a JSON-schema-like map describing the accepted
	// arguments (type/properties/required subset).
	Parameters() map[string]any

	// Call executes the tool with already-decoded arguments.
	Call(ctx context.Context, args map[string]any) (*Result, error)
}

// Result is what a tool hands back after execution.
//
// ForModel is always fed back into conversation history. ForUser and Silent
// are hints for a presentation layer outside this module's scope. Images are
// base64 payloads attached to the resulting tool message. Error is populated
// by the Registry when execution failed; ForModel then carries the
// explanatory text shown to the model.
type Result struct {
	ForModel string     `json:"for_model"`
	ForUser  string     `json:"for_user,omitempty"`
	Silent   bool       `json:"silent,omitempty"`
	Images   []string   `json:"images,omitempty"`
	Error    *ToolError `json:"error,omitempty"`
}

// TextResult is a convenience constructor for a plain text success result.
func TextResult(format string, args ...any) *Result {
	return &Result{ForModel: fmt.Sprintf(format, args...)}
}

// ToolError represents a failure during tool lookup or execution.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error codes used by the registry and FunctionTool.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeExecution  = "EXECUTION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodePanic      = "PANIC"
)

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// ValidationError re-exports the argument validation error type.
type ValidationError = util.ValidationError
