package tool

import (
	"context"
	"fmt"

	"github.com/mindkeep-ai/mindkeep/internal/util"
)

// FunctionTool adapts a plain Go function into a Tool. It holds a
// declarative parameter schema, validates model-supplied arguments against it
// before execution, and normalizes failures into *ToolError so downstream
// handling stays uniform.
//
// A FunctionTool has no mutable state after construction and is safe for
// concurrent use.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(ctx context.Context, args map[string]any) (*Result, error)
}

// NewFunctionTool constructs a FunctionTool from an explicit schema and
// implementation.
//
// Example:
//
//	echo := NewFunctionTool(
//	  "echo_text",
//	  "Echo the provided text back",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "text": map[string]any{"type": "string"},
//	    },
//	    "required": []string{"text"},
//	  },
//	  func(_ context.Context, args map[string]any) (*Result, error) {
//	    return TextResult("%v", args["text"]), nil
//	  },
//	)
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(ctx context.Context, args map[string]any) (*Result, error),
) *FunctionTool {
	return &FunctionTool{name: name, description: description, parameters: parameters, fn: fn}
}

// NewFunctionToolFromStruct derives the parameter schema from a struct via
// reflection, equivalent to passing util.SchemaFor(argsType) explicitly.
func NewFunctionToolFromStruct(
	name, description string,
	argsType any,
	fn func(ctx context.Context, args map[string]any) (*Result, error),
) *FunctionTool {
	return NewFunctionTool(name, description, util.SchemaFor(argsType), fn)
}

// Name returns the unique tool name used in catalog entries and routing.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the natural language description exposed to the model.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates args against the declared schema then invokes the wrapped
// function. Validation failures become *ToolError{Code: VALIDATION_ERROR};
// other errors are wrapped as EXECUTION_ERROR unless already a *ToolError.
func (t *FunctionTool) Call(ctx context.Context, args map[string]any) (*Result, error) {
	if err := util.ValidateArgs(args, t.parameters); err != nil {
		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("argument validation failed: %v", err),
			Code:    CodeValidation,
		}
	}

	result, err := t.fn(ctx, args)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok {
			return nil, toolErr
		}
		return nil, &ToolError{Tool: t.name, Message: err.Error(), Code: CodeExecution}
	}
	return result, nil
}
