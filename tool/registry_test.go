package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticTool(name, reply string) Tool {
	return NewFunctionTool(
		name,
		"Replies with a fixed string.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(context.Context, map[string]any) (*Result, error) {
			return TextResult("%s", reply), nil
		},
	)
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(staticTool("greet", "hello"))
	r.Register(staticTool("greet", "hi"))

	assert.Equal(t, 1, r.Len())

	result := r.Execute(context.Background(), "greet", map[string]any{})
	assert.Equal(t, "hi", result.ForModel)
}

func TestRegistry_DefinitionsPreserveRegistrationOrder(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(staticTool("alpha", "a"))
	r.Register(staticTool("beta", "b"))
	r.Register(staticTool("gamma", "c"))
	// Re-registering keeps the original position.
	r.Register(staticTool("alpha", "a2"))

	defs := r.Definitions()
	require.Len(t, defs, 3)
	assert.Equal(t, "alpha", defs[0].Function.Name)
	assert.Equal(t, "beta", defs[1].Function.Name)
	assert.Equal(t, "gamma", defs[2].Function.Name)
	assert.Equal(t, "function", defs[0].Type)
}

func TestRegistry_ExecuteUnknownTool(t *testing.T) {
	r := NewRegistry(nil)

	result := r.Execute(context.Background(), "missing", map[string]any{})
	require.NotNil(t, result)
	assert.Contains(t, result.ForModel, "not available")
	require.NotNil(t, result.Error)
	assert.Equal(t, CodeNotFound, result.Error.Code)
}

func TestRegistry_ExecuteRecoversPanics(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(NewFunctionTool(
		"explosive",
		"Panics.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(context.Context, map[string]any) (*Result, error) {
			panic("boom")
		},
	))

	result := r.Execute(context.Background(), "explosive", map[string]any{})
	require.NotNil(t, result.Error)
	assert.Equal(t, CodePanic, result.Error.Code)
	assert.Contains(t, result.ForModel, "failed")
}

func TestRegistry_ExecuteFoldsErrorsIntoResult(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(NewFunctionTool(
		"flaky",
		"Fails.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(context.Context, map[string]any) (*Result, error) {
			return nil, errors.New("upstream timeout")
		},
	))

	result := r.Execute(context.Background(), "flaky", map[string]any{})
	require.NotNil(t, result.Error)
	assert.Equal(t, CodeExecution, result.Error.Code)
	assert.Contains(t, result.ForModel, "upstream timeout")
}

func TestRegistry_NilResultBecomesPlaceholder(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(NewFunctionTool(
		"quiet",
		"Returns nothing.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(context.Context, map[string]any) (*Result, error) {
			return nil, nil
		},
	))

	result := r.Execute(context.Background(), "quiet", map[string]any{})
	require.NotNil(t, result)
	assert.Equal(t, "(no result)", result.ForModel)
}
