package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleArgs struct {
	Name    string   `json:"name" description:"Who to greet"`
	Count   int      `json:"count"`
	Loud    bool     `json:"loud,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	Retries *int     `json:"retries,omitempty"`
	Skipped string   `json:"-"`
}

func TestSchemaFor(t *testing.T) {
	schema := SchemaFor(sampleArgs{})

	assert.Equal(t, "object", schema["type"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, props, 5)

	name, ok := props["name"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", name["type"])
	assert.Equal(t, "Who to greet", name["description"])

	assert.Equal(t, "integer", props["count"].(map[string]any)["type"])
	assert.Equal(t, "boolean", props["loud"].(map[string]any)["type"])
	assert.Equal(t, "array", props["tags"].(map[string]any)["type"])
	assert.Equal(t, "integer", props["retries"].(map[string]any)["type"])

	required, ok := schema["required"].([]string)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"name", "count"}, required)
}

func TestSchemaFor_PointerInput(t *testing.T) {
	schema := SchemaFor(&sampleArgs{})
	assert.Equal(t, "object", schema["type"])
}

func TestValidateArgs_RequiredMissing(t *testing.T) {
	schema := SchemaFor(sampleArgs{})

	err := ValidateArgs(map[string]any{"count": 1}, schema)
	require.Error(t, err)
	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "name", vErr.Field)
}

func TestValidateArgs_TypeMismatch(t *testing.T) {
	schema := SchemaFor(sampleArgs{})

	err := ValidateArgs(map[string]any{"name": "x", "count": "three"}, schema)
	require.Error(t, err)
	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "count", vErr.Field)
	assert.Contains(t, vErr.Message, "expected type integer")
}

func TestValidateArgs_JSONNumbersAsIntegers(t *testing.T) {
	schema := SchemaFor(sampleArgs{})

	// JSON decoding produces float64 for every number.
	assert.NoError(t, ValidateArgs(map[string]any{"name": "x", "count": 3.0}, schema))
	assert.Error(t, ValidateArgs(map[string]any{"name": "x", "count": 3.5}, schema))
}

func TestValidateArgs_RequiredAsAnySlice(t *testing.T) {
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"a": map[string]any{"type": "number"}},
		"required":   []any{"a"},
	}
	assert.Error(t, ValidateArgs(map[string]any{}, schema))
	assert.NoError(t, ValidateArgs(map[string]any{"a": 1.0}, schema))
}

func TestValidateArgs_ExtraArgumentsAllowed(t *testing.T) {
	schema := SchemaFor(sampleArgs{})
	assert.NoError(t, ValidateArgs(map[string]any{"name": "x", "count": 1, "unknown": true}, schema))
}
