package embedding

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder tracks how often the inner embedder is actually hit.
type countingEmbedder struct {
	mu    sync.Mutex
	calls int
	inner Embedder
	fail  bool
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if c.fail {
		return nil, errors.New("provider down")
	}
	return c.inner.Embed(ctx, text)
}

func (c *countingEmbedder) Dimensions() int { return c.inner.Dimensions() }

func TestMockEmbedder_Deterministic(t *testing.T) {
	embedder := NewMockEmbedder(0)
	ctx := context.Background()

	a, err := embedder.Embed(ctx, "hello world")
	require.NoError(t, err)
	b, err := embedder.Embed(ctx, "hello world")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := embedder.Embed(ctx, "something else")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestMockEmbedder_UnitNorm(t *testing.T) {
	embedder := NewMockEmbedder(32)
	vec, err := embedder.Embed(context.Background(), "normalize me")
	require.NoError(t, err)
	require.Len(t, vec, 32)

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestCachedEmbedder_DoesNotMaskErrors(t *testing.T) {
	counting := &countingEmbedder{inner: NewMockEmbedder(0), fail: true}
	cached, err := NewCachedEmbedder(counting, 16)
	require.NoError(t, err)
	defer cached.Close()

	_, err = cached.Embed(context.Background(), "query")
	assert.Error(t, err)
}

func TestCachedEmbedder_ReturnsInnerResult(t *testing.T) {
	counting := &countingEmbedder{inner: NewMockEmbedder(0)}
	cached, err := NewCachedEmbedder(counting, 16)
	require.NoError(t, err)
	defer cached.Close()

	ctx := context.Background()
	want, err := counting.inner.Embed(ctx, "query")
	require.NoError(t, err)

	got, err := cached.Embed(ctx, "query")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, cached.Dimensions(), counting.Dimensions())
}
