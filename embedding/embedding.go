// Package embedding defines the embedding provider abstraction used for
// similarity retrieval, plus a deterministic mock for tests and a caching
// decorator. Two embeddings are comparable only when produced by the same
// model/dimensionality; a deployment is expected to use a single embedder
// throughout.
package embedding

import "context"

// Embedder converts text into a fixed-length vector.
type Embedder interface {
	// Embed converts a single text into an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}
