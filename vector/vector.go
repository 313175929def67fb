// Package vector implements the similarity primitives behind memory and
// message retrieval: cosine similarity and a brute-force top-K ranking over
// candidate embeddings. The scan is O(n) per query, which is a deliberate
// scale assumption for a single-user personal store; the ranking contract
// (query in, ordered scored indexes out) allows an approximate index to be
// substituted later without changing callers.
package vector

import (
	"fmt"
	"math"
	"sort"
)

// Scored references a candidate by its position in the input slice together
// with its cosine similarity to the query.
type Scored struct {
	Index int
	Score float64
}

// Cosine returns the cosine similarity of a and b: their dot product divided
// by the product of their Euclidean norms. The result lies in [-1, 1].
// Vectors of different dimensionality are not comparable; Cosine fails fast
// rather than silently misranking.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector: dimension mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("vector: empty vectors")
	}

	var dot, normA, normB float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Rank scores every non-nil candidate against the query and returns the top
// k, ordered by descending similarity. Ties keep the candidates' input order
// (no secondary key is imposed). Candidates with a nil embedding are skipped;
// a candidate with mismatched dimensionality aborts the whole ranking.
func Rank(query []float32, candidates [][]float32, k int) ([]Scored, error) {
	if k <= 0 {
		return nil, nil
	}

	scored := make([]Scored, 0, len(candidates))
	for i, cand := range candidates {
		if cand == nil {
			continue
		}
		score, err := Cosine(query, cand)
		if err != nil {
			return nil, fmt.Errorf("vector: candidate %d: %w", i, err)
		}
		scored = append(scored, Scored{Index: i, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}
