// Package index provides brute-force cosine similarity search over the
// in-memory passage corpus.
package index

import (
	"fmt"
	"math"
	"sort"

	"github.com/printerdocs/manualchat/internal/domain"
)

// Index holds the passage corpus and answers nearest-neighbor queries.
// It is read-only after construction and safe for unlimited concurrent
// readers; no locking is needed because nothing mutates it.
type Index struct {
	passages []domain.Passage
	dim      int
}

// New builds an index over the given passages. All passages must share a
// single embedding dimension.
func New(passages []domain.Passage) (*Index, error) {
	if len(passages) == 0 {
		return nil, fmt.Errorf("index requires at least one passage")
	}
	dim := len(passages[0].Embedding)
	for _, p := range passages {
		if len(p.Embedding) != dim {
			return nil, fmt.Errorf("passage %d has dimension %d, expected %d",
				p.ID, len(p.Embedding), dim)
		}
	}
	return &Index{passages: passages, dim: dim}, nil
}

// Size returns the number of indexed passages.
func (ix *Index) Size() int { return len(ix.passages) }

// Dimension returns the embedding dimension shared by all passages.
func (ix *Index) Dimension() int { return ix.dim }

// Rank scores every passage against the query vector by cosine similarity
// and returns the top k in descending score order. The sort is stable:
// passages with equal scores keep their corpus order. A query whose
// dimension does not match the corpus is a configuration fault.
func (ix *Index) Rank(query []float64, k int) ([]domain.ScoredPassage, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("query dimension %d does not match corpus dimension %d",
			len(query), ix.dim)
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be > 0, got %d", k)
	}

	scored := make([]domain.ScoredPassage, len(ix.passages))
	for i, p := range ix.passages {
		scored[i] = domain.ScoredPassage{
			Passage: p,
			Score:   cosineSimilarity(query, p.Embedding),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// cosineSimilarity computes dot(a,b) / (|a|·|b|). A zero-magnitude vector
// on either side scores -Inf so it sorts last instead of producing NaN.
func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return math.Inf(-1)
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
