// Package ranking orders park embeddings by cosine similarity to a query.
package ranking

import (
	"math"
	"sort"

	"github.com/ecoquerai/quer/internal/domain"
)

// DefaultTopK is the number of parks selected when unconfigured.
const DefaultTopK = 5

// undefinedSimilarity is the score assigned when cosine similarity is undefined
// (zero-magnitude vector or dimension mismatch). A best score at this value is
// the retrieval-failure detection condition.
const undefinedSimilarity = -1

// Ranker selects the top-K parks by similarity to a query embedding.
type Ranker struct {
	topK int
}

// New creates a ranker returning at most topK matches (default 5).
func New(topK int) *Ranker {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Ranker{topK: topK}
}

// TopK scores every park against the query vector, sorts descending by
// similarity (ties keep catalog order), and returns the K best. Returns
// domain.ErrNoMatchingPark when the list is empty or the best score is the
// undefined sentinel — every candidate was unusable.
func (r *Ranker) TopK(query []float32, parks []domain.ParkEmbedding) ([]domain.Match, error) {
	matches := make([]domain.Match, len(parks))
	for i, pe := range parks {
		matches[i] = domain.Match{Park: pe.Park, Similarity: Cosine(query, pe.Embedding)}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if len(matches) == 0 || matches[0].Similarity == undefinedSimilarity {
		return nil, domain.ErrNoMatchingPark
	}

	if len(matches) > r.topK {
		matches = matches[:r.topK]
	}
	return matches, nil
}

// Cosine returns the cosine similarity (a·b)/(‖a‖·‖b‖) of two vectors, in
// [-1, 1]. Returns -1 when the dimensions differ or either magnitude is zero.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return undefinedSimilarity
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return undefinedSimilarity
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
