package recommend

import (
	"sort"

	"movierec/internal/catalog"
)

// Content ranks catalog movies by precomputed similarity to a seed
// movie. Fully deterministic: same matrix, same output.
type Content struct {
	Catalog *catalog.Catalog
}

func NewContent(c *catalog.Catalog) *Content {
	return &Content{Catalog: c}
}

// Recommend returns the n movies most similar to the seed. An unknown
// title yields an empty result, not an error: the title may come from
// stale UI state.
func (r *Content) Recommend(seedTitle string, n int) []Recommendation {
	if n <= 0 {
		n = DefaultN
	}

	seed, ok := r.Catalog.ByTitle(seedTitle)
	if !ok {
		return []Recommendation{}
	}

	row := r.Catalog.SimilarityRow(seed.Index)

	type scored struct {
		idx   int
		score float64
	}

	// the seed index is excluded explicitly, not by relying on the
	// self-similarity maximum landing on top
	candidates := make([]scored, 0, len(row)-1)
	for i, score := range row {
		if i == seed.Index {
			continue
		}
		candidates = append(candidates, scored{idx: i, score: score})
	}

	// stable sort keeps ties in catalog order
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})

	if n > len(candidates) {
		n = len(candidates)
	}

	out := make([]Recommendation, 0, n)
	for _, cand := range candidates[:n] {
		m, ok := r.Catalog.ByIndex(cand.idx)
		if !ok {
			continue
		}
		out = append(out, Recommendation{Movie: m, Score: cand.score})
	}
	return out
}
