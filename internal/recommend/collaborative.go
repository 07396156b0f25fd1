package recommend

import (
	"context"
	"sort"

	"movierec/internal/catalog"
	"movierec/internal/ratings"
)

// Collaborative ranks unrated movies by the rating patterns of users
// whose taste resembles the target user's. It rebuilds the dense
// user x movie matrix from the store snapshot on every call, which is
// O(users x movies); the Store interface isolates that so a future
// implementation can keep an incremental structure instead.
type Collaborative struct {
	Store   ratings.Store
	Catalog *catalog.Catalog
}

func NewCollaborative(store ratings.Store, c *catalog.Catalog) *Collaborative {
	return &Collaborative{Store: store, Catalog: c}
}

// Recommend returns up to n movies the user has not rated, weighted by
// other users' ratings and their cosine similarity to the target user.
// A user with fewer than MinCollaborativeRatings ratings, or with no
// similarity to anyone, gets an empty result: "no recommendation
// possible yet" is an expected steady state, not a failure.
func (r *Collaborative) Recommend(ctx context.Context, userID string, n int) ([]Recommendation, error) {
	if n <= 0 {
		n = DefaultN
	}

	all, err := r.Store.All(ctx)
	if err != nil {
		return nil, err
	}

	target, ok := all[userID]
	if !ok || len(target) < MinCollaborativeRatings {
		return []Recommendation{}, nil
	}

	// columns: every movie anyone has rated, id-ascending for
	// deterministic ordering
	movieIDs := columnOrder(all)

	// A missing rating becomes 0 in the dense vectors. That conflates
	// "never rated" with a zero score and biases the similarity, but
	// changing it would silently change every user's ranking.
	targetVec := denseVector(target, movieIDs)

	weighted := make([]float64, len(movieIDs))
	simSum := 0.0

	for otherID, other := range all {
		if otherID == userID {
			continue
		}
		otherVec := denseVector(other, movieIDs)

		// negative similarities are kept: dissimilar users pull
		// candidate scores down
		sim := cosine(targetVec, otherVec)
		simSum += sim
		for j, score := range otherVec {
			weighted[j] += score * sim
		}
	}

	// nobody similar (or similarities cancel out) => nothing to rank
	if simSum == 0 {
		return []Recommendation{}, nil
	}

	type scored struct {
		movieID int
		score   float64
	}
	candidates := make([]scored, 0, len(movieIDs))
	for j, movieID := range movieIDs {
		if targetVec[j] != 0 {
			continue // already rated
		}
		candidates = append(candidates, scored{movieID: movieID, score: weighted[j] / simSum})
	}

	// score descending; candidates enter id-ascending, so the stable
	// sort breaks ties by movie id
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})

	if n > len(candidates) {
		n = len(candidates)
	}

	out := make([]Recommendation, 0, n)
	for _, cand := range candidates[:n] {
		m, ok := r.Catalog.ByID(cand.movieID)
		if !ok {
			continue
		}
		out = append(out, Recommendation{Movie: m, Score: cand.score})
	}
	return out, nil
}

// columnOrder returns every rated movie id, ascending.
func columnOrder(all map[string]map[int]int) []int {
	seen := make(map[int]struct{})
	for _, scores := range all {
		for movieID := range scores {
			seen[movieID] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for movieID := range seen {
		out = append(out, movieID)
	}
	sort.Ints(out)
	return out
}

func denseVector(scores map[int]int, movieIDs []int) []float64 {
	v := make([]float64, len(movieIDs))
	for j, movieID := range movieIDs {
		v[j] = float64(scores[movieID])
	}
	return v
}
