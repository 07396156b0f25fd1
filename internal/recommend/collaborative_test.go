package recommend

import (
	"context"
	"math"
	"testing"

	"movierec/internal/catalog"
	"movierec/internal/ratings"
	"movierec/pkg/models"
)

func collabFixture(t *testing.T) (*Collaborative, *ratings.Memory) {
	t.Helper()
	movies := []models.Movie{
		{ID: 1, Title: "A", Index: 0},
		{ID: 2, Title: "B", Index: 1},
		{ID: 3, Title: "C", Index: 2},
		{ID: 4, Title: "D", Index: 3},
	}
	sim := make([][]float64, len(movies))
	for i := range sim {
		sim[i] = make([]float64, len(movies))
		sim[i][i] = 1.0
	}
	c, err := catalog.New(movies, sim)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	store := ratings.NewMemory()
	return NewCollaborative(store, c), store
}

func mustSet(t *testing.T, store ratings.Store, userID string, scores map[int]int) {
	t.Helper()
	for movieID, score := range scores {
		if err := store.Set(context.Background(), userID, movieID, score); err != nil {
			t.Fatalf("set rating %s/%d: %v", userID, movieID, err)
		}
	}
}

func TestCollaborativeRecommend(t *testing.T) {
	ctx := context.Background()

	t.Run("fewer than two ratings yields empty result", func(t *testing.T) {
		r, store := collabFixture(t)
		mustSet(t, store, "u1", map[int]int{1: 5})
		mustSet(t, store, "u2", map[int]int{1: 5, 2: 4})

		recs, err := r.Recommend(ctx, "u1", 5)
		if err != nil {
			t.Fatalf("recommend: %v", err)
		}
		if len(recs) != 0 {
			t.Errorf("got %d recommendations, want 0", len(recs))
		}
	})

	t.Run("unknown user yields empty result", func(t *testing.T) {
		r, store := collabFixture(t)
		mustSet(t, store, "u2", map[int]int{1: 5, 2: 4})

		recs, err := r.Recommend(ctx, "ghost", 5)
		if err != nil {
			t.Fatalf("recommend: %v", err)
		}
		if len(recs) != 0 {
			t.Errorf("got %d recommendations, want 0", len(recs))
		}
	})

	t.Run("weights the neighbour's score for the unrated movie", func(t *testing.T) {
		r, store := collabFixture(t)
		mustSet(t, store, "u1", map[int]int{1: 5, 2: 4})
		mustSet(t, store, "u2", map[int]int{1: 5, 2: 5, 3: 4})

		recs, err := r.Recommend(ctx, "u1", 1)
		if err != nil {
			t.Fatalf("recommend: %v", err)
		}
		if len(recs) != 1 {
			t.Fatalf("got %d recommendations, want 1", len(recs))
		}
		if recs[0].Movie.ID != 3 {
			t.Errorf("got movie %d, want 3", recs[0].Movie.ID)
		}
		// only one neighbour contributed, so the normalized weighted
		// score collapses to that neighbour's rating
		if math.Abs(recs[0].Score-4.0) > 1e-9 {
			t.Errorf("got score %v, want 4.0", recs[0].Score)
		}
	})

	t.Run("zero overlap with every other user yields empty result", func(t *testing.T) {
		r, store := collabFixture(t)
		mustSet(t, store, "u1", map[int]int{1: 5, 2: 4})
		mustSet(t, store, "u2", map[int]int{3: 5, 4: 4})

		recs, err := r.Recommend(ctx, "u1", 5)
		if err != nil {
			t.Fatalf("recommend: %v", err)
		}
		if len(recs) != 0 {
			t.Errorf("got %d recommendations, want 0", len(recs))
		}
	})

	t.Run("lone user yields empty result", func(t *testing.T) {
		r, store := collabFixture(t)
		mustSet(t, store, "u1", map[int]int{1: 5, 2: 4})

		recs, err := r.Recommend(ctx, "u1", 5)
		if err != nil {
			t.Fatalf("recommend: %v", err)
		}
		if len(recs) != 0 {
			t.Errorf("got %d recommendations, want 0", len(recs))
		}
	})

	t.Run("never recommends an already rated movie", func(t *testing.T) {
		r, store := collabFixture(t)
		mustSet(t, store, "u1", map[int]int{1: 5, 2: 4})
		mustSet(t, store, "u2", map[int]int{1: 5, 2: 5, 3: 4, 4: 2})

		recs, err := r.Recommend(ctx, "u1", 5)
		if err != nil {
			t.Fatalf("recommend: %v", err)
		}
		for _, rec := range recs {
			if rec.Movie.ID == 1 || rec.Movie.ID == 2 {
				t.Errorf("movie %d is already rated by the target user", rec.Movie.ID)
			}
		}
	})

	t.Run("ties break by movie id ascending", func(t *testing.T) {
		r, store := collabFixture(t)
		mustSet(t, store, "u1", map[int]int{1: 5, 2: 4})
		// u2 rates both candidates identically, so 3 and 4 tie
		mustSet(t, store, "u2", map[int]int{1: 5, 2: 4, 3: 3, 4: 3})

		recs, err := r.Recommend(ctx, "u1", 2)
		if err != nil {
			t.Fatalf("recommend: %v", err)
		}
		if len(recs) != 2 {
			t.Fatalf("got %d recommendations, want 2", len(recs))
		}
		if recs[0].Movie.ID != 3 || recs[1].Movie.ID != 4 {
			t.Errorf("got [%d %d], want [3 4]", recs[0].Movie.ID, recs[1].Movie.ID)
		}
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		r, store := collabFixture(t)
		mustSet(t, store, "u1", map[int]int{1: 5, 2: 4})
		mustSet(t, store, "u2", map[int]int{1: 4, 2: 5, 3: 3})
		mustSet(t, store, "u3", map[int]int{1: 5, 2: 3, 4: 5})

		first, err := r.Recommend(ctx, "u1", 5)
		if err != nil {
			t.Fatalf("recommend: %v", err)
		}
		for i := 0; i < 10; i++ {
			again, err := r.Recommend(ctx, "u1", 5)
			if err != nil {
				t.Fatalf("recommend: %v", err)
			}
			if len(again) != len(first) {
				t.Fatalf("call %d: got %d recommendations, want %d", i, len(again), len(first))
			}
			for j := range first {
				if again[j].Movie.ID != first[j].Movie.ID || again[j].Score != first[j].Score {
					t.Fatalf("call %d: result diverged at position %d", i, j)
				}
			}
		}
	})
}

func TestChooseStrategy(t *testing.T) {
	ctx := context.Background()
	store := ratings.NewMemory()

	t.Run("content for a user with no history", func(t *testing.T) {
		s, err := ChooseStrategy(ctx, store, "nobody")
		if err != nil {
			t.Fatalf("choose: %v", err)
		}
		if s != StrategyContent {
			t.Errorf("got %s, want %s", s, StrategyContent)
		}
	})

	t.Run("content below the threshold", func(t *testing.T) {
		mustSet(t, store, "u1", map[int]int{1: 5})
		s, err := ChooseStrategy(ctx, store, "u1")
		if err != nil {
			t.Fatalf("choose: %v", err)
		}
		if s != StrategyContent {
			t.Errorf("got %s, want %s", s, StrategyContent)
		}
	})

	t.Run("collaborative at the threshold", func(t *testing.T) {
		mustSet(t, store, "u1", map[int]int{1: 5, 2: 3})
		s, err := ChooseStrategy(ctx, store, "u1")
		if err != nil {
			t.Fatalf("choose: %v", err)
		}
		if s != StrategyCollaborative {
			t.Errorf("got %s, want %s", s, StrategyCollaborative)
		}
	})
}
