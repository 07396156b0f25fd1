package recommend

import (
	"context"

	"movierec/internal/ratings"
	"movierec/pkg/models"
)

type Strategy string

const (
	StrategyContent       Strategy = "content"
	StrategyCollaborative Strategy = "collaborative"
)

// MinCollaborativeRatings is how much history a user needs before
// collaborative filtering takes over from the content fallback.
const MinCollaborativeRatings = 2

// DefaultN is the number of recommendations returned when the caller
// does not ask for a specific count.
const DefaultN = 5

// Recommendation pairs a catalog movie with its rank score. Results
// are produced fresh per request and never cached by the engine.
type Recommendation struct {
	Movie models.Movie `json:"movie"`
	Score float64      `json:"score"`
}

// ChooseStrategy picks collaborative filtering once the user has
// rated at least MinCollaborativeRatings distinct movies, content
// similarity otherwise.
func ChooseStrategy(ctx context.Context, store ratings.Store, userID string) (Strategy, error) {
	rated, err := store.Ratings(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(rated) >= MinCollaborativeRatings {
		return StrategyCollaborative, nil
	}
	return StrategyContent, nil
}
