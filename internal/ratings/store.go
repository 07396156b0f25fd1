package ratings

import (
	"context"
	"errors"
)

// ErrInvalidScore is returned when a rating falls outside [1,5].
// The store rejects bad values even though handlers validate first,
// so invalid state can never reach disk.
var ErrInvalidScore = errors.New("score must be between 1 and 5")

// Store is the durable user -> movie -> score mapping. Recommenders
// read through this interface so the dense-matrix rebuild in the
// collaborative path can later be replaced by an incremental
// structure without touching the recommender contract.
type Store interface {
	// Ratings returns the user's ratings, an empty map when the user
	// is unknown.
	Ratings(ctx context.Context, userID string) (map[int]int, error)

	// All returns the full snapshot of every user's ratings.
	All(ctx context.Context) (map[string]map[int]int, error)

	// Set records or overwrites one rating. The write is durable
	// before Set returns.
	Set(ctx context.Context, userID string, movieID, score int) error

	// DeleteUser removes every rating of the user and reports whether
	// the user existed. Deleting an absent user is not an error.
	DeleteUser(ctx context.Context, userID string) (bool, error)

	// Users lists every user id present in the store.
	Users(ctx context.Context) ([]string, error)
}

func validScore(score int) bool {
	return score >= 1 && score <= 5
}
