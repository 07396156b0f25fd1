package feed

import "time"

const (
	RatingSetEvent  = "rating.set"
	UserDeleteEvent = "user.delete"
)

// RatingEvent is broadcast to feed subscribers whenever a rating is
// written or a user's ratings are removed.
type RatingEvent struct {
	Type    string    `json:"type"`
	UserID  string    `json:"user_id"`
	MovieID int       `json:"movie_id,omitempty"`
	Title   string    `json:"title,omitempty"`
	Score   int       `json:"score,omitempty"`
	At      time.Time `json:"at"`
}
