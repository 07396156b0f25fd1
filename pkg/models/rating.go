package models

import "time"

type Rating struct {
	UserID    string    `json:"user_id"`
	MovieID   int       `json:"movie_id"`
	Score     int       `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}
