package ratings

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"movierec/pkg/models"
)

// Repo is the sqlite-backed Store. WAL mode makes every mutation a
// synchronous durable write; a corrupt database file fails at open,
// never here.
type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Ratings(ctx context.Context, userID string) (map[int]int, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT movie_id, score
		FROM ratings
		WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	out := make(map[int]int)
	for rows.Next() {
		var movieID, score int
		if err := rows.Scan(&movieID, &score); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		out[movieID] = score
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ratings rows: %w", err)
	}
	return out, nil
}

func (r *Repo) All(ctx context.Context) (map[string]map[int]int, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT user_id, movie_id, score
		FROM ratings
	`)
	if err != nil {
		return nil, fmt.Errorf("query all ratings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]map[int]int)
	for rows.Next() {
		var userID string
		var movieID, score int
		if err := rows.Scan(&userID, &movieID, &score); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		if out[userID] == nil {
			out[userID] = make(map[int]int)
		}
		out[userID][movieID] = score
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("all ratings rows: %w", err)
	}
	return out, nil
}

func (r *Repo) Set(ctx context.Context, userID string, movieID, score int) error {
	if !validScore(score) {
		return ErrInvalidScore
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO ratings (user_id, movie_id, score)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, movie_id) DO UPDATE SET
		  score = excluded.score,
		  updated_at = CURRENT_TIMESTAMP
	`, userID, movieID, score)
	if err != nil {
		return fmt.Errorf("set rating: %w", err)
	}
	return nil
}

func (r *Repo) DeleteUser(ctx context.Context, userID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM ratings
		WHERE user_id = ?
	`, userID)
	if err != nil {
		return false, fmt.Errorf("delete user ratings: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

func (r *Repo) Users(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT DISTINCT user_id
		FROM ratings
		ORDER BY user_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("users rows: %w", err)
	}
	return out, nil
}

// History lists the user's ratings newest-first, for display.
func (r *Repo) History(ctx context.Context, userID string) ([]models.Rating, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT user_id, movie_id, score, updated_at
		FROM ratings
		WHERE user_id = ?
		ORDER BY updated_at DESC, movie_id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	out := make([]models.Rating, 0, 8)
	for rows.Next() {
		var rt models.Rating
		var ts time.Time
		if err := rows.Scan(&rt.UserID, &rt.MovieID, &rt.Score, &ts); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		rt.UpdatedAt = ts
		out = append(out, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history rows: %w", err)
	}
	return out, nil
}
