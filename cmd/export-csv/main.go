package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"movierec/pkg/database"
)

// Dumps the full rating snapshot to CSV for offline analysis
// (e.g. recomputing the similarity artifacts).
func main() {
	out := flag.String("out", "data/ratings.csv", "output CSV path")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	n, err := exportRatings(ctx, db, *out)
	if err != nil {
		log.Fatalf("export ratings failed: %v", err)
	}
	log.Printf("exported %d ratings to %s", n, *out)
}

func exportRatings(ctx context.Context, db *sql.DB, path string) (int, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT r.user_id, r.movie_id, m.title, r.score, r.updated_at
		FROM ratings r
		JOIN movies m ON m.id = r.movie_id
		ORDER BY r.user_id ASC, r.movie_id ASC
	`)
	if err != nil {
		return 0, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"user_id", "movie_id", "title", "score", "updated_at"}); err != nil {
		return 0, err
	}

	n := 0
	for rows.Next() {
		var userID, title string
		var movieID, score int
		var ts time.Time
		if err := rows.Scan(&userID, &movieID, &title, &score, &ts); err != nil {
			return 0, fmt.Errorf("scan rating: %w", err)
		}
		record := []string{
			userID,
			strconv.Itoa(movieID),
			title,
			strconv.Itoa(score),
			ts.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return 0, err
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("rows err: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return 0, err
	}
	return n, nil
}
