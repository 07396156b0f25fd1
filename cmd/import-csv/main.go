package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"movierec/pkg/database"
)

// Ingests the precomputed catalog artifacts:
//   - movies.csv: header "id,title", row order is the matrix index
//   - similarity.csv: headerless n x n matrix of scores in [-1,1]
//
// The import replaces the whole catalog in one transaction: either the
// new artifacts land completely or the previous catalog stays intact.
func main() {
	var (
		moviesIn     = flag.String("movies", "data/movies.csv", "input CSV path for the movie list")
		similarityIn = flag.String("similarity", "data/similarity.csv", "input CSV path for the similarity matrix")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	count, err := runImport(ctx, db, *moviesIn, *similarityIn)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}
	log.Printf("imported %d movies with a %dx%d similarity matrix", count, count, count)
}

type movieRow struct {
	id    int
	title string
}

// runImport validates the movie list up front, then swaps both catalog
// tables inside a single transaction so a bad artifact can never leave
// the database half-updated.
func runImport(ctx context.Context, db *sql.DB, moviesPath, similarityPath string) (int, error) {
	movies, err := readMovies(moviesPath)
	if err != nil {
		return 0, fmt.Errorf("read movies: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	// foreign-key checks move to commit time so the delete-then-reinsert
	// swap can reuse movie ids within the transaction
	if _, err := tx.ExecContext(ctx, `PRAGMA defer_foreign_keys = ON`); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM similarity`); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM movies`); err != nil {
		return 0, err
	}

	if err := insertMovies(ctx, tx, movies); err != nil {
		return 0, err
	}

	// ratings for movies dropped from the new catalog would orphan the
	// foreign key at commit
	res, err := tx.ExecContext(ctx, `
		DELETE FROM ratings
		WHERE movie_id NOT IN (SELECT id FROM movies)
	`)
	if err != nil {
		return 0, err
	}
	if dropped, _ := res.RowsAffected(); dropped > 0 {
		log.Printf("dropped %d ratings for movies absent from the new catalog", dropped)
	}

	if err := importSimilarity(ctx, tx, similarityPath, len(movies)); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(movies), nil
}

func readMovies(path string) ([]movieRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idCol, titleCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "id", "movie_id":
			idCol = i
		case "title":
			titleCol = i
		}
	}
	if idCol < 0 || titleCol < 0 {
		return nil, fmt.Errorf("movies CSV needs id and title columns, got %v", header)
	}

	var movies []movieRow
	seenIDs := make(map[int]int)
	seenTitles := make(map[string]int)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		idx := len(movies)

		id, err := strconv.Atoi(strings.TrimSpace(row[idCol]))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad movie id %q", idx, row[idCol])
		}
		title := strings.TrimSpace(row[titleCol])
		if title == "" {
			return nil, fmt.Errorf("row %d: empty title", idx)
		}
		if prev, ok := seenIDs[id]; ok {
			return nil, fmt.Errorf("duplicate movie id %d (rows %d and %d)", id, prev, idx)
		}
		// titles are the UI's lookup key, duplicates would make
		// selection ambiguous
		if prev, ok := seenTitles[title]; ok {
			return nil, fmt.Errorf("duplicate title %q (rows %d and %d)", title, prev, idx)
		}
		seenIDs[id] = idx
		seenTitles[title] = idx
		movies = append(movies, movieRow{id: id, title: title})
	}

	if len(movies) == 0 {
		return nil, fmt.Errorf("no movies in %s", path)
	}
	return movies, nil
}

func insertMovies(ctx context.Context, tx *sql.Tx, movies []movieRow) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO movies (id, idx, title)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for idx, m := range movies {
		if _, err := stmt.ExecContext(ctx, m.id, idx, m.title); err != nil {
			return fmt.Errorf("insert movie %d: %w", m.id, err)
		}
	}
	return nil
}

func importSimilarity(ctx context.Context, tx *sql.Tx, path string, n int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = n

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO similarity (row_idx, col_idx, score)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	rowIdx := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("row %d: %w", rowIdx, err)
		}

		for colIdx, cell := range row {
			score, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return fmt.Errorf("cell (%d,%d): bad score %q", rowIdx, colIdx, cell)
			}
			if _, err := stmt.ExecContext(ctx, rowIdx, colIdx, score); err != nil {
				return err
			}
		}
		rowIdx++
	}

	if rowIdx != n {
		return fmt.Errorf("similarity matrix has %d rows, movie list has %d", rowIdx, n)
	}
	return nil
}
