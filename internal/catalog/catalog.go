package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"movierec/pkg/models"
)

// Catalog is the read-only movie set plus the precomputed pairwise
// content-similarity matrix. Both are produced offline and ingested
// by cmd/import-csv; after Load nothing mutates them.
type Catalog struct {
	movies  []models.Movie // ordered by matrix index
	byID    map[int]int    // movie id -> matrix index
	byTitle map[string]int // title -> matrix index
	sim     [][]float64
}

// New builds a catalog from an already-ordered movie list and its
// similarity matrix, validating that the two artifacts agree.
func New(movies []models.Movie, sim [][]float64) (*Catalog, error) {
	if len(movies) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	if len(sim) != len(movies) {
		return nil, fmt.Errorf("similarity matrix has %d rows, movie list has %d", len(sim), len(movies))
	}

	c := &Catalog{
		movies:  movies,
		byID:    make(map[int]int, len(movies)),
		byTitle: make(map[string]int, len(movies)),
		sim:     sim,
	}

	for i, m := range movies {
		if m.Index != i {
			return nil, fmt.Errorf("movie %d: matrix index %d out of sequence", m.ID, m.Index)
		}
		if len(sim[i]) != len(movies) {
			return nil, fmt.Errorf("similarity row %d has %d columns, want %d", i, len(sim[i]), len(movies))
		}
		if _, ok := c.byID[m.ID]; ok {
			return nil, fmt.Errorf("duplicate movie id %d", m.ID)
		}
		if _, ok := c.byTitle[m.Title]; ok {
			return nil, fmt.Errorf("duplicate movie title %q", m.Title)
		}
		c.byID[m.ID] = i
		c.byTitle[m.Title] = i
	}
	return c, nil
}

// Load reads the catalog from the database. It fails when either
// artifact is missing or when the movie count does not match the
// similarity matrix dimension.
func Load(ctx context.Context, db *sql.DB) (*Catalog, error) {
	movies, err := loadMovies(ctx, db)
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, fmt.Errorf("catalog is empty: run import-csv first")
	}

	sim, err := loadSimilarity(ctx, db, len(movies))
	if err != nil {
		return nil, err
	}
	return New(movies, sim)
}

func loadMovies(ctx context.Context, db *sql.DB) ([]models.Movie, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, idx, title
		FROM movies
		ORDER BY idx ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	var movies []models.Movie
	for rows.Next() {
		var m models.Movie
		if err := rows.Scan(&m.ID, &m.Index, &m.Title); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("movies rows: %w", err)
	}
	return movies, nil
}

func loadSimilarity(ctx context.Context, db *sql.DB, n int) ([][]float64, error) {
	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, n)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT row_idx, col_idx, score
		FROM similarity
	`)
	if err != nil {
		return nil, fmt.Errorf("query similarity: %w", err)
	}
	defer rows.Close()

	cells := 0
	for rows.Next() {
		var i, j int
		var score float64
		if err := rows.Scan(&i, &j, &score); err != nil {
			return nil, fmt.Errorf("scan similarity: %w", err)
		}
		if i < 0 || i >= n || j < 0 || j >= n {
			return nil, fmt.Errorf("similarity cell (%d,%d) outside %dx%d matrix", i, j, n, n)
		}
		sim[i][j] = score
		cells++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("similarity rows: %w", err)
	}

	if cells != n*n {
		return nil, fmt.Errorf("similarity matrix has %d cells, want %d (%d movies)", cells, n*n, n)
	}
	return sim, nil
}

func MustLoad(ctx context.Context, db *sql.DB) *Catalog {
	c, err := Load(ctx, db)
	if err != nil {
		log.Fatalf("failed to load catalog: %v", err)
	}
	return c
}

func (c *Catalog) Len() int { return len(c.movies) }

// Movies returns the catalog in matrix-index order.
func (c *Catalog) Movies() []models.Movie { return c.movies }

func (c *Catalog) ByTitle(title string) (models.Movie, bool) {
	idx, ok := c.byTitle[title]
	if !ok {
		return models.Movie{}, false
	}
	return c.movies[idx], true
}

func (c *Catalog) ByID(id int) (models.Movie, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return models.Movie{}, false
	}
	return c.movies[idx], true
}

func (c *Catalog) ByIndex(idx int) (models.Movie, bool) {
	if idx < 0 || idx >= len(c.movies) {
		return models.Movie{}, false
	}
	return c.movies[idx], true
}

// SimilarityRow returns the content-similarity scores between the
// movie at idx and every catalog movie, in matrix-index order.
// Callers must not modify the returned slice.
func (c *Catalog) SimilarityRow(idx int) []float64 {
	return c.sim[idx]
}
