package catalog

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"movierec/pkg/database"
	"movierec/pkg/models"
)

func threeMovies() []models.Movie {
	return []models.Movie{
		{ID: 1, Title: "A", Index: 0},
		{ID: 2, Title: "B", Index: 1},
		{ID: 3, Title: "C", Index: 2},
	}
}

func threeBySim() [][]float64 {
	return [][]float64{
		{1.0, 0.8, 0.2},
		{0.8, 1.0, 0.5},
		{0.2, 0.5, 1.0},
	}
}

func TestNew(t *testing.T) {
	t.Run("valid catalog", func(t *testing.T) {
		c, err := New(threeMovies(), threeBySim())
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		if c.Len() != 3 {
			t.Errorf("got len %d, want 3", c.Len())
		}
	})

	t.Run("rejects empty movie list", func(t *testing.T) {
		if _, err := New(nil, nil); err == nil {
			t.Error("expected error for empty catalog")
		}
	})

	t.Run("rejects dimension mismatch", func(t *testing.T) {
		if _, err := New(threeMovies(), threeBySim()[:2]); err == nil {
			t.Error("expected error for short matrix")
		}
	})

	t.Run("rejects ragged rows", func(t *testing.T) {
		sim := threeBySim()
		sim[1] = sim[1][:2]
		if _, err := New(threeMovies(), sim); err == nil {
			t.Error("expected error for ragged row")
		}
	})

	t.Run("rejects duplicate titles", func(t *testing.T) {
		movies := threeMovies()
		movies[2].Title = "A"
		if _, err := New(movies, threeBySim()); err == nil {
			t.Error("expected error for duplicate title")
		}
	})

	t.Run("rejects out-of-sequence indexes", func(t *testing.T) {
		movies := threeMovies()
		movies[1].Index = 5
		if _, err := New(movies, threeBySim()); err == nil {
			t.Error("expected error for index gap")
		}
	})
}

func TestLookups(t *testing.T) {
	c, err := New(threeMovies(), threeBySim())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	t.Run("by title", func(t *testing.T) {
		m, ok := c.ByTitle("B")
		if !ok || m.ID != 2 {
			t.Errorf("ByTitle(B) = %v %v, want movie 2", m, ok)
		}
		if _, ok := c.ByTitle("missing"); ok {
			t.Error("ByTitle(missing) reported found")
		}
	})

	t.Run("by id", func(t *testing.T) {
		m, ok := c.ByID(3)
		if !ok || m.Title != "C" {
			t.Errorf("ByID(3) = %v %v, want C", m, ok)
		}
		if _, ok := c.ByID(99); ok {
			t.Error("ByID(99) reported found")
		}
	})

	t.Run("similarity row", func(t *testing.T) {
		row := c.SimilarityRow(0)
		if len(row) != 3 || row[1] != 0.8 {
			t.Errorf("SimilarityRow(0) = %v", row)
		}
	})
}

func TestLoad(t *testing.T) {
	openDB := func(t *testing.T) *sql.DB {
		t.Helper()
		db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "data.db")})
		if err != nil {
			t.Fatalf("open db: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })
		if err := database.MigrateFrom(db, filepath.Join("..", "..", "docs", "schema.sql")); err != nil {
			t.Fatalf("migrate: %v", err)
		}
		return db
	}

	seed := func(t *testing.T, db *sql.DB, movies []models.Movie, sim [][]float64) {
		t.Helper()
		for _, m := range movies {
			if _, err := db.Exec(`INSERT INTO movies (id, idx, title) VALUES (?, ?, ?)`, m.ID, m.Index, m.Title); err != nil {
				t.Fatalf("seed movie %d: %v", m.ID, err)
			}
		}
		for i, row := range sim {
			for j, score := range row {
				if _, err := db.Exec(`INSERT INTO similarity (row_idx, col_idx, score) VALUES (?, ?, ?)`, i, j, score); err != nil {
					t.Fatalf("seed similarity (%d,%d): %v", i, j, err)
				}
			}
		}
	}

	ctx := context.Background()

	t.Run("round-trips through sqlite", func(t *testing.T) {
		db := openDB(t)
		seed(t, db, threeMovies(), threeBySim())

		c, err := Load(ctx, db)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if c.Len() != 3 {
			t.Errorf("got len %d, want 3", c.Len())
		}
		if row := c.SimilarityRow(0); row[2] != 0.2 {
			t.Errorf("SimilarityRow(0) = %v", row)
		}
	})

	t.Run("fails on empty catalog", func(t *testing.T) {
		db := openDB(t)
		if _, err := Load(ctx, db); err == nil {
			t.Error("expected error for empty catalog")
		}
	})

	t.Run("fails on incomplete similarity matrix", func(t *testing.T) {
		db := openDB(t)
		sim := threeBySim()
		sim[2] = nil // drop the last row's cells
		seed(t, db, threeMovies(), sim)

		if _, err := Load(ctx, db); err == nil {
			t.Error("expected error for missing similarity cells")
		}
	})
}
