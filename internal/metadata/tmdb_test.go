package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"movierec/pkg/models"
)

func newTestTMDB(url string) *TMDB {
	t := NewTMDB("test-key", url)
	t.Backoff = time.Millisecond
	return t
}

func TestTMDBDetails(t *testing.T) {
	ctx := context.Background()

	t.Run("maps a successful response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("api_key") != "test-key" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"title": "Inception",
				"poster_path": "/abc.jpg",
				"genres": [{"id": 1, "name": "Sci-Fi"}, {"id": 2, "name": "Thriller"}],
				"overview": "A thief who steals corporate secrets.",
				"vote_average": 8.4
			}`))
		}))
		defer srv.Close()

		d := newTestTMDB(srv.URL).Details(ctx, 27205)
		if d.PosterURL != "https://image.tmdb.org/t/p/w500/abc.jpg" {
			t.Errorf("poster = %q", d.PosterURL)
		}
		if len(d.Genres) != 2 || d.Genres[0] != "Sci-Fi" {
			t.Errorf("genres = %v", d.Genres)
		}
		if d.Overview != "A thief who steals corporate secrets." {
			t.Errorf("overview = %q", d.Overview)
		}
		if d.Rating != 4.2 {
			t.Errorf("rating = %v, want 4.2 (8.4 halved)", d.Rating)
		}
	})

	t.Run("missing fields keep placeholders", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"title": "Obscure"}`))
		}))
		defer srv.Close()

		d := newTestTMDB(srv.URL).Details(ctx, 1)
		want := Fallback()
		if d.PosterURL != want.PosterURL || d.Overview != want.Overview {
			t.Errorf("got %+v, want placeholders", d)
		}
	})

	t.Run("retries then falls back on persistent failure", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		fetcher := newTestTMDB(srv.URL)
		d := fetcher.Details(ctx, 1)
		if got := atomic.LoadInt32(&calls); got != int32(fetcher.MaxAttempts) {
			t.Errorf("made %d attempts, want %d", got, fetcher.MaxAttempts)
		}
		assertFallback(t, d)
	})

	t.Run("recovers when a retry succeeds", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(`{"overview": "finally", "vote_average": 6.0}`))
		}))
		defer srv.Close()

		d := newTestTMDB(srv.URL).Details(ctx, 1)
		if d.Overview != "finally" || d.Rating != 3.0 {
			t.Errorf("got %+v, want the third attempt's payload", d)
		}
	})

	t.Run("malformed payload falls back", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		}))
		defer srv.Close()

		d := newTestTMDB(srv.URL).Details(ctx, 1)
		assertFallback(t, d)
	})
}

func assertFallback(t *testing.T, d models.MovieDetails) {
	t.Helper()
	want := Fallback()
	if d.PosterURL != want.PosterURL || d.Overview != want.Overview || d.Rating != 0 || len(d.Genres) != 0 {
		t.Errorf("got %+v, want fallback %+v", d, want)
	}
}

type countingFetcher struct {
	calls int
	d     models.MovieDetails
}

func (c *countingFetcher) Details(_ context.Context, _ int) models.MovieDetails {
	c.calls++
	return c.d
}

func TestCache(t *testing.T) {
	ctx := context.Background()

	t.Run("serves repeats from cache inside the TTL", func(t *testing.T) {
		inner := &countingFetcher{d: models.MovieDetails{Overview: "cached"}}
		cache := NewCache(inner, time.Hour)

		for i := 0; i < 5; i++ {
			if d := cache.Details(ctx, 42); d.Overview != "cached" {
				t.Fatalf("call %d: got %+v", i, d)
			}
		}
		if inner.calls != 1 {
			t.Errorf("inner fetcher called %d times, want 1", inner.calls)
		}
	})

	t.Run("distinct ids miss independently", func(t *testing.T) {
		inner := &countingFetcher{}
		cache := NewCache(inner, time.Hour)

		cache.Details(ctx, 1)
		cache.Details(ctx, 2)
		if inner.calls != 2 {
			t.Errorf("inner fetcher called %d times, want 2", inner.calls)
		}
	})

	t.Run("does not cache fallback results", func(t *testing.T) {
		inner := &countingFetcher{d: Fallback()}
		cache := NewCache(inner, time.Hour)

		assertFallback(t, cache.Details(ctx, 1))
		assertFallback(t, cache.Details(ctx, 1))
		if inner.calls != 2 {
			t.Fatalf("inner fetcher called %d times, want 2 (fallback must not be cached)", inner.calls)
		}

		// once the upstream recovers, the real answer is cached again
		inner.d = models.MovieDetails{Overview: "recovered"}
		cache.Details(ctx, 1)
		cache.Details(ctx, 1)
		if inner.calls != 3 {
			t.Errorf("inner fetcher called %d times, want 3", inner.calls)
		}
	})

	t.Run("refetches after expiry", func(t *testing.T) {
		inner := &countingFetcher{}
		cache := NewCache(inner, time.Hour)

		current := time.Now()
		cache.now = func() time.Time { return current }

		cache.Details(ctx, 1)
		current = current.Add(2 * time.Hour)
		cache.Details(ctx, 1)

		if inner.calls != 2 {
			t.Errorf("inner fetcher called %d times, want 2", inner.calls)
		}
	})
}
