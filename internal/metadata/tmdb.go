package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"time"

	"movierec/pkg/models"
)

// TMDB fetches movie details from the TMDB API. Failures are logged
// and downgraded to the fallback tuple after MaxAttempts tries.
type TMDB struct {
	Client      *http.Client
	APIKey      string
	BaseURL     string
	MaxAttempts int
	Backoff     time.Duration
}

func NewTMDB(apiKey, baseURL string) *TMDB {
	return &TMDB{
		Client:      &http.Client{Timeout: 20 * time.Second},
		APIKey:      apiKey,
		BaseURL:     baseURL,
		MaxAttempts: 3,
		Backoff:     time.Second,
	}
}

type tmdbResponse struct {
	Title      string `json:"title"`
	PosterPath string `json:"poster_path"`
	Genres     []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Overview    string  `json:"overview"`
	VoteAverage float64 `json:"vote_average"`
}

func (t *TMDB) Details(ctx context.Context, movieID int) models.MovieDetails {
	for attempt := 0; attempt < t.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Fallback()
			case <-time.After(t.Backoff):
			}
		}

		d, err := t.fetch(ctx, movieID)
		if err != nil {
			log.Printf("[tmdb] movie %d attempt %d: %v", movieID, attempt+1, err)
			continue
		}
		return d
	}
	return Fallback()
}

func (t *TMDB) fetch(ctx context.Context, movieID int) (models.MovieDetails, error) {
	u, err := url.Parse(fmt.Sprintf("%s/movie/%d", t.BaseURL, movieID))
	if err != nil {
		return models.MovieDetails{}, fmt.Errorf("build url: %w", err)
	}
	q := u.Query()
	q.Set("api_key", t.APIKey)
	q.Set("language", "en-US")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return models.MovieDetails{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return models.MovieDetails{}, fmt.Errorf("request: %w", err)
	}

	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.MovieDetails{}, fmt.Errorf("status %d", resp.StatusCode)
	}

	var tr tmdbResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return models.MovieDetails{}, fmt.Errorf("decode: %w", err)
	}

	d := Fallback()
	if tr.PosterPath != "" {
		d.PosterURL = "https://image.tmdb.org/t/p/w500" + tr.PosterPath
	}
	for _, g := range tr.Genres {
		if g.Name != "" {
			d.Genres = append(d.Genres, g.Name)
		}
	}
	if tr.Overview != "" {
		d.Overview = tr.Overview
	}
	// vote_average is on a 0-10 scale; halve to 0-5, one decimal
	d.Rating = math.Round(tr.VoteAverage/2*10) / 10
	return d, nil
}
