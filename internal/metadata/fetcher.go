package metadata

import (
	"context"

	"movierec/pkg/models"
)

// Fetcher returns display metadata for a movie id. Implementations
// never fail: ranking is complete before enrichment runs, so any
// fetch problem degrades to Fallback instead of surfacing an error.
type Fetcher interface {
	Details(ctx context.Context, movieID int) models.MovieDetails
}

const (
	placeholderPoster   = "https://via.placeholder.com/500x750?text=No+Poster"
	placeholderOverview = "No description available."
)

// Fallback is the well-defined tuple returned when the metadata
// service cannot be reached or answers with garbage.
func Fallback() models.MovieDetails {
	return models.MovieDetails{
		PosterURL: placeholderPoster,
		Genres:    []string{},
		Overview:  placeholderOverview,
		Rating:    0,
	}
}

func isFallback(d models.MovieDetails) bool {
	return d.PosterURL == placeholderPoster &&
		d.Overview == placeholderOverview &&
		d.Rating == 0 &&
		len(d.Genres) == 0
}
