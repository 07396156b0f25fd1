package models

// MovieDetails is display metadata fetched from the external movie
// metadata service. Rating is the service's vote average normalized
// to a 0-5 scale.
type MovieDetails struct {
	PosterURL string   `json:"poster_url"`
	Genres    []string `json:"genres"`
	Overview  string   `json:"overview"`
	Rating    float64  `json:"rating"`
}
