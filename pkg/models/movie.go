package models

// Movie is a single catalog entry. The catalog is precomputed offline
// together with the pairwise similarity matrix; Index is the movie's
// row/column position in that matrix.
type Movie struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Index int    `json:"-"`
}
