package utils

import (
	"os"
	"time"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration

	// AdminUsername marks the account that gets the admin flag at
	// registration. Empty means no admin is minted.
	AdminUsername string
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("MOVIEREC_JWT_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("MOVIEREC_JWT_ISSUER")
	if issuer == "" {
		issuer = "movierec"
	}

	return AuthConfig{
		JWTSecret:     secret,
		JWTIssuer:     issuer,
		JWTDuration:   24 * time.Hour,
		AdminUsername: os.Getenv("MOVIEREC_ADMIN_USERNAME"),
	}
}

type TMDBConfig struct {
	APIKey  string
	BaseURL string
}

func LoadTMDBConfig() TMDBConfig {
	base := os.Getenv("MOVIEREC_TMDB_BASE_URL")
	if base == "" {
		base = "https://api.themoviedb.org/3"
	}

	return TMDBConfig{
		APIKey:  os.Getenv("MOVIEREC_TMDB_API_KEY"),
		BaseURL: base,
	}
}
