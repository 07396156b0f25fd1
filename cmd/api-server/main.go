package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"movierec/internal/admin"
	"movierec/internal/auth"
	"movierec/internal/catalog"
	"movierec/internal/feed"
	"movierec/internal/metadata"
	"movierec/internal/ratings"
	"movierec/internal/recommend"
	"movierec/pkg/database"
	"movierec/pkg/utils"
)

func main() {
	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	cat := catalog.MustLoad(startupCtx, db)
	cancelStartup()
	log.Printf("catalog loaded: %d movies", cat.Len())

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	// rating feed: WS on the router, TCP on its own listener
	hub := feed.NewHub()
	router.GET("/ws", feed.WSHandler(hub))
	tcpSrv := feed.NewServer(":7070", hub)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"movies":      cat.Len(),
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	// metadata: TMDB behind a one-hour cache
	tmdbCfg := utils.LoadTMDBConfig()
	if tmdbCfg.APIKey == "" {
		log.Println("MOVIEREC_TMDB_API_KEY not set, metadata will use fallbacks")
	}
	details := metadata.NewCache(metadata.NewTMDB(tmdbCfg.APIKey, tmdbCfg.BaseURL), time.Hour)

	// Movies (public)
	catalogHandler := catalog.NewHandler(cat, details)
	catalogHandler.RegisterRoutes(router.Group("/movies"))

	// Auth
	authCfg := utils.LoadAuthConfig()
	tokenSvc := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}
	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, tokenSvc, authCfg.AdminUsername)
	authHandler.RegisterRoutes(router.Group("/auth"))

	// Protected routes
	protected := router.Group("/users")
	protected.Use(auth.AuthMiddleware(tokenSvc))

	protected.GET("/me", func(c *gin.Context) {
		claims := auth.MustGetClaims(c)
		c.JSON(http.StatusOK, gin.H{
			"id":       claims.UserID,
			"username": claims.Username,
			"is_admin": claims.IsAdmin,
		})
	})

	// Ratings (protected)
	ratingRepo := ratings.NewRepo(db)
	ratingHandler := ratings.NewHandler(ratingRepo, cat, hub)
	ratingHandler.RegisterRoutes(protected)

	// Recommendations (protected)
	recHandler := recommend.NewHandler(
		recommend.NewContent(cat),
		recommend.NewCollaborative(ratingRepo, cat),
		details,
	)
	recHandler.RegisterRoutes(protected)

	// Admin (protected + admin flag)
	adminGroup := router.Group("/admin")
	adminGroup.Use(auth.AuthMiddleware(tokenSvc), auth.AdminOnly())
	adminHandler := admin.NewHandler(ratingRepo, hub)
	adminHandler.RegisterRoutes(adminGroup)

	httpSrv := &http.Server{
		Addr:    ":8080",
		Handler: router,
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Println("HTTP API server listening on :8080")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if err := tcpSrv.Close(); err != nil {
		log.Printf("tcp shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("servers stopped")
}
