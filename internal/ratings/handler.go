package ratings

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"movierec/internal/auth"
	"movierec/internal/catalog"
	"movierec/internal/feed"
)

type Handler struct {
	Repo    *Repo
	Catalog *catalog.Catalog
	Hub     *feed.Hub
}

func NewHandler(repo *Repo, c *catalog.Catalog, hub *feed.Hub) *Handler {
	return &Handler{Repo: repo, Catalog: c, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ratings", h.set)
	rg.GET("/ratings", h.list)
}

type setReq struct {
	Title string `json:"title"`
	Score int    `json:"score"`
}

func (h *Handler) set(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req setReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}

	movie, ok := h.Catalog.ByTitle(title)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown movie title"})
		return
	}

	if req.Score < 1 || req.Score > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "score must be between 1 and 5"})
		return
	}

	if err := h.Repo.Set(c.Request.Context(), claims.UserID, movie.ID, req.Score); err != nil {
		if errors.Is(err, ErrInvalidScore) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "score must be between 1 and 5"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	if h.Hub != nil {
		h.Hub.Broadcast(feed.RatingEvent{
			Type:    feed.RatingSetEvent,
			UserID:  claims.UserID,
			MovieID: movie.ID,
			Title:   movie.Title,
			Score:   req.Score,
			At:      time.Now().UTC(),
		})
	}

	c.JSON(http.StatusCreated, gin.H{
		"user_id":  claims.UserID,
		"movie_id": movie.ID,
		"title":    movie.Title,
		"score":    req.Score,
	})
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	history, err := h.Repo.History(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	items := make([]gin.H, 0, len(history))
	for _, rt := range history {
		title := ""
		if m, ok := h.Catalog.ByID(rt.MovieID); ok {
			title = m.Title
		}
		items = append(items, gin.H{
			"movie_id":   rt.MovieID,
			"title":      title,
			"score":      rt.Score,
			"updated_at": rt.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}
