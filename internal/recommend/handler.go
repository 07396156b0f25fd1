package recommend

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"movierec/internal/auth"
	"movierec/internal/metadata"
)

type Handler struct {
	Content       *Content
	Collaborative *Collaborative
	Details       metadata.Fetcher
}

func NewHandler(content *Content, collaborative *Collaborative, details metadata.Fetcher) *Handler {
	return &Handler{Content: content, Collaborative: collaborative, Details: details}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/recommendations", h.recommend)
}

func (h *Handler) recommend(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	seedTitle := strings.TrimSpace(c.Query("title"))
	n := parseInt(c.Query("n"), DefaultN)

	ctx := c.Request.Context()

	strategy, err := ChooseStrategy(ctx, h.Collaborative.Store, claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "strategy failed"})
		return
	}

	var recs []Recommendation
	switch strategy {
	case StrategyCollaborative:
		recs, err = h.Collaborative.Recommend(ctx, claims.UserID, n)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "recommend failed"})
			return
		}
	default:
		recs = h.Content.Recommend(seedTitle, n)
	}

	// enrichment runs strictly after ranking; a metadata failure
	// degrades to the fallback tuple and never reorders results
	items := make([]gin.H, 0, len(recs))
	for _, rec := range recs {
		items = append(items, gin.H{
			"movie":   rec.Movie,
			"score":   rec.Score,
			"details": h.Details.Details(ctx, rec.Movie.ID),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"strategy": strategy,
		"items":    items,
	})
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
