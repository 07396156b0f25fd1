package catalog

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"movierec/internal/metadata"
	"movierec/pkg/models"
)

type Handler struct {
	Catalog *Catalog
	Details metadata.Fetcher
}

func NewHandler(c *Catalog, details metadata.Fetcher) *Handler {
	return &Handler{Catalog: c, Details: details}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)        // GET /movies
	rg.GET("/:id", h.getByID) // GET /movies/:id
}

func (h *Handler) list(c *gin.Context) {
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	matched := make([]models.Movie, 0, limit)
	for _, m := range h.Catalog.Movies() {
		if q != "" && !strings.Contains(strings.ToLower(m.Title), q) {
			continue
		}
		matched = append(matched, m)
	}

	total := len(matched)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"items":  matched[offset:end],
	})
}

func (h *Handler) getByID(c *gin.Context) {
	id, err := strconv.Atoi(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	m, ok := h.Catalog.ByID(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      m.ID,
		"title":   m.Title,
		"details": h.Details.Details(c.Request.Context(), m.ID),
	})
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
