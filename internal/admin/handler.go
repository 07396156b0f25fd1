package admin

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"movierec/internal/feed"
	"movierec/internal/ratings"
)

// Handler exposes the user-management surface: listing users known to
// the rating store and removing a user's ratings wholesale.
type Handler struct {
	Store ratings.Store
	Hub   *feed.Hub
}

func NewHandler(store ratings.Store, hub *feed.Hub) *Handler {
	return &Handler{Store: store, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users", h.listUsers)
	rg.DELETE("/users/:id", h.deleteUser)
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.Store.Users(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	if users == nil {
		users = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handler) deleteUser(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("id"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id required"})
		return
	}

	existed, err := h.Store.DeleteUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !existed {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	if h.Hub != nil {
		h.Hub.Broadcast(feed.RatingEvent{
			Type:   feed.UserDeleteEvent,
			UserID: userID,
			At:     time.Now().UTC(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
