package handler

import (
	"net/http"
	"strconv"

	"planora/internal/repository"

	"github.com/gin-gonic/gin"
)

const maxSearchResults = 50

type UserHandler struct {
	users repository.UserRepositoryInterface
}

func NewUserHandler(users repository.UserRepositoryInterface) *UserHandler {
	return &UserHandler{users: users}
}

// Search matches users by username, email or name substring, capped at 50
// results.
func (h *UserHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter q is required"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}
	if limit > maxSearchResults {
		limit = maxSearchResults
	}

	users, err := h.users.Search(c.Request.Context(), query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search users"})
		return
	}

	response := make([]UserResponse, len(users))
	for i := range users {
		response[i] = userResponse(&users[i])
	}

	c.JSON(http.StatusOK, response)
}
