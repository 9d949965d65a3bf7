package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	apphttp "github.com/matchday-bet/matchday/internal/http"
	"github.com/matchday-bet/matchday/internal/models"
	"github.com/matchday-bet/matchday/internal/rules"
	"github.com/matchday-bet/matchday/internal/store"
	log "github.com/sirupsen/logrus"
)

// getUserID extracts the user ID from gin context.
func getUserID(c *gin.Context) uint64 {
	val, exists := c.Get(apphttp.ContextUserID)
	if !exists {
		return 0
	}
	switch v := val.(type) {
	case uint64:
		return v
	case int64:
		return uint64(v)
	case uint:
		return uint64(v)
	case int:
		return uint64(v)
	default:
		return 0
	}
}

// getUser returns the user loaded by the session middleware.
func getUser(c *gin.Context) *models.User {
	val, exists := c.Get(apphttp.ContextUser)
	if !exists {
		return nil
	}
	user, _ := val.(*models.User)
	return user
}

// respondError maps service errors onto status codes. Unexpected errors are logged
// and reported without detail.
func respondError(c *gin.Context, err error, action string) {
	if violation, ok := rules.IsViolation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": violation.Message})
		return
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	case errors.Is(err, store.ErrUsernameTaken):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username already taken"})
	case errors.Is(err, store.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email already in use"})
	default:
		log.WithError(err).Errorf("%s failed", action)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}

// queryLimit parses the limit query parameter; missing or malformed values yield 0.
func queryLimit(c *gin.Context) int {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return 0
	}
	limit, errParse := strconv.Atoi(raw)
	if errParse != nil {
		return 0
	}
	return limit
}
