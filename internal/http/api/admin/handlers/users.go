package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/matchday-bet/matchday/internal/events"
	"github.com/matchday-bet/matchday/internal/store"
	log "github.com/sirupsen/logrus"
)

// UserHandler lets reviewers grant or revoke VIP after verifying a payment.
type UserHandler struct {
	store     store.Store
	publisher events.Publisher
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(st store.Store, publisher events.Publisher) *UserHandler {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &UserHandler{store: st, publisher: publisher}
}

type setVIPRequest struct {
	IsVIP *bool `json:"isVip"`
}

// SetVIP updates a user's VIP flag without charging the fee.
func (h *UserHandler) SetVIP(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid user id"})
		return
	}
	var body setVIPRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || body.IsVIP == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "isVip is required"})
		return
	}

	user, err := h.store.SetVIP(c.Request.Context(), userID, *body.IsVIP)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		log.WithError(err).Error("admin: set vip failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	log.WithFields(log.Fields{"user_id": userID, "is_vip": user.IsVIP}).Info("admin: vip updated")
	if user.IsVIP {
		events.Emit(c.Request.Context(), h.publisher, events.New(events.TypeVIPActivated, userID, map[string]any{
			"fee":    0,
			"source": "admin",
		}))
	}
	c.JSON(http.StatusOK, user)
}
