package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/matchday-bet/matchday/internal/settings"
	log "github.com/sirupsen/logrus"
)

// SettingHandler manages runtime overrides of codes and fees.
type SettingHandler struct {
	snapshot *settings.Snapshot
}

// NewSettingHandler constructs a SettingHandler over the live snapshot.
func NewSettingHandler(snapshot *settings.Snapshot) *SettingHandler {
	return &SettingHandler{snapshot: snapshot}
}

type putSettingRequest struct {
	Value json.RawMessage `json:"value"`
}

// List returns the stored overrides.
func (h *SettingHandler) List(c *gin.Context) {
	rows, errFind := h.snapshot.List(c.Request.Context())
	if errFind != nil {
		log.WithError(errFind).Error("admin: list settings failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{"key": row.Key, "value": json.RawMessage(row.Value), "updatedAt": row.UpdatedAt})
	}
	c.JSON(http.StatusOK, out)
}

// Put stores an override and reloads the settings snapshot.
func (h *SettingHandler) Put(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	var body putSettingRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || len(body.Value) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "value is required"})
		return
	}
	if errPut := h.snapshot.Put(c.Request.Context(), key, body.Value); errPut != nil {
		if errors.Is(errPut, settings.ErrUnknownKey) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "unknown setting"})
			return
		}
		if errors.Is(errPut, settings.ErrInvalidValue) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "value must be json"})
			return
		}
		log.WithError(errPut).Error("admin: put setting failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	log.WithField("key", key).Info("admin: setting updated")
	c.JSON(http.StatusOK, gin.H{"key": key, "value": body.Value})
}
