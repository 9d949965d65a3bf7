package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/matchday-bet/matchday/internal/fixtures"
	log "github.com/sirupsen/logrus"
)

// MatchHandler serves fixtures from the gateway.
type MatchHandler struct {
	gateway fixtures.Gateway
	now     func() time.Time
}

// NewMatchHandler constructs a MatchHandler.
func NewMatchHandler(gateway fixtures.Gateway) *MatchHandler {
	return &MatchHandler{gateway: gateway, now: time.Now}
}

// ByDate returns the fixtures of ?date=YYYY-MM-DD, today when omitted.
func (h *MatchHandler) ByDate(c *gin.Context) {
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		date = h.now().Format(fixtures.DateLayout)
	}
	if _, errParse := time.Parse(fixtures.DateLayout, date); errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "date must be YYYY-MM-DD"})
		return
	}
	list, err := h.gateway.ByDate(c.Request.Context(), date)
	h.respondList(c, list, err, "matches by date")
}

// Upcoming returns live fixtures followed by the next days' schedule.
func (h *MatchHandler) Upcoming(c *gin.Context) {
	list, err := h.gateway.Upcoming(c.Request.Context())
	h.respondList(c, list, err, "upcoming matches")
}

// Live returns fixtures in play.
func (h *MatchHandler) Live(c *gin.Context) {
	list, err := h.gateway.Live(c.Request.Context())
	h.respondList(c, list, err, "live matches")
}

// Get returns one fixture. Upstream failures are logged and reported as not found.
func (h *MatchHandler) Get(c *gin.Context) {
	matchID := strings.TrimSpace(c.Param("matchId"))
	if matchID == "" {
		c.JSON(http.StatusNotFound, gin.H{"message": "Match not found"})
		return
	}
	fixture, err := h.gateway.Match(c.Request.Context(), matchID)
	if err != nil {
		log.WithError(err).WithField("match_id", matchID).Warn("match lookup failed")
		fixture = nil
	}
	if fixture == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Match not found"})
		return
	}
	c.JSON(http.StatusOK, fixture)
}

// respondList degrades upstream failures to an empty list.
func (h *MatchHandler) respondList(c *gin.Context, list []fixtures.Fixture, err error, action string) {
	if err != nil {
		log.WithError(err).Warnf("%s: upstream failed", action)
		list = nil
	}
	if list == nil {
		list = []fixtures.Fixture{}
	}
	c.JSON(http.StatusOK, list)
}
