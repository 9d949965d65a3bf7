package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/matchday-bet/matchday/internal/betting"
	"github.com/matchday-bet/matchday/internal/fixtures"
	"github.com/matchday-bet/matchday/internal/models"
	"github.com/matchday-bet/matchday/internal/rules"
)

// BetHandler handles predictions and their settlement.
type BetHandler struct {
	betting *betting.Service
}

// NewBetHandler constructs a BetHandler.
func NewBetHandler(service *betting.Service) *BetHandler {
	return &BetHandler{betting: service}
}

// placeBetRequest accepts matchId as a string or a number.
type placeBetRequest struct {
	MatchID    fixtures.Key      `json:"matchId"`
	Prediction models.Prediction `json:"prediction"`
	Odds       float64           `json:"odds"`
}

// Place admits a prediction.
func (h *BetHandler) Place(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	var body placeBetRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": rules.ErrMissingBetFields.Message})
		return
	}
	bet, err := h.betting.PlaceBet(c.Request.Context(), userID, betting.PlaceBetInput{
		MatchID:    string(body.MatchID),
		Prediction: body.Prediction,
		Odds:       body.Odds,
	})
	if err != nil {
		respondError(c, err, "place bet")
		return
	}
	c.JSON(http.StatusCreated, bet)
}

// List returns the user's bets, newest first.
func (h *BetHandler) List(c *gin.Context) {
	bets, err := h.betting.ListBets(c.Request.Context(), getUserID(c))
	if err != nil {
		respondError(c, err, "list bets")
		return
	}
	if bets == nil {
		bets = []models.Bet{}
	}
	c.JSON(http.StatusOK, bets)
}

// CheckResults settles finished predictions and returns the refreshed user.
func (h *BetHandler) CheckResults(c *gin.Context) {
	settlement, err := h.betting.SettlePending(c.Request.Context(), getUserID(c))
	if err != nil {
		respondError(c, err, "check bet results")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":    settlement.User,
		"results": settlement.Results,
	})
}
