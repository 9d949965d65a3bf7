package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/matchday-bet/matchday/internal/models"
	"github.com/matchday-bet/matchday/internal/rules"
	"github.com/matchday-bet/matchday/internal/wallet"
)

// WalletHandler handles spins, VIP activation, withdrawals and the ledger.
type WalletHandler struct {
	wallet *wallet.Service
}

// NewWalletHandler constructs a WalletHandler.
func NewWalletHandler(service *wallet.Service) *WalletHandler {
	return &WalletHandler{wallet: service}
}

// Spin draws the daily lucky spin.
func (h *WalletHandler) Spin(c *gin.Context) {
	result, err := h.wallet.Spin(c.Request.Context(), getUserID(c))
	if err != nil {
		respondError(c, err, "lucky spin")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":       result.User,
		"spinResult": gin.H{"amount": result.Amount},
	})
}

type activateVIPRequest struct {
	ActivationKey  string `json:"activationKey"`
	HasMadePayment bool   `json:"hasMadePayment"`
}

// ActivateVIP upgrades the user or forwards a payment claim for review.
func (h *WalletHandler) ActivateVIP(c *gin.Context) {
	var body activateVIPRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": rules.ErrMissingActivation.Message})
		return
	}
	result, err := h.wallet.ActivateVIP(c.Request.Context(), getUserID(c), wallet.ActivateVIPInput{
		ActivationKey:  body.ActivationKey,
		HasMadePayment: body.HasMadePayment,
	})
	if err != nil {
		respondError(c, err, "activate vip")
		return
	}
	if result.Pending {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": result.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": result.User, "message": result.Message})
}

type withdrawalRequest struct {
	AccountNumber string `json:"accountNumber"`
	BankName      string `json:"bankName"`
	AccountName   string `json:"accountName"`
	Amount        int64  `json:"amount"`
	ActivationKey string `json:"activationKey"`
}

// RequestWithdrawal records a pending withdrawal.
func (h *WalletHandler) RequestWithdrawal(c *gin.Context) {
	var body withdrawalRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": rules.ErrMissingWithdrawInfo.Message})
		return
	}
	result, err := h.wallet.RequestWithdrawal(c.Request.Context(), getUserID(c), wallet.WithdrawalInput{
		AccountNumber: body.AccountNumber,
		BankName:      body.BankName,
		AccountName:   body.AccountName,
		Amount:        body.Amount,
		ActivationKey: body.ActivationKey,
	})
	if err != nil {
		respondError(c, err, "request withdrawal")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":        result.User,
		"transaction": result.Transaction,
		"message":     wallet.WithdrawalSubmittedMessage,
	})
}

// Transactions returns the user's ledger, newest first.
func (h *WalletHandler) Transactions(c *gin.Context) {
	entries, err := h.wallet.ListTransactions(c.Request.Context(), getUserID(c))
	if err != nil {
		respondError(c, err, "list transactions")
		return
	}
	if entries == nil {
		entries = []models.Transaction{}
	}
	c.JSON(http.StatusOK, entries)
}

// Feed returns the public withdrawal feed.
func (h *WalletHandler) Feed(c *gin.Context) {
	entries, err := h.wallet.ListFeed(c.Request.Context(), queryLimit(c))
	if err != nil {
		respondError(c, err, "list feed")
		return
	}
	if entries == nil {
		entries = []models.VirtualTransaction{}
	}
	c.JSON(http.StatusOK, entries)
}

// Leaderboard returns the top users by balance.
func (h *WalletHandler) Leaderboard(c *gin.Context) {
	entries, err := h.wallet.Leaderboard(c.Request.Context(), queryLimit(c))
	if err != nil {
		respondError(c, err, "leaderboard")
		return
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	c.JSON(http.StatusOK, entries)
}
