package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/matchday-bet/matchday/internal/models"
	"github.com/matchday-bet/matchday/internal/store"
	log "github.com/sirupsen/logrus"
)

// TransactionHandler moves pending withdrawals to their final status.
type TransactionHandler struct {
	store store.Store
}

// NewTransactionHandler constructs a TransactionHandler.
func NewTransactionHandler(st store.Store) *TransactionHandler {
	return &TransactionHandler{store: st}
}

type updateStatusRequest struct {
	Status models.TransactionStatus `json:"status"`
}

// UpdateStatus marks a pending withdrawal completed or failed.
func (h *TransactionHandler) UpdateStatus(c *gin.Context) {
	transactionID, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid transaction id"})
		return
	}
	var body updateStatusRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "status is required"})
		return
	}
	if body.Status != models.TransactionStatusCompleted && body.Status != models.TransactionStatusFailed {
		c.JSON(http.StatusBadRequest, gin.H{"message": "status must be completed or failed"})
		return
	}

	transaction, err := h.store.UpdateWithdrawalStatus(c.Request.Context(), transactionID, body.Status)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Transaction not found"})
		case errors.Is(err, store.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"message": "only pending withdrawals can change status"})
		default:
			log.WithError(err).Error("admin: update transaction status failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		}
		return
	}
	log.WithFields(log.Fields{"transaction_id": transactionID, "status": transaction.Status}).Info("admin: withdrawal status updated")
	c.JSON(http.StatusOK, transaction)
}
