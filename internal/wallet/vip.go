package wallet

import (
	"context"

	"github.com/matchday-bet/matchday/internal/events"
	"github.com/matchday-bet/matchday/internal/metrics"
	"github.com/matchday-bet/matchday/internal/models"
	"github.com/matchday-bet/matchday/internal/rules"
	"github.com/matchday-bet/matchday/internal/security"
	"github.com/matchday-bet/matchday/internal/store"
)

// User-facing VIP messages.
const (
	VIPActivatedMessage      = "VIP status activated successfully"
	VIPPaymentPendingMessage = "Your payment notification has been sent to the admin. VIP access will be granted after verification."
)

// ActivateVIPInput is a VIP activation request.
type ActivateVIPInput struct {
	ActivationKey  string
	HasMadePayment bool
}

// VIPResult is the outcome of ActivateVIP. Pending is set when the request only
// notified the reviewer and changed nothing.
type VIPResult struct {
	User    *models.User
	Pending bool
	Message string
}

// ActivateVIP upgrades the user with the activation code and fee, or forwards a
// payment claim to the reviewer channel.
func (s *Service) ActivateVIP(ctx context.Context, userID uint64, in ActivateVIPInput) (*VIPResult, error) {
	key := in.ActivationKey
	if key == "" {
		return nil, rules.ErrMissingActivation
	}

	if in.HasMadePayment {
		user, errUser := s.store.GetUser(ctx, userID)
		if errUser != nil {
			return nil, errUser
		}
		if user.IsVIP {
			return nil, rules.ErrAlreadyVIP
		}
		s.notifier.VIPPaymentClaimed(ctx, user)
		return &VIPResult{User: user, Pending: true, Message: VIPPaymentPendingMessage}, nil
	}

	fee := s.vipFee()
	var activated *models.User
	errTx := s.store.WithUser(ctx, userID, func(tx store.Tx, user *models.User) error {
		if user.IsVIP {
			return rules.ErrAlreadyVIP
		}
		if !security.TokenEqual(s.vipCode(), key) {
			return rules.ErrInvalidVIPKey
		}
		if user.Balance < fee {
			return rules.InsufficientBalanceViolation(fee)
		}
		if errPost := tx.Post(&models.Transaction{
			Type:    models.TransactionTypeVIPActivation,
			Amount:  -fee,
			Status:  models.TransactionStatusCompleted,
			Details: "VIP Activation",
		}); errPost != nil {
			return errPost
		}
		user.IsVIP = true
		if errSave := tx.SaveProfile(); errSave != nil {
			return errSave
		}
		activated = user
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}

	metrics.ObserveLedger(string(models.TransactionTypeVIPActivation), fee)
	events.Emit(ctx, s.publisher, events.New(events.TypeVIPActivated, userID, map[string]any{"fee": fee}))
	return &VIPResult{User: activated, Message: VIPActivatedMessage}, nil
}
