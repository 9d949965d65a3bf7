package wallet

import (
	"context"

	"github.com/matchday-bet/matchday/internal/events"
	"github.com/matchday-bet/matchday/internal/metrics"
	"github.com/matchday-bet/matchday/internal/models"
	"github.com/matchday-bet/matchday/internal/rules"
	"github.com/matchday-bet/matchday/internal/store"
)

// SpinResult is the outcome of a lucky spin.
type SpinResult struct {
	User   *models.User
	Amount int64
}

// Spin awards one weighted draw per local calendar day.
func (s *Service) Spin(ctx context.Context, userID uint64) (*SpinResult, error) {
	var result SpinResult
	errTx := s.store.WithUser(ctx, userID, func(tx store.Tx, user *models.User) error {
		now := s.now()
		if !rules.CanSpin(user.LastSpinDate, now, s.loc) {
			return rules.ErrAlreadySpun
		}
		amount := s.wheel.Spin()
		if errPost := tx.Post(&models.Transaction{
			Type:    models.TransactionTypeLuckySpin,
			Amount:  amount,
			Status:  models.TransactionStatusCompleted,
			Details: "Lucky Spin bonus",
		}); errPost != nil {
			return errPost
		}
		spunAt := now.UTC()
		user.LastSpinDate = &spunAt
		if errSave := tx.SaveProfile(); errSave != nil {
			return errSave
		}
		result = SpinResult{User: user, Amount: amount}
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}

	metrics.SpinsAwarded.Inc()
	metrics.ObserveLedger(string(models.TransactionTypeLuckySpin), result.Amount)
	events.Emit(ctx, s.publisher, events.New(events.TypeSpinAwarded, userID, map[string]any{"amount": result.Amount}))
	return &result, nil
}
