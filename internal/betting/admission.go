package betting

import (
	"context"
	"strings"

	"github.com/matchday-bet/matchday/internal/events"
	"github.com/matchday-bet/matchday/internal/metrics"
	"github.com/matchday-bet/matchday/internal/models"
	"github.com/matchday-bet/matchday/internal/rules"
	"github.com/matchday-bet/matchday/internal/store"
)

// PlaceBetInput is a prediction request.
type PlaceBetInput struct {
	MatchID    string
	Prediction models.Prediction
	Odds       float64
}

func (in PlaceBetInput) validate() error {
	if strings.TrimSpace(in.MatchID) == "" || in.Prediction == "" || in.Odds == 0 {
		return rules.ErrMissingBetFields
	}
	if !in.Prediction.Valid() {
		return rules.ErrInvalidPrediction
	}
	if in.Odds < 0 {
		return rules.ErrInvalidOdds
	}
	return nil
}

// PlaceBet admits a free prediction. The tier limit is checked before the duplicate
// check; both run under the user's lock so concurrent requests cannot exceed them.
func (s *Service) PlaceBet(ctx context.Context, userID uint64, in PlaceBetInput) (*models.Bet, error) {
	in.MatchID = strings.TrimSpace(in.MatchID)
	if errValidate := in.validate(); errValidate != nil {
		metrics.BetsRejected.Inc()
		return nil, errValidate
	}

	var bet *models.Bet
	errTx := s.store.WithUser(ctx, userID, func(tx store.Tx, user *models.User) error {
		pending, errPending := tx.PendingBets()
		if errPending != nil {
			return errPending
		}
		tier := s.policy.For(user.IsVIP)
		if len(pending) >= tier.BetLimit {
			return rules.BetLimitViolation(user.IsVIP, tier.BetLimit)
		}
		for _, existing := range pending {
			if existing.MatchID == in.MatchID {
				return rules.ErrDuplicateBet
			}
		}
		bet = &models.Bet{
			MatchID:    in.MatchID,
			Prediction: in.Prediction,
			Odds:       in.Odds,
			Amount:     0,
			Status:     models.BetStatusPending,
		}
		return tx.CreateBet(bet)
	})
	if errTx != nil {
		if _, ok := rules.IsViolation(errTx); ok {
			metrics.BetsRejected.Inc()
		}
		return nil, errTx
	}

	metrics.BetsPlaced.Inc()
	events.Emit(ctx, s.publisher, events.New(events.TypeBetPlaced, userID, map[string]any{
		"betId":      bet.ID,
		"matchId":    bet.MatchID,
		"prediction": bet.Prediction,
		"odds":       bet.Odds,
	}))
	return bet, nil
}
