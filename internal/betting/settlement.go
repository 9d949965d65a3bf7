package betting

import (
	"context"
	"fmt"

	"github.com/matchday-bet/matchday/internal/events"
	"github.com/matchday-bet/matchday/internal/metrics"
	"github.com/matchday-bet/matchday/internal/models"
	"github.com/matchday-bet/matchday/internal/store"
	log "github.com/sirupsen/logrus"
)

// Result describes one bet settled by a SettlePending call.
type Result struct {
	BetID         uint64            `json:"betId"`
	MatchID       string            `json:"matchId"`
	Prediction    models.Prediction `json:"prediction"`
	Result        models.Prediction `json:"result"`
	Status        models.BetStatus  `json:"status"`
	BalanceChange int64             `json:"balanceChange"`
}

// Settlement is the outcome of a SettlePending call.
type Settlement struct {
	User    *models.User `json:"user"`
	Results []Result     `json:"results"`
}

// SettlePending resolves the user's pending bets whose fixtures have finished.
// Fixture lookups run before the user's lock is taken; bets whose fixture is missing,
// unfinished or unparsable stay pending. Calling it again settles nothing twice.
func (s *Service) SettlePending(ctx context.Context, userID uint64) (*Settlement, error) {
	user, errUser := s.store.GetUser(ctx, userID)
	if errUser != nil {
		return nil, errUser
	}
	pending, errPending := s.store.ListPendingBets(ctx, userID)
	if errPending != nil {
		return nil, errPending
	}
	if len(pending) == 0 {
		return &Settlement{User: user, Results: []Result{}}, nil
	}

	outcomes := s.resolveOutcomes(ctx, pending)
	if len(outcomes) == 0 {
		return &Settlement{User: user, Results: []Result{}}, nil
	}

	results := make([]Result, 0, len(outcomes))
	var settled *models.User
	errTx := s.store.WithUser(ctx, userID, func(tx store.Tx, locked *models.User) error {
		results = results[:0]
		settledAt := s.now().UTC()
		tier := s.policy.For(locked.IsVIP)
		for _, bet := range pending {
			outcome, ok := outcomes[bet.MatchID]
			if !ok {
				continue
			}
			won := outcome == bet.Prediction
			status := models.BetStatusLost
			entryType := models.TransactionTypeLoss
			if won {
				status = models.BetStatusWon
				entryType = models.TransactionTypeWin
			}

			applied, errSettle := tx.SettleBet(bet.ID, status, outcome, settledAt)
			if errSettle != nil {
				return errSettle
			}
			if !applied {
				continue
			}

			delta := tier.Delta(won)
			if errPost := tx.Post(&models.Transaction{
				Type:    entryType,
				Amount:  delta,
				Status:  models.TransactionStatusCompleted,
				Details: fmt.Sprintf("Bet %d on match %s (%s)", bet.ID, bet.MatchID, bet.Prediction),
			}); errPost != nil {
				return errPost
			}
			if won {
				locked.TotalWins++
			} else {
				locked.TotalLosses++
			}
			results = append(results, Result{
				BetID:         bet.ID,
				MatchID:       bet.MatchID,
				Prediction:    bet.Prediction,
				Result:        outcome,
				Status:        status,
				BalanceChange: delta,
			})
		}
		if len(results) > 0 {
			if errSave := tx.SaveProfile(); errSave != nil {
				return errSave
			}
		}
		settled = locked
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}

	for _, r := range results {
		metrics.BetsSettled.WithLabelValues(string(r.Status)).Inc()
		metrics.ObserveLedger(string(settlementType(r.Status)), r.BalanceChange)
		events.Emit(ctx, s.publisher, events.New(events.TypeBetSettled, userID, map[string]any{
			"betId":         r.BetID,
			"matchId":       r.MatchID,
			"prediction":    r.Prediction,
			"result":        r.Result,
			"status":        r.Status,
			"balanceChange": r.BalanceChange,
		}))
	}
	return &Settlement{User: settled, Results: results}, nil
}

// resolveOutcomes looks up each distinct match once and keeps the finished ones.
func (s *Service) resolveOutcomes(ctx context.Context, pending []models.Bet) map[string]models.Prediction {
	outcomes := make(map[string]models.Prediction)
	looked := make(map[string]struct{})
	for _, bet := range pending {
		if _, done := looked[bet.MatchID]; done {
			continue
		}
		looked[bet.MatchID] = struct{}{}

		lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
		fixture, err := s.gateway.Match(lookupCtx, bet.MatchID)
		cancel()
		if err != nil {
			log.WithError(err).WithField("match_id", bet.MatchID).Warn("settlement: fixture lookup failed")
			continue
		}
		if fixture == nil {
			continue
		}
		if outcome, ok := fixture.Outcome(); ok {
			outcomes[bet.MatchID] = outcome
		}
	}
	return outcomes
}

func settlementType(status models.BetStatus) models.TransactionType {
	if status == models.BetStatusWon {
		return models.TransactionTypeWin
	}
	return models.TransactionTypeLoss
}
