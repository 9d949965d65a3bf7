// Package betting admits predictions and settles them against finished fixtures.
package betting

import (
	"context"
	"time"

	"github.com/matchday-bet/matchday/internal/events"
	"github.com/matchday-bet/matchday/internal/fixtures"
	"github.com/matchday-bet/matchday/internal/models"
	"github.com/matchday-bet/matchday/internal/rules"
	"github.com/matchday-bet/matchday/internal/store"
)

const defaultLookupTimeout = 5 * time.Second

// Service owns the bet lifecycle of every user.
type Service struct {
	store         store.Store
	gateway       fixtures.Gateway
	policy        rules.Policy
	publisher     events.Publisher
	lookupTimeout time.Duration
	now           func() time.Time
}

// NewService wires the betting service. A nil publisher drops events.
func NewService(st store.Store, gateway fixtures.Gateway, policy rules.Policy, publisher events.Publisher, lookupTimeout time.Duration) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if lookupTimeout <= 0 {
		lookupTimeout = defaultLookupTimeout
	}
	return &Service{
		store:         st,
		gateway:       gateway,
		policy:        policy,
		publisher:     publisher,
		lookupTimeout: lookupTimeout,
		now:           time.Now,
	}
}

// ListBets returns the user's bets, newest first.
func (s *Service) ListBets(ctx context.Context, userID uint64) ([]models.Bet, error) {
	return s.store.ListBets(ctx, userID)
}
