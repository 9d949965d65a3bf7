// Package wallet implements the reward side of the ledger: the daily lucky spin,
// VIP activation, withdrawal requests and the public withdrawal feed.
package wallet

import (
	"context"
	"time"

	"github.com/matchday-bet/matchday/internal/config"
	"github.com/matchday-bet/matchday/internal/events"
	"github.com/matchday-bet/matchday/internal/models"
	"github.com/matchday-bet/matchday/internal/notify"
	"github.com/matchday-bet/matchday/internal/rules"
	"github.com/matchday-bet/matchday/internal/settings"
	"github.com/matchday-bet/matchday/internal/store"
)

const (
	defaultFeedLimit        = 100
	defaultLeaderboardLimit = 10
	maxListLimit            = 500
)

// Service applies reward operations to user balances.
type Service struct {
	store     store.Store
	rewards   config.RewardsConfig
	overrides *settings.Snapshot
	wheel     *rules.Wheel
	notifier  notify.Notifier
	publisher events.Publisher

	now func() time.Time
	loc *time.Location
}

// NewService builds the wallet service. Codes and fees in overrides take precedence over
// rewards; a nil overrides uses rewards as is. A nil notifier logs, a nil publisher drops events.
func NewService(st store.Store, rewards config.RewardsConfig, overrides *settings.Snapshot, notifier notify.Notifier, publisher events.Publisher) (*Service, error) {
	wheel, errWheel := rules.NewWheel(rewards.SpinTable)
	if errWheel != nil {
		return nil, errWheel
	}
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		store:     st,
		rewards:   rewards,
		overrides: overrides,
		wheel:     wheel,
		notifier:  notifier,
		publisher: publisher,
		now:       time.Now,
		loc:       time.Local,
	}, nil
}

// Codes and fees can be rotated at runtime through settings rows.
func (s *Service) vipCode() string {
	return s.overrides.String(settings.VIPActivationCodeKey, s.rewards.VIPActivationCode)
}

func (s *Service) vipFee() int64 {
	return s.overrides.Int64(settings.VIPFeeKey, s.rewards.VIPFee)
}

func (s *Service) withdrawalCode() string {
	return s.overrides.String(settings.WithdrawalActivationCodeKey, s.rewards.WithdrawalActivationCode)
}

func (s *Service) withdrawalMinimum() int64 {
	return s.overrides.Int64(settings.WithdrawalMinimumKey, s.rewards.WithdrawalMinimum)
}

func (s *Service) withdrawalFee() int64 {
	return s.overrides.Int64(settings.WithdrawalFeeKey, s.rewards.WithdrawalFee)
}

// ListTransactions returns the user's ledger, newest first.
func (s *Service) ListTransactions(ctx context.Context, userID uint64) ([]models.Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}

// Leaderboard returns the top users by balance. Non-positive limits use the default.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	return s.store.Leaderboard(ctx, clampLimit(limit, defaultLeaderboardLimit))
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
