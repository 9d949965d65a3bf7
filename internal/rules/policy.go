// Package rules holds the pure reward rules shared by settlement, admission and the wallet.
package rules

import "github.com/matchday-bet/matchday/internal/config"

// Tier is the limit and payout set of one account tier.
type Tier struct {
	BetLimit    int
	WinPayout   int64
	LossPenalty int64
}

// Policy selects a Tier by VIP status.
type Policy struct {
	Regular Tier
	VIP     Tier
}

// NewPolicy builds a Policy from the rewards configuration.
func NewPolicy(cfg config.RewardsConfig) Policy {
	return Policy{
		Regular: tierFromConfig(cfg.Regular),
		VIP:     tierFromConfig(cfg.VIP),
	}
}

// For returns the tier that applies to a user.
func (p Policy) For(isVIP bool) Tier {
	if isVIP {
		return p.VIP
	}
	return p.Regular
}

// Delta returns the signed balance change for a settled bet.
func (t Tier) Delta(won bool) int64 {
	if won {
		return t.WinPayout
	}
	return -t.LossPenalty
}

func tierFromConfig(cfg config.TierConfig) Tier {
	return Tier{BetLimit: cfg.BetLimit, WinPayout: cfg.WinPayout, LossPenalty: cfg.LossPenalty}
}
