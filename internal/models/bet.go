package models

import "time"

// BetStatus is the lifecycle state of a prediction.
type BetStatus string

// BetStatus values. A bet leaves pending exactly once.
const (
	BetStatusPending BetStatus = "pending"
	BetStatusWon     BetStatus = "won"
	BetStatusLost    BetStatus = "lost"
)

// Prediction is the predicted or observed outcome of a fixture.
type Prediction string

// Prediction values.
const (
	PredictionHome Prediction = "home"
	PredictionDraw Prediction = "draw"
	PredictionAway Prediction = "away"
)

// Valid reports whether p is one of home, draw or away.
func (p Prediction) Valid() bool {
	switch p {
	case PredictionHome, PredictionDraw, PredictionAway:
		return true
	default:
		return false
	}
}

// Bet is a free prediction on an external fixture.
type Bet struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	UserID  uint64 `gorm:"not null;index:idx_bets_user_status,priority:1" json:"userId"` // Owner.
	MatchID string `gorm:"type:text;not null;index" json:"matchId"`                      // Upstream event_key.

	Prediction Prediction `gorm:"type:text;not null" json:"prediction"`
	Odds       float64    `gorm:"not null;default:0" json:"odds"` // Display only.
	Amount     int64      `gorm:"not null;default:0" json:"amount"`

	Status    BetStatus  `gorm:"type:text;not null;default:'pending';index:idx_bets_user_status,priority:2" json:"status"`
	Result    Prediction `gorm:"type:text" json:"result,omitempty"` // Observed outcome once settled.
	SettledAt *time.Time `json:"settledAt,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"` // Creation timestamp.
}
