package models

import "time"

// User is a player account. Balance only changes through a posted Transaction.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	Username string `gorm:"type:text;not null;uniqueIndex" json:"username"` // Unique login name.
	Email    string `gorm:"type:text;not null;uniqueIndex" json:"email"`    // Unique email address.
	Password string `gorm:"type:text;not null" json:"-"`                    // Bcrypt hash, never serialized.

	Balance int64 `gorm:"not null;default:0;index" json:"balance"` // Virtual currency units.
	IsVIP   bool  `gorm:"column:is_vip;not null;default:false" json:"isVip"`

	LastSpinDate *time.Time `json:"lastSpinDate"` // Last successful lucky spin.

	TotalWins   int64 `gorm:"not null;default:0" json:"totalWins"`   // Bets settled as won.
	TotalLosses int64 `gorm:"not null;default:0" json:"totalLosses"` // Bets settled as lost.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"` // Last update timestamp.
}

// LeaderboardEntry is the public projection of a user on the leaderboard.
type LeaderboardEntry struct {
	ID        uint64 `json:"id"`
	Username  string `json:"username"`
	Balance   int64  `json:"balance"`
	IsVIP     bool   `gorm:"column:is_vip" json:"isVip"`
	TotalWins int64  `json:"totalWins"`
}
