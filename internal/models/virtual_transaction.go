package models

import "time"

// VirtualTransaction is a fabricated entry of the public "live withdrawals" feed.
// It is display data only and is never reconciled against balances.
type VirtualTransaction struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	Username string `gorm:"type:text;not null" json:"username"`
	Type     string `gorm:"type:text;not null;default:'withdrawal'" json:"type"`
	Amount   int64  `gorm:"not null" json:"amount"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"` // Display timestamp.
}
