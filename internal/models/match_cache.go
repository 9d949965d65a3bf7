package models

import (
	"time"

	"gorm.io/datatypes"
)

// MatchCache stores a serialized upstream fixture response until it expires.
type MatchCache struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Key     string         `gorm:"type:varchar(255);not null;uniqueIndex"` // Cache key.
	Payload datatypes.JSON `gorm:"type:jsonb;not null"`                    // Cached fixtures JSON.

	ExpiresAt time.Time `gorm:"not null;index"`          // Entry is stale after this time.
	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last refresh timestamp.
}
