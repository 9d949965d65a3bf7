package fixtures

import (
	"context"
	"errors"
	"time"

	"github.com/matchday-bet/matchday/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBCache stores gateway responses in the match_caches table.
type DBCache struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDBCache builds a database-backed cache.
func NewDBCache(db *gorm.DB) *DBCache {
	return &DBCache{db: db, now: time.Now}
}

// Get returns the payload for key unless it has expired.
func (c *DBCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var row models.MatchCache
	errFind := c.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if errFind != nil {
		return nil, false, errFind
	}
	if !row.ExpiresAt.After(c.now().UTC()) {
		return nil, false, nil
	}
	return []byte(row.Payload), true, nil
}

// Set upserts payload under key for ttl.
func (c *DBCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	now := c.now().UTC()
	row := models.MatchCache{
		Key:       key,
		Payload:   datatypes.JSON(payload),
		ExpiresAt: now.Add(ttl),
	}
	return c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "expires_at", "updated_at"}),
	}).Create(&row).Error
}

// PurgeExpired deletes rows whose expiry has passed.
func (c *DBCache) PurgeExpired(ctx context.Context) (int64, error) {
	res := c.db.WithContext(ctx).Where("expires_at <= ?", c.now().UTC()).Delete(&models.MatchCache{})
	return res.RowsAffected, res.Error
}
