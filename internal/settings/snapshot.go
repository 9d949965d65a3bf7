package settings

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/matchday-bet/matchday/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrUnknownKey is returned by Put for keys that are not runtime overrides.
	ErrUnknownKey = errors.New("settings: unknown key")
	// ErrInvalidValue is returned by Put for values that are not JSON.
	ErrInvalidValue = errors.New("settings: value is not valid json")
)

type overrides struct {
	updatedAt time.Time
	values    map[string]json.RawMessage
}

// Snapshot holds the runtime overrides read from the settings table. Readers never
// touch the database; Reload and Put swap the whole map. A nil Snapshot has no overrides.
type Snapshot struct {
	db      *gorm.DB
	current atomic.Pointer[overrides]
}

// NewSnapshot returns an empty snapshot backed by db. Call Reload to populate it.
func NewSnapshot(db *gorm.DB) *Snapshot {
	s := &Snapshot{db: db}
	s.current.Store(&overrides{values: map[string]json.RawMessage{}})
	return s
}

// Reload reads every settings row and replaces the in-memory overrides.
func (s *Snapshot) Reload(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("settings: nil db")
	}
	rows, errList := s.List(ctx)
	if errList != nil {
		return errList
	}
	values := make(map[string]json.RawMessage, len(rows))
	var latest time.Time
	for _, row := range rows {
		values[row.Key] = row.Value
		if updated := row.UpdatedAt.UTC(); updated.After(latest) {
			latest = updated
		}
	}
	s.Replace(latest, values)
	return nil
}

// List returns the stored rows ordered by key.
func (s *Snapshot) List(ctx context.Context) ([]models.Setting, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("settings: nil db")
	}
	var rows []models.Setting
	if errFind := s.db.WithContext(ctx).
		Select("key", "value", "updated_at").
		Order("key ASC").
		Find(&rows).Error; errFind != nil {
		return nil, errFind
	}
	return rows, nil
}

// Put upserts one override and reloads the snapshot.
func (s *Snapshot) Put(ctx context.Context, key string, value json.RawMessage) error {
	if s == nil || s.db == nil {
		return errors.New("settings: nil db")
	}
	key = strings.TrimSpace(key)
	if !IsKnownKey(key) {
		return ErrUnknownKey
	}
	if !json.Valid(value) {
		return ErrInvalidValue
	}
	row := models.Setting{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	if errUpsert := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error; errUpsert != nil {
		return errUpsert
	}
	return s.Reload(ctx)
}

// Replace swaps in a copy of values. Blank keys are dropped.
func (s *Snapshot) Replace(updatedAt time.Time, values map[string]json.RawMessage) {
	next := make(map[string]json.RawMessage, len(values))
	for k, v := range values {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		next[key] = append(json.RawMessage(nil), v...)
	}
	s.current.Store(&overrides{updatedAt: updatedAt.UTC(), values: next})
}

// UpdatedAt is the newest row timestamp seen by the last reload.
func (s *Snapshot) UpdatedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.load().updatedAt
}

// Value returns the raw override stored under key.
func (s *Snapshot) Value(key string) (json.RawMessage, bool) {
	if s == nil {
		return nil, false
	}
	val, ok := s.load().values[strings.TrimSpace(key)]
	if !ok || len(val) == 0 {
		return nil, false
	}
	return append(json.RawMessage(nil), val...), true
}

func (s *Snapshot) load() *overrides {
	if cur := s.current.Load(); cur != nil {
		return cur
	}
	return &overrides{}
}
