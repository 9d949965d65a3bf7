package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/matchday-bet/matchday/internal/db"
	"github.com/matchday-bet/matchday/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on top of gorm (SQLite or PostgreSQL).
type GormStore struct {
	db    *gorm.DB
	locks *userLocks
}

// NewGormStore wraps an open, migrated connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, locks: newUserLocks()}
}

// WithUser serializes writers per user in-process and re-reads the user row FOR UPDATE.
func (s *GormStore) WithUser(ctx context.Context, userID uint64, fn func(tx Tx, user *models.User) error) error {
	unlock := s.locks.lock(userID)
	defer unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		query := tx
		if !dbpkg.IsSQLite(tx) {
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if errFind := query.Where("id = ?", userID).First(&user).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("store: lock user: %w", errFind)
		}
		return fn(&gormTx{tx: tx, user: &user}, &user)
	})
}

// CreateUser inserts a new user, rejecting duplicate usernames before emails.
func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("store: nil user")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if errCount := tx.Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; errCount != nil {
			return fmt.Errorf("store: check username: %w", errCount)
		}
		if count > 0 {
			return ErrUsernameTaken
		}
		if errCount := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; errCount != nil {
			return fmt.Errorf("store: check email: %w", errCount)
		}
		if count > 0 {
			return ErrEmailTaken
		}
		if errCreate := tx.Create(user).Error; errCreate != nil {
			if isUniqueViolation(errCreate) {
				if strings.Contains(strings.ToLower(errCreate.Error()), "email") {
					return ErrEmailTaken
				}
				return ErrUsernameTaken
			}
			return fmt.Errorf("store: create user: %w", errCreate)
		}
		return nil
	})
}

// GetUser loads a user by id.
func (s *GormStore) GetUser(ctx context.Context, userID uint64) (*models.User, error) {
	var user models.User
	if errFind := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; errFind != nil {
		return nil, notFound(errFind, "get user")
	}
	return &user, nil
}

// GetUserByUsername loads a user by login name.
func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if errFind := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; errFind != nil {
		return nil, notFound(errFind, "get user by username")
	}
	return &user, nil
}

// Leaderboard returns the top users by balance.
func (s *GormStore) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	var entries []models.LeaderboardEntry
	if errFind := s.db.WithContext(ctx).
		Model(&models.User{}).
		Select("id", "username", "balance", "is_vip", "total_wins").
		Order("balance DESC").
		Order("id ASC").
		Limit(limit).
		Scan(&entries).Error; errFind != nil {
		return nil, fmt.Errorf("store: leaderboard: %w", errFind)
	}
	return entries, nil
}

// SetVIP grants or revokes VIP status without touching the balance.
func (s *GormStore) SetVIP(ctx context.Context, userID uint64, isVIP bool) (*models.User, error) {
	var out *models.User
	errTx := s.WithUser(ctx, userID, func(tx Tx, user *models.User) error {
		user.IsVIP = isVIP
		if errSave := tx.SaveProfile(); errSave != nil {
			return errSave
		}
		out = user
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}
	return out, nil
}

// ListBets returns the user's bets, newest first.
func (s *GormStore) ListBets(ctx context.Context, userID uint64) ([]models.Bet, error) {
	var bets []models.Bet
	if errFind := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&bets).Error; errFind != nil {
		return nil, fmt.Errorf("store: list bets: %w", errFind)
	}
	return bets, nil
}

// ListPendingBets returns the user's pending bets, oldest first.
func (s *GormStore) ListPendingBets(ctx context.Context, userID uint64) ([]models.Bet, error) {
	return pendingBets(s.db.WithContext(ctx), userID)
}

// UsersWithPendingBets returns the distinct ids of users holding pending bets.
func (s *GormStore) UsersWithPendingBets(ctx context.Context) ([]uint64, error) {
	var ids []uint64
	if errFind := s.db.WithContext(ctx).
		Model(&models.Bet{}).
		Where("status = ?", models.BetStatusPending).
		Distinct().
		Order("user_id ASC").
		Pluck("user_id", &ids).Error; errFind != nil {
		return nil, fmt.Errorf("store: users with pending bets: %w", errFind)
	}
	return ids, nil
}

// ListTransactions returns the user's ledger entries, newest first.
func (s *GormStore) ListTransactions(ctx context.Context, userID uint64) ([]models.Transaction, error) {
	var entries []models.Transaction
	if errFind := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&entries).Error; errFind != nil {
		return nil, fmt.Errorf("store: list transactions: %w", errFind)
	}
	return entries, nil
}

// UpdateWithdrawalStatus moves a pending withdrawal to completed or failed.
func (s *GormStore) UpdateWithdrawalStatus(ctx context.Context, transactionID uint64, status models.TransactionStatus) (*models.Transaction, error) {
	if status != models.TransactionStatusCompleted && status != models.TransactionStatusFailed {
		return nil, ErrInvalidTransition
	}
	var entry models.Transaction
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx
		if !dbpkg.IsSQLite(tx) {
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if errFind := query.Where("id = ?", transactionID).First(&entry).Error; errFind != nil {
			return notFound(errFind, "get transaction")
		}
		if entry.Type != models.TransactionTypeWithdrawal || entry.Status != models.TransactionStatusPending {
			return ErrInvalidTransition
		}
		entry.Status = status
		entry.UpdatedAt = time.Now().UTC()
		if errUpdate := tx.Model(&models.Transaction{}).
			Where("id = ?", entry.ID).
			Updates(map[string]any{"status": status, "updated_at": entry.UpdatedAt}).Error; errUpdate != nil {
			return fmt.Errorf("store: update transaction status: %w", errUpdate)
		}
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}
	return &entry, nil
}

// ListVirtualTransactions returns the newest feed entries.
func (s *GormStore) ListVirtualTransactions(ctx context.Context, limit int) ([]models.VirtualTransaction, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []models.VirtualTransaction
	if errFind := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error; errFind != nil {
		return nil, fmt.Errorf("store: list virtual transactions: %w", errFind)
	}
	return entries, nil
}

// CountVirtualTransactions returns the number of feed entries.
func (s *GormStore) CountVirtualTransactions(ctx context.Context) (int64, error) {
	var count int64
	if errCount := s.db.WithContext(ctx).Model(&models.VirtualTransaction{}).Count(&count).Error; errCount != nil {
		return 0, fmt.Errorf("store: count virtual transactions: %w", errCount)
	}
	return count, nil
}

// CreateVirtualTransactions bulk-inserts feed entries.
func (s *GormStore) CreateVirtualTransactions(ctx context.Context, entries []models.VirtualTransaction) error {
	if len(entries) == 0 {
		return nil
	}
	if errCreate := s.db.WithContext(ctx).CreateInBatches(entries, 100).Error; errCreate != nil {
		return fmt.Errorf("store: create virtual transactions: %w", errCreate)
	}
	return nil
}

// Ping checks database connectivity.
func (s *GormStore) Ping(ctx context.Context) error {
	return dbpkg.Ping(ctx, s.db)
}

type gormTx struct {
	tx   *gorm.DB
	user *models.User
}

func (t *gormTx) PendingBets() ([]models.Bet, error) {
	return pendingBets(t.tx, t.user.ID)
}

func (t *gormTx) CreateBet(bet *models.Bet) error {
	if bet == nil {
		return errors.New("store: nil bet")
	}
	bet.UserID = t.user.ID
	if bet.Status == "" {
		bet.Status = models.BetStatusPending
	}
	if errCreate := t.tx.Create(bet).Error; errCreate != nil {
		return fmt.Errorf("store: create bet: %w", errCreate)
	}
	return nil
}

func (t *gormTx) SettleBet(betID uint64, status models.BetStatus, result models.Prediction, settledAt time.Time) (bool, error) {
	res := t.tx.Model(&models.Bet{}).
		Where("id = ? AND user_id = ? AND status = ?", betID, t.user.ID, models.BetStatusPending).
		Updates(map[string]any{
			"status":     status,
			"result":     result,
			"settled_at": settledAt,
		})
	if res.Error != nil {
		return false, fmt.Errorf("store: settle bet: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (t *gormTx) Post(entry *models.Transaction) error {
	if entry == nil {
		return errors.New("store: nil transaction")
	}
	entry.UserID = t.user.ID
	if entry.Status == "" {
		entry.Status = models.TransactionStatusCompleted
	}
	if errCreate := t.tx.Create(entry).Error; errCreate != nil {
		return fmt.Errorf("store: post transaction: %w", errCreate)
	}
	balance := t.user.Balance + entry.Amount
	if errUpdate := t.tx.Model(&models.User{}).
		Where("id = ?", t.user.ID).
		Updates(map[string]any{"balance": balance, "updated_at": time.Now().UTC()}).Error; errUpdate != nil {
		return fmt.Errorf("store: apply balance: %w", errUpdate)
	}
	t.user.Balance = balance
	return nil
}

func (t *gormTx) SaveProfile() error {
	if errUpdate := t.tx.Model(&models.User{}).
		Where("id = ?", t.user.ID).
		Updates(map[string]any{
			"is_vip":         t.user.IsVIP,
			"last_spin_date": t.user.LastSpinDate,
			"total_wins":     t.user.TotalWins,
			"total_losses":   t.user.TotalLosses,
			"updated_at":     time.Now().UTC(),
		}).Error; errUpdate != nil {
		return fmt.Errorf("store: save profile: %w", errUpdate)
	}
	return nil
}

func (t *gormTx) AppendVirtualTransaction(entry *models.VirtualTransaction) error {
	if entry == nil {
		return errors.New("store: nil virtual transaction")
	}
	if entry.Type == "" {
		entry.Type = "withdrawal"
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if errCreate := t.tx.Create(entry).Error; errCreate != nil {
		return fmt.Errorf("store: append virtual transaction: %w", errCreate)
	}
	return nil
}

func pendingBets(db *gorm.DB, userID uint64) ([]models.Bet, error) {
	var bets []models.Bet
	if errFind := db.
		Where("user_id = ? AND status = ?", userID, models.BetStatusPending).
		Order("created_at ASC").
		Order("id ASC").
		Find(&bets).Error; errFind != nil {
		return nil, fmt.Errorf("store: pending bets: %w", errFind)
	}
	return bets, nil
}

func notFound(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("store: %s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
