// Package store persists users, bets and the balance ledger.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/matchday-bet/matchday/internal/models"
)

// Store errors.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrUsernameTaken indicates a user with the same username exists.
	ErrUsernameTaken = errors.New("store: username taken")
	// ErrEmailTaken indicates a user with the same email exists.
	ErrEmailTaken = errors.New("store: email taken")
	// ErrInvalidTransition indicates a transaction status change that is not allowed.
	ErrInvalidTransition = errors.New("store: invalid status transition")
)

// Store is the persistence boundary of the service.
type Store interface {
	// WithUser runs fn as one atomic unit holding the user's lock. The user passed to fn
	// is freshly read inside the transaction; returning an error rolls everything back.
	WithUser(ctx context.Context, userID uint64, fn func(tx Tx, user *models.User) error) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID uint64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	SetVIP(ctx context.Context, userID uint64, isVIP bool) (*models.User, error)

	ListBets(ctx context.Context, userID uint64) ([]models.Bet, error)
	ListPendingBets(ctx context.Context, userID uint64) ([]models.Bet, error)
	UsersWithPendingBets(ctx context.Context) ([]uint64, error)

	ListTransactions(ctx context.Context, userID uint64) ([]models.Transaction, error)
	UpdateWithdrawalStatus(ctx context.Context, transactionID uint64, status models.TransactionStatus) (*models.Transaction, error)

	ListVirtualTransactions(ctx context.Context, limit int) ([]models.VirtualTransaction, error)
	CountVirtualTransactions(ctx context.Context) (int64, error)
	CreateVirtualTransactions(ctx context.Context, entries []models.VirtualTransaction) error

	Ping(ctx context.Context) error
}

// Tx is the set of writes allowed inside WithUser.
type Tx interface {
	PendingBets() ([]models.Bet, error)
	CreateBet(bet *models.Bet) error
	// SettleBet moves a pending bet to a final status. It reports false when the
	// bet was no longer pending.
	SettleBet(betID uint64, status models.BetStatus, result models.Prediction, settledAt time.Time) (bool, error)
	// Post applies entry.Amount to the user's balance and appends the entry.
	// It is the only way a balance changes.
	Post(entry *models.Transaction) error
	// SaveProfile persists VIP status, last spin date and win/loss counters.
	SaveProfile() error
	AppendVirtualTransaction(entry *models.VirtualTransaction) error
}
