//go:build integration

package store

import (
	"context"
	"sync"
	"testing"
	"time"

	dbpkg "github.com/matchday-bet/matchday/internal/db"
	"github.com/matchday-bet/matchday/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func newPostgresStore(t *testing.T) *GormStore {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("matchday_test"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		postgres.BasicWaitStrategies(),
		testcontainers.WithLabels(map[string]string{"test": "matchday-store", "test-name": t.Name()}),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if errTerminate := container.Terminate(cleanupCtx); errTerminate != nil {
			t.Logf("terminate postgres container: %v", errTerminate)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	conn, err := dbpkg.Open(dsn)
	require.NoError(t, err)
	require.NoError(t, dbpkg.Migrate(conn))
	t.Cleanup(func() { _ = dbpkg.Close(conn) })
	return NewGormStore(conn)
}

func TestPostgresConcurrentSettlementKeepsLedger(t *testing.T) {
	s := newPostgresStore(t)
	ctx := context.Background()
	user := createUser(t, s, "pg-user", 5000)

	var bet models.Bet
	require.NoError(t, s.WithUser(ctx, user.ID, func(tx Tx, u *models.User) error {
		bet = models.Bet{MatchID: "777", Prediction: models.PredictionAway, Odds: 2.5}
		return tx.CreateBet(&bet)
	}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.WithUser(ctx, user.ID, func(tx Tx, u *models.User) error {
				ok, errSettle := tx.SettleBet(bet.ID, models.BetStatusWon, models.PredictionAway, time.Now())
				if errSettle != nil || !ok {
					return errSettle
				}
				return tx.Post(&models.Transaction{Type: models.TransactionTypeWin, Amount: 5000, Details: "settled"})
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	reloaded, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), reloaded.Balance)
	assert.Equal(t, int64(5000), ledgerSum(t, s, user.ID))
}
