package betting

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/matchday-bet/matchday/internal/config"
	dbpkg "github.com/matchday-bet/matchday/internal/db"
	"github.com/matchday-bet/matchday/internal/events"
	"github.com/matchday-bet/matchday/internal/fixtures"
	"github.com/matchday-bet/matchday/internal/fixtures/fixturestest"
	"github.com/matchday-bet/matchday/internal/models"
	"github.com/matchday-bet/matchday/internal/rules"
	"github.com/matchday-bet/matchday/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *store.GormStore
	gateway  *fixturestest.Gateway
	recorder *events.Recorder
	service  *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := dbpkg.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, dbpkg.Migrate(conn))
	t.Cleanup(func() { _ = dbpkg.Close(conn) })

	cfg := config.Default()
	st := store.NewGormStore(conn)
	gateway := fixturestest.New()
	recorder := &events.Recorder{}
	return &fixture{
		store:    st,
		gateway:  gateway,
		recorder: recorder,
		service:  NewService(st, gateway, rules.NewPolicy(cfg.Rewards), recorder, time.Second),
	}
}

func (f *fixture) user(t *testing.T, username string, vip bool) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "hash", Balance: 5000, IsVIP: vip}
	require.NoError(t, f.store.CreateUser(context.Background(), user))
	return user
}

func bet(matchID string, prediction models.Prediction) PlaceBetInput {
	return PlaceBetInput{MatchID: matchID, Prediction: prediction, Odds: 2.1}
}

func TestPlaceBetThenSettleWin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "alice", false)

	placed, err := f.service.PlaceBet(ctx, user.ID, bet("M1", models.PredictionHome))
	require.NoError(t, err)
	assert.Equal(t, models.BetStatusPending, placed.Status)
	assert.Zero(t, placed.Amount)

	f.gateway.Finish("M1", "2 - 1")
	settlement, err := f.service.SettlePending(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, settlement.Results, 1)
	assert.Equal(t, models.BetStatusWon, settlement.Results[0].Status)
	assert.Equal(t, models.PredictionHome, settlement.Results[0].Result)
	assert.Equal(t, int64(5000), settlement.Results[0].BalanceChange)
	assert.Equal(t, int64(10000), settlement.User.Balance)
	assert.Equal(t, int64(1), settlement.User.TotalWins)

	entries, err := f.store.ListTransactions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.TransactionTypeWin, entries[0].Type)
	assert.Equal(t, int64(5000), entries[0].Amount)

	assert.Equal(t, []string{events.TypeBetPlaced, events.TypeBetSettled}, f.recorder.Types())
}

func TestSettlePendingIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "bob", false)

	_, err := f.service.PlaceBet(ctx, user.ID, bet("M2", models.PredictionAway))
	require.NoError(t, err)
	f.gateway.Finish("M2", "3 - 0")

	first, err := f.service.SettlePending(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, first.Results, 1)
	assert.Equal(t, models.BetStatusLost, first.Results[0].Status)
	assert.Equal(t, int64(3000), first.User.Balance)

	second, err := f.service.SettlePending(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, second.Results)
	assert.Equal(t, int64(3000), second.User.Balance)
}

func TestConcurrentSettlementPaysOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "carol", false)

	_, err := f.service.PlaceBet(ctx, user.ID, bet("M3", models.PredictionDraw))
	require.NoError(t, err)
	f.gateway.Finish("M3", "1 - 1")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errSettle := f.service.SettlePending(ctx, user.ID)
			assert.NoError(t, errSettle)
		}()
	}
	wg.Wait()

	reloaded, err := f.store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), reloaded.Balance)
	entries, err := f.store.ListTransactions(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSettleSkipsUnfinishedAndFailingFixtures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "dave", true)

	for _, id := range []string{"live", "missing", "broken", "done"} {
		_, err := f.service.PlaceBet(ctx, user.ID, bet(id, models.PredictionHome))
		require.NoError(t, err)
	}
	f.gateway.Set(fixtures.Fixture{EventKey: "live", EventStatus: "45", EventLive: "1", EventFinalResult: "1 - 0"})
	f.gateway.FailMatch("broken", errors.New("upstream down"))
	f.gateway.Finish("done", "0 - 2")

	settlement, err := f.service.SettlePending(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, settlement.Results, 1)
	assert.Equal(t, "done", settlement.Results[0].MatchID)
	assert.Equal(t, models.BetStatusLost, settlement.Results[0].Status)
	assert.Equal(t, int64(4000), settlement.User.Balance)

	pending, err := f.store.ListPendingBets(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, pending, 3)
}

func TestPlaceBetEnforcesTierLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	regular := f.user(t, "erin", false)
	vip := f.user(t, "frank", true)

	for _, id := range []string{"A", "B"} {
		_, err := f.service.PlaceBet(ctx, regular.ID, bet(id, models.PredictionHome))
		require.NoError(t, err)
	}
	_, err := f.service.PlaceBet(ctx, regular.ID, bet("C", models.PredictionHome))
	violation, ok := rules.IsViolation(err)
	require.True(t, ok)
	assert.Contains(t, violation.Message, "2")

	for _, id := range []string{"A", "B", "C", "D"} {
		_, errPlace := f.service.PlaceBet(ctx, vip.ID, bet(id, models.PredictionAway))
		require.NoError(t, errPlace)
	}
	_, err = f.service.PlaceBet(ctx, vip.ID, bet("E", models.PredictionAway))
	_, ok = rules.IsViolation(err)
	assert.True(t, ok)
}

func TestPlaceBetRejectsDuplicateMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "gina", true)

	_, err := f.service.PlaceBet(ctx, user.ID, bet("M9", models.PredictionHome))
	require.NoError(t, err)
	_, err = f.service.PlaceBet(ctx, user.ID, bet("M9", models.PredictionAway))
	assert.ErrorIs(t, err, rules.ErrDuplicateBet)

	// Once settled the match can be predicted again.
	f.gateway.Finish("M9", "0 - 0")
	_, err = f.service.SettlePending(ctx, user.ID)
	require.NoError(t, err)
	_, err = f.service.PlaceBet(ctx, user.ID, bet("M9", models.PredictionDraw))
	assert.NoError(t, err)
}

func TestPlaceBetValidatesInput(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "hank", false)
	cases := []struct {
		in   PlaceBetInput
		want error
	}{
		{PlaceBetInput{Prediction: models.PredictionHome, Odds: 1.5}, rules.ErrMissingBetFields},
		{PlaceBetInput{MatchID: "M", Odds: 1.5}, rules.ErrMissingBetFields},
		{PlaceBetInput{MatchID: "M", Prediction: models.PredictionHome}, rules.ErrMissingBetFields},
		{PlaceBetInput{MatchID: "M", Prediction: "over", Odds: 1.5}, rules.ErrInvalidPrediction},
		{PlaceBetInput{MatchID: "M", Prediction: models.PredictionHome, Odds: -1}, rules.ErrInvalidOdds},
	}
	for _, tc := range cases {
		_, err := f.service.PlaceBet(context.Background(), user.ID, tc.in)
		assert.ErrorIs(t, err, tc.want, "input %+v", tc.in)
	}
	bets, err := f.service.ListBets(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, bets)
}

func TestSettlePendingUnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.SettlePending(context.Background(), 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPollerSettlesAllUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, name := range []string{"ivy", "jack", "kim"} {
		user := f.user(t, name, false)
		_, err := f.service.PlaceBet(ctx, user.ID, bet("P1", models.PredictionHome))
		require.NoError(t, err)
	}
	f.gateway.Finish("P1", "1 - 0")

	poller := NewPoller(f.service, f.store, time.Minute, 2)
	require.NotNil(t, poller)
	assert.Equal(t, 3, poller.poll(ctx))
	assert.Zero(t, poller.poll(ctx))
	assert.Equal(t, 3, f.gateway.Lookups("P1"))
}

func TestNewPollerDisabled(t *testing.T) {
	f := newFixture(t)
	assert.Nil(t, NewPoller(f.service, f.store, 0, 4))
	var p *Poller
	p.Start(context.Background())
}
