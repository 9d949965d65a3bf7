package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	dbpkg "github.com/matchday-bet/matchday/internal/db"
	"github.com/matchday-bet/matchday/internal/events"
	apphttp "github.com/matchday-bet/matchday/internal/http"
	"github.com/matchday-bet/matchday/internal/models"
	"github.com/matchday-bet/matchday/internal/settings"
	"github.com/matchday-bet/matchday/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "admin-token"

type adminEnv struct {
	router   *gin.Engine
	store    *store.GormStore
	settings *settings.Snapshot
	recorder *events.Recorder
}

func newAdminEnv(t *testing.T, token string) *adminEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	conn, err := dbpkg.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, dbpkg.Migrate(conn))
	t.Cleanup(func() { _ = dbpkg.Close(conn) })

	st := store.NewGormStore(conn)
	recorder := &events.Recorder{}
	router := gin.New()
	overrides := settings.NewSnapshot(conn)
	RegisterAdminRoutes(router, Deps{Settings: overrides, Store: st, Publisher: recorder, Token: token})
	return &adminEnv{router: router, store: st, settings: overrides, recorder: recorder}
}

func (e *adminEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(apphttp.AdminTokenHeader, token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *adminEnv) user(t *testing.T, username string, balance int64) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "hash", Balance: balance}
	require.NoError(t, e.store.CreateUser(context.Background(), user))
	return user
}

func TestAdminRequiresToken(t *testing.T) {
	env := newAdminEnv(t, testToken)
	w := env.do(t, http.MethodPost, "/api/admin/users/1/vip", "", `{"isVip":true}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = env.do(t, http.MethodPost, "/api/admin/users/1/vip", "wrong", `{"isVip":true}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	disabled := newAdminEnv(t, "")
	w = disabled.do(t, http.MethodPost, "/api/admin/users/1/vip", "", `{"isVip":true}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminAcceptsBearerToken(t *testing.T) {
	env := newAdminEnv(t, testToken)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/settings", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminSetVIP(t *testing.T) {
	env := newAdminEnv(t, testToken)
	user := env.user(t, "alice", 5000)

	w := env.do(t, http.MethodPost, "/api/admin/users/999/vip", testToken, `{"isVip":true}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/admin/users/1/vip", testToken, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/admin/users/1/vip", testToken, `{"isVip":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.True(t, updated.IsVIP)
	assert.Equal(t, int64(5000), updated.Balance)
	assert.Equal(t, []string{events.TypeVIPActivated}, env.recorder.Types())

	reloaded, err := env.store.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsVIP)
}

func TestAdminUpdateWithdrawalStatus(t *testing.T) {
	env := newAdminEnv(t, testToken)
	user := env.user(t, "bob", 50000)

	var withdrawal, fee models.Transaction
	err := env.store.WithUser(context.Background(), user.ID, func(tx store.Tx, u *models.User) error {
		withdrawal = models.Transaction{Type: models.TransactionTypeWithdrawal, Amount: -30000, Status: models.TransactionStatusPending}
		if errPost := tx.Post(&withdrawal); errPost != nil {
			return errPost
		}
		fee = models.Transaction{Type: models.TransactionTypeFee, Amount: -3000}
		return tx.Post(&fee)
	})
	require.NoError(t, err)

	w := env.do(t, http.MethodPatch, "/api/admin/transactions/1", testToken, `{"status":"pending"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPatch, "/api/admin/transactions/"+jsonID(fee.ID), testToken, `{"status":"completed"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPatch, "/api/admin/transactions/"+jsonID(withdrawal.ID), testToken, `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, models.TransactionStatusCompleted, updated.Status)

	w = env.do(t, http.MethodPatch, "/api/admin/transactions/"+jsonID(withdrawal.ID), testToken, `{"status":"failed"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPatch, "/api/admin/transactions/4242", testToken, `{"status":"failed"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminPutSetting(t *testing.T) {
	env := newAdminEnv(t, testToken)

	w := env.do(t, http.MethodPut, "/api/admin/settings/NOT_A_KEY", testToken, `{"value":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/api/admin/settings/"+settings.VIPActivationCodeKey, testToken, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/api/admin/settings/"+settings.VIPActivationCodeKey, testToken, `{"value":"ROTATED-1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ROTATED-1", env.settings.String(settings.VIPActivationCodeKey, "fallback"))

	w = env.do(t, http.MethodPut, "/api/admin/settings/"+settings.WithdrawalFeeKey, testToken, `{"value":2500}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2500), env.settings.Int64(settings.WithdrawalFeeKey, 3000))

	w = env.do(t, http.MethodGet, "/api/admin/settings", testToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	assert.Len(t, rows, 2)
}

func jsonID(id uint64) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}
