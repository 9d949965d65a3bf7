package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/matchday-bet/matchday/internal/config"
	dbpkg "github.com/matchday-bet/matchday/internal/db"
	"github.com/matchday-bet/matchday/internal/models"
	"github.com/matchday-bet/matchday/internal/session"
	"github.com/matchday-bet/matchday/internal/store"
)

type flakySessions struct {
	session.Store
	failCreate bool
}

func (f *flakySessions) Create(ctx context.Context, userID uint64, ttl time.Duration) (string, error) {
	if f.failCreate {
		return "", errors.New("session backend unavailable")
	}
	return f.Store.Create(ctx, userID, ttl)
}

func newAuthHandlerForTest(t *testing.T, sessions session.Store) *AuthHandler {
	t.Helper()
	conn, err := dbpkg.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = dbpkg.Close(conn) })
	if errMigrate := dbpkg.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	cfg := config.Default()
	cfg.JWT.Secret = "auth-handler-secret"
	return NewAuthHandler(store.NewGormStore(conn), sessions, cfg.JWT, cfg.Server, 5000, nil, nil)
}

func postJSON(t *testing.T, handler gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	handler(c)
	return w
}

func TestRegisterKeepsAccountWhenSessionFails(t *testing.T) {
	sessions := &flakySessions{Store: session.NewMemoryStore(), failCreate: true}
	h := newAuthHandlerForTest(t, sessions)
	body := `{"username":"kemi","email":"kemi@example.com","password":"pa55word"}`

	w := postJSON(t, h.Register, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 for a committed account, got %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get(SessionTokenHeader) != "" {
		t.Fatalf("no session token expected when the session store fails")
	}
	var user models.User
	if errDecode := json.Unmarshal(w.Body.Bytes(), &user); errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	if user.ID == 0 || user.Balance != 5000 {
		t.Fatalf("unexpected user %+v", user)
	}

	sessions.failCreate = false
	loginW := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(loginW)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewBufferString(`{"username":"kemi","password":"pa55word"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Login(c)
	if loginW.Code != http.StatusOK {
		t.Fatalf("expected login to succeed after a sessionless register, got %d: %s", loginW.Code, loginW.Body.String())
	}
	if loginW.Header().Get(SessionTokenHeader) == "" {
		t.Fatalf("expected a session token from login")
	}
}

func TestRegisterStartsSession(t *testing.T) {
	h := newAuthHandlerForTest(t, session.NewMemoryStore())
	w := postJSON(t, h.Register, `{"username":"lola","email":"lola@example.com","password":"pa55word"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get(SessionTokenHeader) == "" {
		t.Fatalf("expected session token header")
	}
	if len(w.Result().Cookies()) == 0 {
		t.Fatalf("expected session cookie")
	}
}
