package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	dbpkg "github.com/matchday-bet/matchday/internal/db"
	"github.com/matchday-bet/matchday/internal/models"
	"github.com/matchday-bet/matchday/internal/security"
	"github.com/matchday-bet/matchday/internal/session"
	"github.com/matchday-bet/matchday/internal/store"
	"github.com/pquerna/otp/totp"
)

const testSecret = "middleware-secret"

type stubSessions struct {
	userID    uint64
	err       error
	revoked   []string
	revokeErr error
}

func (s *stubSessions) Create(context.Context, uint64, time.Duration) (string, error) {
	return session.NewID(), nil
}

func (s *stubSessions) Lookup(context.Context, string) (uint64, error) {
	return s.userID, s.err
}

func (s *stubSessions) Revoke(_ context.Context, sessionID string) error {
	s.revoked = append(s.revoked, sessionID)
	return s.revokeErr
}

func newMiddlewareStore(t *testing.T) *store.GormStore {
	t.Helper()
	conn, errOpen := dbpkg.Open(":memory:")
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := dbpkg.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	t.Cleanup(func() { _ = dbpkg.Close(conn) })
	return store.NewGormStore(conn)
}

func runRequestWithMiddleware(t *testing.T, middleware gin.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware)
	router.GET("/*path", func(c *gin.Context) {
		if _, ok := c.Get(ContextUser); !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.Status(http.StatusNoContent)
	})

	responseRecorder := httptest.NewRecorder()
	router.ServeHTTP(responseRecorder, req)
	return responseRecorder
}

func bearerRequest(t *testing.T, userID uint64, sessionID string) *http.Request {
	t.Helper()
	token, errToken := security.GenerateToken(testSecret, userID, "player", sessionID, time.Hour)
	if errToken != nil {
		t.Fatalf("generate token: %v", errToken)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestSessionAuthMiddlewareRejectsMissingToken(t *testing.T) {
	auth := SessionAuth{Secret: testSecret, CookieName: "sid", Sessions: &stubSessions{}, Store: newMiddlewareStore(t)}

	responseRecorder := runRequestWithMiddleware(t, SessionAuthMiddleware(auth), httptest.NewRequest(http.MethodGet, "/api/me", nil))

	if responseRecorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", responseRecorder.Code)
	}
}

func TestSessionAuthMiddlewareRejectsUnknownSession(t *testing.T) {
	auth := SessionAuth{Secret: testSecret, Sessions: &stubSessions{err: session.ErrNotFound}, Store: newMiddlewareStore(t)}

	responseRecorder := runRequestWithMiddleware(t, SessionAuthMiddleware(auth), bearerRequest(t, 1, "s-1"))

	if responseRecorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", responseRecorder.Code)
	}
}

func TestSessionAuthMiddlewareMapsSessionStoreFailureToInternalError(t *testing.T) {
	auth := SessionAuth{Secret: testSecret, Sessions: &stubSessions{err: errors.New("redis down")}, Store: newMiddlewareStore(t)}

	responseRecorder := runRequestWithMiddleware(t, SessionAuthMiddleware(auth), bearerRequest(t, 1, "s-1"))

	if responseRecorder.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", responseRecorder.Code)
	}
}

func TestSessionAuthMiddlewareRejectsSessionOfAnotherUser(t *testing.T) {
	auth := SessionAuth{Secret: testSecret, Sessions: &stubSessions{userID: 2}, Store: newMiddlewareStore(t)}

	responseRecorder := runRequestWithMiddleware(t, SessionAuthMiddleware(auth), bearerRequest(t, 1, "s-1"))

	if responseRecorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", responseRecorder.Code)
	}
}

func TestSessionAuthMiddlewareRevokesSessionOfDeletedUser(t *testing.T) {
	sessions := &stubSessions{userID: 99}
	auth := SessionAuth{Secret: testSecret, Sessions: sessions, Store: newMiddlewareStore(t)}

	responseRecorder := runRequestWithMiddleware(t, SessionAuthMiddleware(auth), bearerRequest(t, 99, "s-stale"))

	if responseRecorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", responseRecorder.Code)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "s-stale" {
		t.Fatalf("expected stale session revoked, got %v", sessions.revoked)
	}
}

func TestSessionAuthMiddlewareLoadsUser(t *testing.T) {
	st := newMiddlewareStore(t)
	user := &models.User{Username: "player", Email: "player@example.com", Password: "hash", Balance: 5000}
	if errCreate := st.CreateUser(context.Background(), user); errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	auth := SessionAuth{Secret: testSecret, Sessions: &stubSessions{userID: user.ID}, Store: st}

	responseRecorder := runRequestWithMiddleware(t, SessionAuthMiddleware(auth), bearerRequest(t, user.ID, "s-1"))

	if responseRecorder.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", responseRecorder.Code)
	}
}

func TestSessionTokenPrefersCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.AddCookie(&http.Cookie{Name: "sid", Value: "from-cookie"})
	c.Request.Header.Set("Authorization", "Bearer from-header")

	if got := SessionToken(c, "sid"); got != "from-cookie" {
		t.Fatalf("expected cookie token, got %q", got)
	}
	if got := SessionToken(c, "other"); got != "from-header" {
		t.Fatalf("expected header token, got %q", got)
	}
	c.Request.Header.Set("Authorization", "Basic abc")
	if got := SessionToken(c, "other"); got != "" {
		t.Fatalf("expected no token, got %q", got)
	}
}

func TestAdminTokenMiddleware(t *testing.T) {
	cases := []struct {
		name       string
		configured string
		header     string
		want       int
	}{
		{name: "disabled", configured: "", header: "anything", want: http.StatusNotFound},
		{name: "missing", configured: "tok", header: "", want: http.StatusUnauthorized},
		{name: "wrong", configured: "tok", header: "nope", want: http.StatusUnauthorized},
		{name: "ok", configured: "tok", header: "tok", want: http.StatusOK},
	}
	for _, tc := range cases {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.Use(AdminTokenMiddleware(tc.configured, ""))
		router.GET("/api/admin/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
		if tc.header != "" {
			req.Header.Set(AdminTokenHeader, tc.header)
		}
		responseRecorder := httptest.NewRecorder()
		router.ServeHTTP(responseRecorder, req)
		if responseRecorder.Code != tc.want {
			t.Fatalf("%s: expected status %d, got %d", tc.name, tc.want, responseRecorder.Code)
		}
	}
}

func TestAdminTokenMiddlewareRequiresTOTPWhenConfigured(t *testing.T) {
	secret, _, err := security.GenerateTOTPSecret("matchday", "reviewer")
	if err != nil {
		t.Fatalf("generate secret: %v", err)
	}
	code, err := totp.GenerateCode(secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(AdminTokenMiddleware("tok", secret))
	router.GET("/api/admin/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := []struct {
		name  string
		token string
		otp   string
		want  int
	}{
		{name: "token only", token: "tok", want: http.StatusUnauthorized},
		{name: "wrong code", token: "tok", otp: "000000x", want: http.StatusUnauthorized},
		{name: "code without token", otp: code, want: http.StatusUnauthorized},
		{name: "token and code", token: "tok", otp: code, want: http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
		if tc.token != "" {
			req.Header.Set(AdminTokenHeader, tc.token)
		}
		if tc.otp != "" {
			req.Header.Set(AdminOTPHeader, tc.otp)
		}
		responseRecorder := httptest.NewRecorder()
		router.ServeHTTP(responseRecorder, req)
		if responseRecorder.Code != tc.want {
			t.Fatalf("%s: expected status %d, got %d", tc.name, tc.want, responseRecorder.Code)
		}
	}
}
