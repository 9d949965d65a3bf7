package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/matchday-bet/matchday/internal/config"
	"github.com/matchday-bet/matchday/internal/events"
	apphttp "github.com/matchday-bet/matchday/internal/http"
	"github.com/matchday-bet/matchday/internal/models"
	"github.com/matchday-bet/matchday/internal/notify"
	"github.com/matchday-bet/matchday/internal/security"
	"github.com/matchday-bet/matchday/internal/session"
	"github.com/matchday-bet/matchday/internal/store"
	log "github.com/sirupsen/logrus"
)

// SessionTokenHeader returns the session token to clients that cannot use cookies.
const SessionTokenHeader = "X-Session-Token"

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	store          store.Store
	sessions       session.Store
	jwtCfg         config.JWTConfig
	serverCfg      config.ServerConfig
	initialBalance int64
	notifier       notify.Notifier
	publisher      events.Publisher
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(st store.Store, sessions session.Store, jwtCfg config.JWTConfig, serverCfg config.ServerConfig, initialBalance int64, notifier notify.Notifier, publisher events.Publisher) *AuthHandler {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &AuthHandler{
		store:          st,
		sessions:       sessions,
		jwtCfg:         jwtCfg,
		serverCfg:      serverCfg,
		initialBalance: initialBalance,
		notifier:       notifier,
		publisher:      publisher,
	}
}

// registerRequest defines the request body for user registration.
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account with the initial balance and starts a session.
func (h *AuthHandler) Register(c *gin.Context) {
	var body registerRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input"})
		return
	}
	username := strings.TrimSpace(body.Username)
	email := strings.TrimSpace(body.Email)
	if username == "" || email == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input"})
		return
	}
	if _, errAddr := mail.ParseAddress(email); errAddr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input"})
		return
	}

	hash, errHash := security.HashPassword(body.Password)
	if errHash != nil {
		respondError(c, errHash, "hash password")
		return
	}
	user := &models.User{
		Username: username,
		Email:    email,
		Password: hash,
		Balance:  h.initialBalance,
	}
	if errCreate := h.store.CreateUser(c.Request.Context(), user); errCreate != nil {
		respondError(c, errCreate, "register")
		return
	}
	// The account is committed at this point; a failed session only means the client logs in.
	if errSession := h.startSession(c, user); errSession != nil {
		log.WithError(errSession).WithFields(log.Fields{"user_id": user.ID, "username": user.Username}).
			Warn("register: account created but session could not be started")
	}

	h.notifier.UserRegistered(c.Request.Context(), user)
	events.Emit(c.Request.Context(), h.publisher, events.New(events.TypeUserRegistered, user.ID, map[string]any{
		"username": user.Username,
	}))
	c.JSON(http.StatusCreated, user)
}

// loginRequest defines the request body for login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks credentials and starts a session.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username and password are required"})
		return
	}
	username := strings.TrimSpace(body.Username)
	if username == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username and password are required"})
		return
	}

	user, errFind := h.store.GetUserByUsername(c.Request.Context(), username)
	if errFind != nil {
		if errors.Is(errFind, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		respondError(c, errFind, "login")
		return
	}
	if !security.CheckPassword(user.Password, body.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}
	if errSession := h.startSession(c, user); errSession != nil {
		respondError(c, errSession, "start session")
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout revokes the current session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if sessionID := c.GetString(apphttp.ContextSessionID); sessionID != "" {
		if errRevoke := h.sessions.Revoke(c.Request.Context(), sessionID); errRevoke != nil {
			log.WithError(errRevoke).Warn("logout: revoke session failed")
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.serverCfg.CookieName, "", -1, "/", "", h.serverCfg.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	user := getUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// startSession registers a session, signs its token and hands it to the client.
func (h *AuthHandler) startSession(c *gin.Context, user *models.User) error {
	sessionID, errCreate := h.sessions.Create(c.Request.Context(), user.ID, h.jwtCfg.Expiry)
	if errCreate != nil {
		return errCreate
	}
	token, errToken := security.GenerateToken(h.jwtCfg.Secret, user.ID, user.Username, sessionID, h.jwtCfg.Expiry)
	if errToken != nil {
		return errToken
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.serverCfg.CookieName, token, int(h.jwtCfg.Expiry.Seconds()), "/", "", h.serverCfg.CookieSecure, true)
	c.Header(SessionTokenHeader, token)
	return nil
}
