package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/matchday-bet/matchday/internal/security"
	"github.com/matchday-bet/matchday/internal/session"
	"github.com/matchday-bet/matchday/internal/store"
	log "github.com/sirupsen/logrus"
)

// Context keys set by SessionAuthMiddleware.
const (
	ContextUserID    = "userID"
	ContextSessionID = "sessionID"
	ContextUser      = "user"
)

// SessionAuth holds what the session middleware needs to authenticate a request.
type SessionAuth struct {
	Secret     string
	CookieName string
	Sessions   session.Store
	Store      store.Store
}

// SessionToken returns the session JWT from the cookie, falling back to a bearer header.
func SessionToken(c *gin.Context, cookieName string) string {
	if cookieName != "" {
		if cookie, errCookie := c.Cookie(cookieName); errCookie == nil && strings.TrimSpace(cookie) != "" {
			return strings.TrimSpace(cookie)
		}
	}
	authHeader := c.GetHeader("Authorization")
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return ""
	}
	return strings.TrimSpace(token)
}

// SessionAuthMiddleware authenticates the session JWT, checks that its session is still
// registered and loads the user into the context. A session pointing at a deleted user
// is revoked.
func SessionAuthMiddleware(auth SessionAuth) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c, auth.CookieName)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		claims, errJWT := security.ParseToken(auth.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		ctx := c.Request.Context()
		sessionID := claims.SessionID()
		userID, errLookup := auth.Sessions.Lookup(ctx, sessionID)
		if errLookup != nil {
			if !errors.Is(errLookup, session.ErrNotFound) {
				log.WithError(errLookup).Error("session auth: lookup failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		if userID != claims.UserID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		user, errUser := auth.Store.GetUser(ctx, userID)
		if errUser != nil {
			if errors.Is(errUser, store.ErrNotFound) {
				if errRevoke := auth.Sessions.Revoke(ctx, sessionID); errRevoke != nil {
					log.WithError(errRevoke).Warn("session auth: revoke stale session failed")
				}
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found"})
				return
			}
			log.WithError(errUser).Error("session auth: load user failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextSessionID, sessionID)
		c.Set(ContextUser, user)
		c.Next()
	}
}
