package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/matchday-bet/matchday/internal/security"
)

// Admin credential headers. A bearer header is accepted in place of AdminTokenHeader.
const (
	AdminTokenHeader = "X-Admin-Token"
	AdminOTPHeader   = "X-Admin-OTP"
)

// AdminTokenMiddleware guards the admin API with a static token and, when totpSecret is
// set, a current TOTP code. An empty configured token disables the admin API.
func AdminTokenMiddleware(token, totpSecret string) gin.HandlerFunc {
	expected := strings.TrimSpace(token)
	secret := strings.TrimSpace(totpSecret)
	return func(c *gin.Context) {
		if expected == "" {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "admin api disabled"})
			return
		}
		presented := strings.TrimSpace(c.GetHeader(AdminTokenHeader))
		if presented == "" {
			authHeader := c.GetHeader("Authorization")
			if bearer := strings.TrimPrefix(authHeader, "Bearer "); bearer != authHeader {
				presented = strings.TrimSpace(bearer)
			}
		}
		if !security.TokenEqual(expected, presented) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		if secret != "" && !security.ValidateTOTP(c.GetHeader(AdminOTPHeader), secret) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid code"})
			return
		}
		c.Next()
	}
}
