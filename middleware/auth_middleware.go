package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"support-backend-go/services"
)

// extractToken finds the session token on the request. The token travels
// in the "token" query parameter so it survives page reloads; a Bearer
// Authorization header is accepted as well.
func extractToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return ""
	}
	return tokenString
}

// AuthMiddleware validates the session token and loads its claims into
// the request context. Every failure collapses to the same response so
// the caller cannot tell which part was wrong.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			c.Abort()
			return
		}

		claims, err := services.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			c.Abort()
			return
		}

		// A token outlives its user otherwise: re-check the username
		// against the store so removed users lose access immediately.
		if services.Users == nil || !services.Users.Exists(claims.Username) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Set("username", claims.Username)
		c.Set("sessionID", claims.SessionID)

		c.Next()
	}
}
