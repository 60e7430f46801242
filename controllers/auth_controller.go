package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"support-backend-go/config"
	"support-backend-go/models"
	"support-backend-go/services"
)

// Login verifies the submitted credentials and returns a session token.
// Wrong username and wrong password produce the same response.
func Login(c *gin.Context) {
	var credentials models.Credentials
	if err := c.ShouldBindJSON(&credentials); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if !services.Users.Verify(credentials.Username, credentials.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	sessionID := uuid.NewString()

	token, err := services.GenerateToken(credentials.Username, sessionID)
	if err != nil {
		config.Log.Error("Error generating session token: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Login successful",
		"token":      token,
		"username":   credentials.Username,
		"session_id": sessionID,
	})
}

// GetCurrentUser returns the logged-in user's info from the token claims
func GetCurrentUser(c *gin.Context) {
	claims, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	userClaims := claims.(*models.Claims)

	c.JSON(http.StatusOK, gin.H{
		"username":   userClaims.Username,
		"session_id": userClaims.SessionID,
		"issued_at":  userClaims.IssuedAt,
	})
}

// Logout clears the session's history. The token itself is client-held
// and simply discarded; it ages out on its own.
func Logout(c *gin.Context) {
	claims, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	userClaims := claims.(*models.Claims)
	services.History.Clear(userClaims.SessionID)

	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}
