package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"support-backend-go/config"
	"support-backend-go/models"
)

// TokenTTL bounds how long a session token stays valid.
const TokenTTL = 24 * time.Hour

// timeNow is a test seam for the token clock.
var timeNow = time.Now

// GenerateToken produces a signed session token for the given user.
// The payload carries the username, a per-login session id and the
// issue time; the token expires TokenTTL after issuance.
func GenerateToken(username, sessionID string) (string, error) {
	now := timeNow()

	claims := models.Claims{
		Username:  username,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString([]byte(config.SessionSecret))
	if err != nil {
		return "", err
	}

	return signedToken, nil
}

// ValidateToken parses and verifies a session token. It fails closed on
// any parse error, a bad signature, or a token older than TokenTTL.
func ValidateToken(tokenString string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.SessionSecret), nil
	}, jwt.WithTimeFunc(timeNow), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*models.Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
