package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims defines the structure of the session token claims
type Claims struct {
	Username  string `json:"username"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}
