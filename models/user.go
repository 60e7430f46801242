package models

// Credentials structure for login request
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// User structure represents a credential record in the store
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"` // hex sha256 (legacy) or bcrypt
}
