package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MaxUsernameLength = 80
	// bcrypt ignores input past 72 bytes and the library refuses it outright.
	MaxPasswordBytes = 72
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthTokens struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// UserProfile is the public view returned by /api/user/me.
type UserProfile struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}
