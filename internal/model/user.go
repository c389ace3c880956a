package model

import (
	"strings"
	"time"
)

const (
	RoleAdmin = "Admin"
	RoleUsers = "Users"
)

// Identity is a registered principal as persisted by the credential store.
type Identity struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal is the caller resolved by the access guard. It is passed by value
// so business logic can never mutate the request's identity.
type Principal struct {
	UserID    string
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (p Principal) HasRole(role string) bool {
	return strings.EqualFold(p.Role, role)
}

type AuthUser struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// TokenResponse is the login payload. Field names follow the public API
// contract, including the mixed-case timestamp keys.
type TokenResponse struct {
	AccessToken    string    `json:"access_token"`
	ExpiresIn      int64     `json:"expires_in"`
	TokenType      string    `json:"token_type"`
	CreationTime   time.Time `json:"creation_Time"`
	ExpirationTime time.Time `json:"expiration_Time"`
	UserID         string    `json:"user_id"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func IsKnownRole(role string) bool {
	return role == RoleAdmin || role == RoleUsers
}
