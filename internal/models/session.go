package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// SessionClaims are the JWT claims carried inside a session cookie.
type SessionClaims struct {
	UserID string   `json:"uid"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}

// SessionState is returned from GET /auth/session.
type SessionState struct {
	Authenticated bool      `json:"authenticated"`
	User          *UserInfo `json:"user,omitempty"`
	ExpiresAt     time.Time `json:"expires_at,omitempty"`
	Source        string    `json:"source,omitempty"`
}

// SessionActionRequest is the POST /auth/session payload.
type SessionActionRequest struct {
	Action string `json:"action" validate:"required,oneof=refresh"`
}
