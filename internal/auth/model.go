package auth

import (
	"github.com/google/uuid"
)

// Identity is stored in the request context after authentication.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Name   string
	Role   string
	TeamID uuid.UUID
}

// TokenPair carries a freshly issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
