package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned when a token fails parsing, signature
// verification, or has expired.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the JWT claims carried by both access and refresh tokens. The
// subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenManager signs and verifies the two token families with separate HMAC
// secrets so an access token can never pass as a refresh token.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenManager creates a TokenManager.
func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssueAccess signs a short-lived access token for the user.
func (m *TokenManager) IssueAccess(userID uuid.UUID) (string, error) {
	return m.issue(userID, m.accessSecret, m.accessTTL)
}

// IssueRefresh signs a long-lived refresh token for the user.
func (m *TokenManager) IssueRefresh(userID uuid.UUID) (string, error) {
	return m.issue(userID, m.refreshSecret, m.refreshTTL)
}

func (m *TokenManager) issue(userID uuid.UUID, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// VerifyAccess parses an access token and returns the subject user id.
func (m *TokenManager) VerifyAccess(tokenString string) (uuid.UUID, error) {
	return m.verify(tokenString, m.accessSecret)
}

// VerifyRefresh parses a refresh token and returns the subject user id.
func (m *TokenManager) VerifyRefresh(tokenString string) (uuid.UUID, error) {
	return m.verify(tokenString, m.refreshSecret)
}

func (m *TokenManager) verify(tokenString string, secret []byte) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	return id, nil
}
