package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/standupsync/standupsync/internal/user"
)

// ErrInvalidCredentials is returned when the email or password is wrong, or
// the account is deactivated.
var ErrInvalidCredentials = errors.New("email or password is incorrect")

// ErrRefreshMismatch is returned when a refresh token verifies but is not the
// one currently stored for the user (rotated away or logged out).
var ErrRefreshMismatch = errors.New("refresh token mismatch")

// Service provides authentication operations: password login, token refresh
// with rotation, logout, and access-token resolution.
type Service struct {
	userRepo user.Repository
	tokens   *TokenManager
}

// NewService creates a new auth Service.
func NewService(userRepo user.Repository, tokens *TokenManager) *Service {
	return &Service{userRepo: userRepo, tokens: tokens}
}

// Login verifies the password, touches lastLoginAt, and issues a fresh token
// pair. The refresh token is stored on the user record.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, *TokenPair, error) {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("looking up user: %w", err)
	}

	if !u.IsActive {
		return nil, nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.rotate(ctx, u)
	if err != nil {
		return nil, nil, err
	}

	if err := s.userRepo.TouchLastLogin(ctx, u.ID); err != nil {
		slog.Warn("failed to record last login", "error", err, "userId", u.ID)
	}

	return u, pair, nil
}

// Refresh verifies the presented refresh token, checks it is the one stored
// for the user, and rotates both tokens.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*user.User, *TokenPair, error) {
	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, nil, err
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, fmt.Errorf("looking up user: %w", err)
	}

	if u.RefreshToken == nil || *u.RefreshToken != refreshToken {
		return nil, nil, ErrRefreshMismatch
	}

	pair, err := s.rotate(ctx, u)
	if err != nil {
		return nil, nil, err
	}

	return u, pair, nil
}

// Logout clears the stored refresh token for the account with the given
// email, invalidating any outstanding refresh token.
func (s *Service) Logout(ctx context.Context, email string) error {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("looking up user: %w", err)
	}
	return s.userRepo.UpdateRefreshToken(ctx, u.ID, nil)
}

// Authenticate resolves a bearer access token to an Identity. Unknown
// subjects and deactivated accounts fail authentication.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*Identity, error) {
	userID, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, err
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !u.IsActive {
		return nil, ErrInvalidToken
	}

	return &Identity{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   u.Role,
		TeamID: u.TeamID,
	}, nil
}

func (s *Service) rotate(ctx context.Context, u *user.User) (*TokenPair, error) {
	access, err := s.tokens.IssueAccess(u.ID)
	if err != nil {
		return nil, err
	}

	refresh, err := s.tokens.IssueRefresh(u.ID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateRefreshToken(ctx, u.ID, &refresh); err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}
	u.RefreshToken = &refresh

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
