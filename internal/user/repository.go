package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when a user record is not found.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken is returned when creating a user with an email that is
// already registered.
var ErrEmailTaken = errors.New("email already registered")

// Repository provides operations on the users table.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetBySlackUserID(ctx context.Context, slackUserID string) (*User, error)
	List(ctx context.Context) ([]User, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
	UpdateActive(ctx context.Context, id uuid.UUID, isActive bool) error
	UpdateSlackUserID(ctx context.Context, id uuid.UUID, slackUserID string) error
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountAll(ctx context.Context) (int, error)
}
