package team

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrTeamNotFound is returned when a team record is not found.
var ErrTeamNotFound = errors.New("team not found")

// Repository provides CRUD operations on the teams table.
type Repository interface {
	Create(ctx context.Context, team *Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*Team, error)
	List(ctx context.Context) ([]Team, error)
	SetAdmin(ctx context.Context, id, adminID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}
