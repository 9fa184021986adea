package teamsettings

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a team has no settings record.
var ErrNotFound = errors.New("team settings not found")

// Repository provides operations on the team_settings table.
type Repository interface {
	GetByTeam(ctx context.Context, teamID uuid.UUID) (*Settings, error)
	Upsert(ctx context.Context, s *Settings) error
	Disconnect(ctx context.Context, teamID uuid.UUID) error
}
