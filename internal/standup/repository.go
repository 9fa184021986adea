package standup

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/standupsync/standupsync/internal/day"
)

// ErrNotFound is returned when a standup record is not found.
var ErrNotFound = errors.New("standup not found")

// ErrDuplicateDay is returned when a standup already exists for the same
// user and calendar day.
var ErrDuplicateDay = errors.New("standup already exists for this date")

// Repository provides operations on the standups table. All day and range
// predicates are half-open UTC intervals derived from day.Day.
type Repository interface {
	Create(ctx context.Context, s *Standup) error
	GetByID(ctx context.Context, id uuid.UUID) (*Standup, error)
	List(ctx context.Context, filter ListFilter) ([]Standup, error)
	ListRange(ctx context.Context, teamID uuid.UUID, start, end day.Day, userID *uuid.UUID) ([]Standup, error)
	FindByUserAndDay(ctx context.Context, userID uuid.UUID, d day.Day) (*Standup, error)
	Update(ctx context.Context, s *Standup) error
	SetSlackMessageID(ctx context.Context, id uuid.UUID, messageID string) error
	Delete(ctx context.Context, id uuid.UUID) error
}
