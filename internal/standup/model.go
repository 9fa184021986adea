package standup

import (
	"time"

	"github.com/google/uuid"

	"github.com/standupsync/standupsync/internal/day"
)

// Standup is one user's update for one calendar day. Date is always a
// UTC-midnight instant; at most one record exists per (UserID, Date).
type Standup struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	TeamID         uuid.UUID
	Date           day.Day
	YesterdayWork  []string
	TodayPlan      []string
	Blockers       []string
	SlackMessageID *string
	SubmittedAt    time.Time
	UpdatedAt      time.Time
}

// ListFilter narrows a team-scoped standup listing.
type ListFilter struct {
	TeamID uuid.UUID
	UserID *uuid.UUID
	Day    *day.Day
}

// UpdateFields carries a partial update; nil slices leave the stored list
// untouched.
type UpdateFields struct {
	YesterdayWork []string
	TodayPlan     []string
	Blockers      []string
}
