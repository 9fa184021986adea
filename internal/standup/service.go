package standup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/standupsync/standupsync/internal/day"
)

// ErrNotOwner is returned when a caller mutates a standup they do not own.
var ErrNotOwner = errors.New("standup belongs to another user")

// ErrDateRequired is returned when a create request has no date.
var ErrDateRequired = errors.New("date is required")

// Notifier posts standup content to the team's chat channel. Implementations
// must degrade to a no-op ("", nil) when the team has no connected channel;
// hard failures are reported as errors and absorbed by the service.
type Notifier interface {
	PostStandup(ctx context.Context, teamID uuid.UUID, authorName string, s *Standup) (messageID string, err error)
	UpdateStandup(ctx context.Context, teamID uuid.UUID, messageID, authorName string, s *Standup) error
}

// Service implements the standup lifecycle: team-scoped listing, creation
// with per-day uniqueness, owner-only partial update and delete, and the
// slash-command upsert paths.
type Service struct {
	repo     Repository
	notifier Notifier
}

// NewService creates a new standup Service.
func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// List returns team-scoped standups. Without an explicit user filter it
// defaults to the caller's own records.
func (s *Service) List(ctx context.Context, teamID, callerID uuid.UUID, userID *uuid.UUID, d *day.Day) ([]Standup, error) {
	filter := ListFilter{TeamID: teamID, Day: d}
	if userID != nil {
		filter.UserID = userID
	} else {
		filter.UserID = &callerID
	}
	return s.repo.List(ctx, filter)
}

// ListRange returns team-scoped standups for the inclusive day range. With no
// user filter the whole team's records are returned.
func (s *Service) ListRange(ctx context.Context, teamID uuid.UUID, start, end day.Day, userID *uuid.UUID) ([]Standup, error) {
	return s.repo.ListRange(ctx, teamID, start, end, userID)
}

// TeamByDay returns every teammate's standup for one day.
func (s *Service) TeamByDay(ctx context.Context, teamID uuid.UUID, d day.Day) ([]Standup, error) {
	return s.repo.List(ctx, ListFilter{TeamID: teamID, Day: &d})
}

// Create records a new standup for the caller. A record already existing for
// (caller, day) is a conflict; the check runs over the day interval before
// insert, and the unique index backstops concurrent attempts. On success the
// update is posted to the team channel best-effort.
func (s *Service) Create(ctx context.Context, userID, teamID uuid.UUID, authorName string, d day.Day, yesterdayWork, todayPlan, blockers []string) (*Standup, error) {
	if d.IsZero() {
		return nil, ErrDateRequired
	}

	if _, err := s.repo.FindByUserAndDay(ctx, userID, d); err == nil {
		return nil, ErrDuplicateDay
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("checking existing standup: %w", err)
	}

	st := &Standup{
		UserID:        userID,
		TeamID:        teamID,
		Date:          d,
		YesterdayWork: emptyIfNil(yesterdayWork),
		TodayPlan:     emptyIfNil(todayPlan),
		Blockers:      emptyIfNil(blockers),
	}

	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}

	s.postToChannel(ctx, st, authorName)

	return st, nil
}

// Update applies a partial update to an owned standup: nil lists are left
// untouched, provided lists are replaced wholesale. If the record carries a
// channel message reference, the message is edited best-effort.
func (s *Service) Update(ctx context.Context, callerID uuid.UUID, authorName string, id uuid.UUID, fields UpdateFields) (*Standup, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if st.UserID != callerID {
		return nil, ErrNotOwner
	}

	if fields.YesterdayWork != nil {
		st.YesterdayWork = fields.YesterdayWork
	}
	if fields.TodayPlan != nil {
		st.TodayPlan = fields.TodayPlan
	}
	if fields.Blockers != nil {
		st.Blockers = fields.Blockers
	}
	st.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, st); err != nil {
		return nil, err
	}

	if st.SlackMessageID != nil {
		if err := s.notifier.UpdateStandup(ctx, st.TeamID, *st.SlackMessageID, authorName, st); err != nil {
			slog.Warn("failed to update slack message", "error", err, "standupId", st.ID)
		}
	}

	return st, nil
}

// Delete removes an owned standup.
func (s *Service) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if st.UserID != callerID {
		return ErrNotOwner
	}

	return s.repo.Delete(ctx, id)
}

// UpsertToday records a slash-command submission for the current UTC day. If
// a standup already exists, only the segments present in the command (non-nil
// lists) overwrite stored values; otherwise a new record is created and
// posted to the channel. It reports whether a record was created.
func (s *Service) UpsertToday(ctx context.Context, userID, teamID uuid.UUID, authorName string, yesterdayWork, todayPlan, blockers []string) (created bool, err error) {
	today := day.Today()

	st, err := s.repo.FindByUserAndDay(ctx, userID, today)
	if err == nil {
		if yesterdayWork != nil {
			st.YesterdayWork = yesterdayWork
		}
		if todayPlan != nil {
			st.TodayPlan = todayPlan
		}
		if blockers != nil {
			st.Blockers = blockers
		}
		st.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, st); err != nil {
			return false, err
		}

		if st.SlackMessageID != nil {
			if err := s.notifier.UpdateStandup(ctx, st.TeamID, *st.SlackMessageID, authorName, st); err != nil {
				slog.Warn("failed to update slack message", "error", err, "standupId", st.ID)
			}
		}
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, fmt.Errorf("checking existing standup: %w", err)
	}

	st = &Standup{
		UserID:        userID,
		TeamID:        teamID,
		Date:          today,
		YesterdayWork: emptyIfNil(yesterdayWork),
		TodayPlan:     emptyIfNil(todayPlan),
		Blockers:      emptyIfNil(blockers),
	}

	if err := s.repo.Create(ctx, st); err != nil {
		return false, err
	}

	s.postToChannel(ctx, st, authorName)

	return true, nil
}

// AppendTomorrowPlan appends one running note to tomorrow's plan, creating
// the future record when absent.
func (s *Service) AppendTomorrowPlan(ctx context.Context, userID, teamID uuid.UUID, note string) error {
	tomorrow := day.Today().Next()

	st, err := s.repo.FindByUserAndDay(ctx, userID, tomorrow)
	if err == nil {
		st.TodayPlan = append(st.TodayPlan, note)
		st.UpdatedAt = time.Now().UTC()
		return s.repo.Update(ctx, st)
	}
	if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("checking tomorrow's standup: %w", err)
	}

	st = &Standup{
		UserID:        userID,
		TeamID:        teamID,
		Date:          tomorrow,
		YesterdayWork: []string{},
		TodayPlan:     []string{note},
		Blockers:      []string{},
	}
	return s.repo.Create(ctx, st)
}

// postToChannel posts a freshly created standup to the team channel and
// stores the returned message reference. Failures are logged and absorbed;
// the database write is never rolled back.
func (s *Service) postToChannel(ctx context.Context, st *Standup, authorName string) {
	messageID, err := s.notifier.PostStandup(ctx, st.TeamID, authorName, st)
	if err != nil {
		slog.Warn("failed to post standup to slack", "error", err, "standupId", st.ID)
		return
	}
	if messageID == "" {
		return
	}

	if err := s.repo.SetSlackMessageID(ctx, st.ID, messageID); err != nil {
		slog.Warn("failed to store slack message id", "error", err, "standupId", st.ID)
		return
	}
	st.SlackMessageID = &messageID
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
