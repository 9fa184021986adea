package standup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/standupsync/standupsync/internal/day"
)

const standupColumns = `id, user_id, team_id, date, yesterday_work, today_plan,
	blockers, slack_message_id, submitted_at, updated_at`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

func scanStandup(row pgx.Row, s *Standup) error {
	var date time.Time
	err := row.Scan(
		&s.ID, &s.UserID, &s.TeamID, &date,
		&s.YesterdayWork, &s.TodayPlan, &s.Blockers,
		&s.SlackMessageID, &s.SubmittedAt, &s.UpdatedAt,
	)
	if err != nil {
		return err
	}
	s.Date = day.Of(date)
	if s.YesterdayWork == nil {
		s.YesterdayWork = []string{}
	}
	if s.TodayPlan == nil {
		s.TodayPlan = []string{}
	}
	if s.Blockers == nil {
		s.Blockers = []string{}
	}
	return nil
}

// Create inserts a new standup record. The (user_id, date) unique index maps
// to ErrDuplicateDay.
func (r *PostgresRepository) Create(ctx context.Context, s *Standup) error {
	query := `
		INSERT INTO standups (user_id, team_id, date, yesterday_work, today_plan, blockers)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, submitted_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		s.UserID,
		s.TeamID,
		s.Date.Time(),
		s.YesterdayWork,
		s.TodayPlan,
		s.Blockers,
	).Scan(&s.ID, &s.SubmittedAt, &s.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateDay
		}
		return fmt.Errorf("inserting standup: %w", err)
	}

	return nil
}

// GetByID retrieves a single standup by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Standup, error) {
	query := `SELECT ` + standupColumns + ` FROM standups WHERE id = $1`

	var s Standup
	if err := scanStandup(r.pool.QueryRow(ctx, query, id), &s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying standup: %w", err)
	}

	return &s, nil
}

// List retrieves team-scoped standups, optionally narrowed to one user and
// one day, newest first.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]Standup, error) {
	query := `SELECT ` + standupColumns + ` FROM standups WHERE team_id = $1`
	args := []any{filter.TeamID}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.Day != nil {
		start, end := filter.Day.Interval()
		args = append(args, start, end)
		query += fmt.Sprintf(" AND date >= $%d AND date < $%d", len(args)-1, len(args))
	}
	query += " ORDER BY date DESC"

	return r.queryStandups(ctx, query, args...)
}

// ListRange retrieves team-scoped standups whose day falls in the inclusive
// range [start, end], optionally narrowed to one user.
func (r *PostgresRepository) ListRange(ctx context.Context, teamID uuid.UUID, start, end day.Day, userID *uuid.UUID) ([]Standup, error) {
	from, to := day.RangeInterval(start, end)

	query := `SELECT ` + standupColumns + ` FROM standups
		WHERE team_id = $1 AND date >= $2 AND date < $3`
	args := []any{teamID, from, to}

	if userID != nil {
		args = append(args, *userID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	query += " ORDER BY date DESC"

	return r.queryStandups(ctx, query, args...)
}

// FindByUserAndDay looks up the single standup for (user, day) using the
// day's half-open interval.
func (r *PostgresRepository) FindByUserAndDay(ctx context.Context, userID uuid.UUID, d day.Day) (*Standup, error) {
	start, end := d.Interval()
	query := `SELECT ` + standupColumns + ` FROM standups
		WHERE user_id = $1 AND date >= $2 AND date < $3`

	var s Standup
	if err := scanStandup(r.pool.QueryRow(ctx, query, userID, start, end), &s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying standup by day: %w", err)
	}

	return &s, nil
}

// Update replaces the three item lists and the updated-at timestamp.
func (r *PostgresRepository) Update(ctx context.Context, s *Standup) error {
	query := `
		UPDATE standups
		SET yesterday_work = $2, today_plan = $3, blockers = $4, updated_at = $5
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, s.ID, s.YesterdayWork, s.TodayPlan, s.Blockers, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating standup: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// SetSlackMessageID stores the external message reference after a successful
// channel post.
func (r *PostgresRepository) SetSlackMessageID(ctx context.Context, id uuid.UUID, messageID string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE standups SET slack_message_id = $2 WHERE id = $1`, id, messageID)
	if err != nil {
		return fmt.Errorf("storing slack message id: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a standup by its UUID.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM standups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting standup: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) queryStandups(ctx context.Context, query string, args ...any) ([]Standup, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing standups: %w", err)
	}
	defer rows.Close()

	var standups []Standup
	for rows.Next() {
		var s Standup
		if err := scanStandup(rows, &s); err != nil {
			return nil, fmt.Errorf("scanning standup row: %w", err)
		}
		standups = append(standups, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating standup rows: %w", err)
	}

	if standups == nil {
		standups = []Standup{}
	}

	return standups, nil
}
