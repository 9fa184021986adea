package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, name, password_hash, role, team_id, is_active,
	is_invited, invited_by, invited_at, slack_user_id, refresh_token,
	last_login_at, created_at`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

func scanUser(row pgx.Row, u *User) error {
	return row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.TeamID,
		&u.IsActive, &u.IsInvited, &u.InvitedBy, &u.InvitedAt,
		&u.SlackUserID, &u.RefreshToken, &u.LastLoginAt, &u.CreatedAt,
	)
}

// Create inserts a new user record. Email is normalized to lowercase; a
// violation of the unique email index maps to ErrEmailTaken.
func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (email, name, password_hash, role, team_id,
		                   is_active, is_invited, invited_by, invited_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, last_login_at, created_at`

	err := r.pool.QueryRow(ctx, query,
		strings.ToLower(u.Email),
		u.Name,
		u.PasswordHash,
		u.Role,
		u.TeamID,
		u.IsActive,
		u.IsInvited,
		u.InvitedBy,
		u.InvitedAt,
	).Scan(&u.ID, &u.LastLoginAt, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	u.Email = strings.ToLower(u.Email)

	return nil
}

// GetByID retrieves a single user by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var u User
	if err := scanUser(r.pool.QueryRow(ctx, query, id), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}

	return &u, nil
}

// GetByEmail retrieves a single user by email, case-insensitively.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`

	var u User
	if err := scanUser(r.pool.QueryRow(ctx, query, email), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user by email: %w", err)
	}

	return &u, nil
}

// GetBySlackUserID retrieves the user linked to the given Slack user id.
func (r *PostgresRepository) GetBySlackUserID(ctx context.Context, slackUserID string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE slack_user_id = $1`

	var u User
	if err := scanUser(r.pool.QueryRow(ctx, query, slackUserID), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user by slack id: %w", err)
	}

	return &u, nil
}

// List retrieves all users ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC`
	return r.queryUsers(ctx, query)
}

// ListByTeam retrieves a team's users, newest first.
func (r *PostgresRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE team_id = $1 ORDER BY created_at DESC`
	return r.queryUsers(ctx, query, teamID)
}

func (r *PostgresRepository) queryUsers(ctx context.Context, query string, args ...any) ([]User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}

	if users == nil {
		users = []User{}
	}

	return users, nil
}

// UpdateRole sets a user's role.
func (r *PostgresRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	return r.exec(ctx, `UPDATE users SET role = $2 WHERE id = $1`, id, role)
}

// UpdateActive sets a user's active flag.
func (r *PostgresRepository) UpdateActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	return r.exec(ctx, `UPDATE users SET is_active = $2 WHERE id = $1`, id, isActive)
}

// UpdateSlackUserID links a Slack identity to the user.
func (r *PostgresRepository) UpdateSlackUserID(ctx context.Context, id uuid.UUID, slackUserID string) error {
	return r.exec(ctx, `UPDATE users SET slack_user_id = $2 WHERE id = $1`, id, slackUserID)
}

// UpdateRefreshToken stores the user's current refresh token. A nil token
// clears it (logout).
func (r *PostgresRepository) UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error {
	return r.exec(ctx, `UPDATE users SET refresh_token = $2 WHERE id = $1`, id, token)
}

// TouchLastLogin records a successful login.
func (r *PostgresRepository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
}

// Delete removes a user by its UUID.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `DELETE FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CountAll returns the total number of users.
func (r *PostgresRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}
