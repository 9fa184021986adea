package teamsettings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// GetByTeam retrieves the settings record for a team.
func (r *PostgresRepository) GetByTeam(ctx context.Context, teamID uuid.UUID) (*Settings, error) {
	query := `
		SELECT id, team_id, slack_access_token, slack_channel_id,
		       slack_channel_name, is_connected, created_at, updated_at
		FROM team_settings
		WHERE team_id = $1`

	var s Settings
	err := r.pool.QueryRow(ctx, query, teamID).Scan(
		&s.ID, &s.TeamID, &s.SlackAccessToken, &s.SlackChannelID,
		&s.SlackChannelName, &s.IsConnected, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying team settings: %w", err)
	}

	return &s, nil
}

// Upsert creates or replaces the team's settings. The unique team_id index
// guarantees at most one record per team.
func (r *PostgresRepository) Upsert(ctx context.Context, s *Settings) error {
	query := `
		INSERT INTO team_settings (team_id, slack_access_token, slack_channel_id,
		                           slack_channel_name, is_connected)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (team_id) DO UPDATE SET
			slack_access_token = EXCLUDED.slack_access_token,
			slack_channel_id   = EXCLUDED.slack_channel_id,
			slack_channel_name = EXCLUDED.slack_channel_name,
			is_connected       = EXCLUDED.is_connected,
			updated_at         = NOW()
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		s.TeamID, s.SlackAccessToken, s.SlackChannelID, s.SlackChannelName, s.IsConnected,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting team settings: %w", err)
	}

	return nil
}

// Disconnect clears the connection state, dropping the stored token.
func (r *PostgresRepository) Disconnect(ctx context.Context, teamID uuid.UUID) error {
	query := `
		UPDATE team_settings
		SET slack_access_token = '', slack_channel_id = '',
		    slack_channel_name = '', is_connected = FALSE, updated_at = NOW()
		WHERE team_id = $1`

	result, err := r.pool.Exec(ctx, query, teamID)
	if err != nil {
		return fmt.Errorf("disconnecting team settings: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
