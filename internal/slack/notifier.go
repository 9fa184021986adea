package slack

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/standupsync/standupsync/internal/standup"
	"github.com/standupsync/standupsync/internal/teamsettings"
)

// Notifier resolves a team's Slack connection and posts or edits standup
// messages. Teams without a connected channel degrade to a no-op rather than
// an error; only genuine API failures propagate (and callers absorb them).
type Notifier struct {
	client       *Client
	settingsRepo teamsettings.Repository
}

// NewNotifier creates a Notifier.
func NewNotifier(client *Client, settingsRepo teamsettings.Repository) *Notifier {
	return &Notifier{client: client, settingsRepo: settingsRepo}
}

var _ standup.Notifier = (*Notifier)(nil)

// PostStandup posts a new channel message for the standup and returns its
// message timestamp. Returns "" when the team is not connected.
func (n *Notifier) PostStandup(ctx context.Context, teamID uuid.UUID, authorName string, s *standup.Standup) (string, error) {
	settings, ok, err := n.connection(ctx, teamID)
	if err != nil || !ok {
		return "", err
	}

	text := FormatStandup(authorName, s.YesterdayWork, s.TodayPlan, s.Blockers)
	ts, err := n.client.PostMessage(ctx, settings.SlackAccessToken, settings.SlackChannelID, text)
	if err != nil {
		return "", fmt.Errorf("posting standup message: %w", err)
	}

	return ts, nil
}

// UpdateStandup edits the previously posted message in place.
func (n *Notifier) UpdateStandup(ctx context.Context, teamID uuid.UUID, messageID, authorName string, s *standup.Standup) error {
	settings, ok, err := n.connection(ctx, teamID)
	if err != nil || !ok {
		return err
	}

	text := FormatStandup(authorName, s.YesterdayWork, s.TodayPlan, s.Blockers)
	if err := n.client.UpdateMessage(ctx, settings.SlackAccessToken, settings.SlackChannelID, messageID, text); err != nil {
		return fmt.Errorf("updating standup message: %w", err)
	}

	return nil
}

func (n *Notifier) connection(ctx context.Context, teamID uuid.UUID) (*teamsettings.Settings, bool, error) {
	settings, err := n.settingsRepo.GetByTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, teamsettings.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("loading team settings: %w", err)
	}

	if !settings.IsConnected || settings.SlackAccessToken == "" || settings.SlackChannelID == "" {
		return nil, false, nil
	}

	return settings, true, nil
}
