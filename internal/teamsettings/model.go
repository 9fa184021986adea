package teamsettings

import (
	"time"

	"github.com/google/uuid"
)

// Settings holds a team's Slack connection state. At most one record exists
// per team. The access token must never reach an outward-facing
// serialization.
type Settings struct {
	ID               uuid.UUID
	TeamID           uuid.UUID
	SlackAccessToken string
	SlackChannelID   string
	SlackChannelName string
	IsConnected      bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
