package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/standupsync/standupsync/internal/api/middleware"
	"github.com/standupsync/standupsync/internal/api/response"
	"github.com/standupsync/standupsync/internal/api/validation"
	"github.com/standupsync/standupsync/internal/slack"
	"github.com/standupsync/standupsync/internal/standup"
	"github.com/standupsync/standupsync/internal/teamsettings"
	"github.com/standupsync/standupsync/internal/user"
)

// settingsResponse serializes team settings without the access token.
type settingsResponse struct {
	TeamID           string `json:"teamId"`
	SlackChannelID   string `json:"slackChannelId"`
	SlackChannelName string `json:"slackChannelName"`
	IsConnected      bool   `json:"isConnected"`
	UpdatedAt        string `json:"updatedAt"`
}

func toSettingsResponse(s *teamsettings.Settings) settingsResponse {
	return settingsResponse{
		TeamID:           s.TeamID.String(),
		SlackChannelID:   s.SlackChannelID,
		SlackChannelName: s.SlackChannelName,
		IsConnected:      s.IsConnected,
		UpdatedAt:        s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// SlackHandler handles Slack configuration endpoints and inbound slash
// commands.
type SlackHandler struct {
	settingsRepo teamsettings.Repository
	client       *slack.Client
	userRepo     user.Repository
	userService  *user.Service
	standups     *standup.Service
}

// NewSlackHandler creates a new SlackHandler.
func NewSlackHandler(settingsRepo teamsettings.Repository, client *slack.Client, userRepo user.Repository, userService *user.Service, standups *standup.Service) *SlackHandler {
	return &SlackHandler{
		settingsRepo: settingsRepo,
		client:       client,
		userRepo:     userRepo,
		userService:  userService,
		standups:     standups,
	}
}

// Settings handles GET /api/slack/settings (admin).
func (h *SlackHandler) Settings(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	settings, err := h.settingsRepo.GetByTeam(r.Context(), identity.TeamID)
	if err != nil {
		if errors.Is(err, teamsettings.ErrNotFound) {
			response.Success(w, http.StatusOK, nil, requestID)
			return
		}
		slog.Error("failed to fetch slack settings", "error", err, "teamId", identity.TeamID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch Slack settings", requestID)
		return
	}

	response.Success(w, http.StatusOK, toSettingsResponse(settings), requestID)
}

type configureRequest struct {
	AccessToken string `json:"accessToken"`
	ChannelID   string `json:"channelId"`
	ChannelName string `json:"channelName"`
}

// Configure handles POST /api/slack/configure (admin). The token is verified
// against the Slack API before being stored.
func (h *SlackHandler) Configure(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req configureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateConfigureSlackRequest(validation.ConfigureSlackRequest{
		AccessToken: req.AccessToken,
		ChannelID:   req.ChannelID,
		ChannelName: req.ChannelName,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	if err := h.client.AuthTest(r.Context(), req.AccessToken); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_TOKEN", "Invalid Slack access token", requestID)
		return
	}

	settings := &teamsettings.Settings{
		TeamID:           identity.TeamID,
		SlackAccessToken: req.AccessToken,
		SlackChannelID:   req.ChannelID,
		SlackChannelName: req.ChannelName,
		IsConnected:      true,
	}

	if err := h.settingsRepo.Upsert(r.Context(), settings); err != nil {
		slog.Error("failed to store slack settings", "error", err, "teamId", identity.TeamID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to configure Slack", requestID)
		return
	}

	response.Success(w, http.StatusOK, toSettingsResponse(settings), requestID)
}

type channelsRequest struct {
	AccessToken string `json:"accessToken"`
}

// Channels handles POST /api/slack/channels (admin): enumerates channels for
// the provided token, falling back to the stored one.
func (h *SlackHandler) Channels(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req channelsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	token, ok := h.resolveToken(w, r, req.AccessToken, requestID)
	if !ok {
		return
	}

	channels, err := h.client.ListChannels(r.Context(), token)
	if err != nil {
		slog.Error("failed to list slack channels", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch Slack channels", requestID)
		return
	}

	response.Success(w, http.StatusOK, channels, requestID)
}

// Members handles GET /api/slack/members (admin): workspace members for the
// stored token.
func (h *SlackHandler) Members(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	token, ok := h.resolveToken(w, r, "", requestID)
	if !ok {
		return
	}

	members, err := h.client.ListMembers(r.Context(), token)
	if err != nil {
		slog.Error("failed to list slack members", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch Slack members", requestID)
		return
	}

	response.Success(w, http.StatusOK, members, requestID)
}

// Test handles POST /api/slack/test (admin): verifies the stored connection.
func (h *SlackHandler) Test(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	settings, err := h.settingsRepo.GetByTeam(r.Context(), identity.TeamID)
	if err != nil || !settings.IsConnected || settings.SlackAccessToken == "" {
		response.Success(w, http.StatusOK, map[string]bool{"connected": false}, requestID)
		return
	}

	connected := h.client.AuthTest(r.Context(), settings.SlackAccessToken) == nil
	response.Success(w, http.StatusOK, map[string]bool{"connected": connected}, requestID)
}

// Disconnect handles POST /api/slack/disconnect (admin): drops the stored
// token and connection state.
func (h *SlackHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	if err := h.settingsRepo.Disconnect(r.Context(), identity.TeamID); err != nil {
		if errors.Is(err, teamsettings.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Slack settings not found", requestID)
			return
		}
		slog.Error("failed to disconnect slack", "error", err, "teamId", identity.TeamID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to disconnect Slack", requestID)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"message": "Slack disconnected successfully"}, requestID)
}

// Command handles POST /api/slack/command: the /standup slash command.
// Responses are always 200 with an ephemeral text body, including failures,
// per the slash-command contract.
func (h *SlackHandler) Command(w http.ResponseWriter, r *http.Request) {
	payload, ok := parseCommandPayload(w, r)
	if !ok {
		return
	}

	u, found := h.resolveCommandUser(r, payload)
	if !found {
		ephemeral(w, "User not found in StandupSync. Please register at the web app first.")
		return
	}

	parsed := slack.ParseStandupText(payload.Text)

	created, err := h.standups.UpsertToday(r.Context(), u.ID, u.TeamID, authorName(u.Name, u.Email),
		parsed.YesterdayWork, parsed.TodayPlan, parsed.Blockers)
	if err != nil {
		slog.Error("slash command upsert failed", "error", err, "userId", u.ID)
		ephemeral(w, "Failed to submit standup. Please try again or use the web app.")
		return
	}

	if created {
		ephemeral(w, "Your standup has been submitted successfully!")
	} else {
		ephemeral(w, "Your standup has been updated successfully!")
	}
}

// QuickUpdate handles POST /api/slack/update: appends one running note to
// tomorrow's plan.
func (h *SlackHandler) QuickUpdate(w http.ResponseWriter, r *http.Request) {
	payload, ok := parseCommandPayload(w, r)
	if !ok {
		return
	}

	note := strings.TrimSpace(payload.Text)
	if note == "" {
		ephemeral(w, "Nothing to add. Usage: /standup-update <note for tomorrow>")
		return
	}

	u, found := h.resolveCommandUser(r, payload)
	if !found {
		ephemeral(w, "User not found in StandupSync. Please register at the web app first.")
		return
	}

	if err := h.standups.AppendTomorrowPlan(r.Context(), u.ID, u.TeamID, note); err != nil {
		slog.Error("quick update failed", "error", err, "userId", u.ID)
		ephemeral(w, "Failed to save your note. Please try again or use the web app.")
		return
	}

	ephemeral(w, "Noted for tomorrow's plan: "+note)
}

// resolveCommandUser matches the submitting Slack identity to an account:
// first by linked Slack user id, then by the payload email. An email match
// links the Slack id for future commands.
func (h *SlackHandler) resolveCommandUser(r *http.Request, payload slack.CommandPayload) (*user.User, bool) {
	if payload.UserID != "" {
		if u, err := h.userRepo.GetBySlackUserID(r.Context(), payload.UserID); err == nil {
			return u, true
		}
	}

	if payload.UserEmail == "" {
		return nil, false
	}

	u, err := h.userRepo.GetByEmail(r.Context(), payload.UserEmail)
	if err != nil {
		return nil, false
	}

	if payload.UserID != "" {
		if err := h.userService.LinkSlackUser(r.Context(), u.ID, payload.UserID); err != nil {
			slog.Warn("failed to link slack user id", "error", err, "userId", u.ID)
		}
	}

	return u, true
}

// resolveToken picks the explicitly provided token or falls back to the
// calling admin's stored one. Teams with no connection get a 400.
func (h *SlackHandler) resolveToken(w http.ResponseWriter, r *http.Request, explicit, requestID string) (string, bool) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, true
	}

	identity := middleware.GetIdentity(r.Context())
	settings, err := h.settingsRepo.GetByTeam(r.Context(), identity.TeamID)
	if err != nil || settings.SlackAccessToken == "" {
		response.Err(w, http.StatusBadRequest, "NOT_CONNECTED", "Slack is not connected for this team", requestID)
		return "", false
	}

	return settings.SlackAccessToken, true
}

func parseCommandPayload(w http.ResponseWriter, r *http.Request) (slack.CommandPayload, bool) {
	if err := r.ParseForm(); err != nil {
		ephemeral(w, "Could not read the command payload.")
		return slack.CommandPayload{}, false
	}

	return slack.CommandPayload{
		TeamID:      r.PostForm.Get("team_id"),
		UserID:      r.PostForm.Get("user_id"),
		UserName:    r.PostForm.Get("user_name"),
		UserEmail:   r.PostForm.Get("user_email"),
		ChannelID:   r.PostForm.Get("channel_id"),
		Text:        r.PostForm.Get("text"),
		ResponseURL: r.PostForm.Get("response_url"),
	}, true
}

// ephemeral writes the Slack slash-command response body. Always 200: the
// calling protocol reads the body, not the status code.
func ephemeral(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"response_type": "ephemeral",
		"text":          text,
	}); err != nil {
		slog.Error("failed to encode slash-command response", "error", err)
	}
}
