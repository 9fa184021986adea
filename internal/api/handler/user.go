package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/standupsync/standupsync/internal/api/middleware"
	"github.com/standupsync/standupsync/internal/api/response"
	"github.com/standupsync/standupsync/internal/api/validation"
	"github.com/standupsync/standupsync/internal/user"
)

type userResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	Role        string  `json:"role"`
	TeamID      string  `json:"teamId"`
	IsActive    bool    `json:"isActive"`
	IsInvited   bool    `json:"isInvited"`
	InvitedBy   *string `json:"invitedBy,omitempty"`
	InvitedAt   *string `json:"invitedAt,omitempty"`
	SlackUserID *string `json:"slackUserId,omitempty"`
	LastLoginAt string  `json:"lastLoginAt"`
	CreatedAt   string  `json:"createdAt"`
}

// toUserResponse serializes a user without credential material: the password
// hash and refresh token never leave the server.
func toUserResponse(u *user.User) userResponse {
	resp := userResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		TeamID:      u.TeamID.String(),
		IsActive:    u.IsActive,
		IsInvited:   u.IsInvited,
		SlackUserID: u.SlackUserID,
		LastLoginAt: u.LastLoginAt.UTC().Format(time.RFC3339),
		CreatedAt:   u.CreatedAt.UTC().Format(time.RFC3339),
	}
	if u.InvitedBy != nil {
		s := u.InvitedBy.String()
		resp.InvitedBy = &s
	}
	if u.InvitedAt != nil {
		s := u.InvitedAt.UTC().Format(time.RFC3339)
		resp.InvitedAt = &s
	}
	return resp
}

func toUserResponses(users []user.User) []userResponse {
	items := make([]userResponse, 0, len(users))
	for i := range users {
		items = append(items, toUserResponse(&users[i]))
	}
	return items
}

// UserHandler handles team-management endpoints.
type UserHandler struct {
	users *user.Service
	repo  user.Repository
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *user.Service, repo user.Repository) *UserHandler {
	return &UserHandler{users: users, repo: repo}
}

// Me handles GET /api/users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	u, err := h.repo.GetByID(r.Context(), identity.UserID)
	if err != nil {
		slog.Error("failed to load current user", "error", err, "userId", identity.UserID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch user", requestID)
		return
	}

	response.Success(w, http.StatusOK, toUserResponse(u), requestID)
}

// Team handles GET /api/users/team: the caller's teammates.
func (h *UserHandler) Team(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	members, err := h.repo.ListByTeam(r.Context(), identity.TeamID)
	if err != nil {
		slog.Error("failed to list team members", "error", err, "teamId", identity.TeamID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch team members", requestID)
		return
	}

	response.Success(w, http.StatusOK, toUserResponses(members), requestID)
}

// List handles GET /api/users (admin): every user site-wide.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	users, err := h.repo.List(r.Context())
	if err != nil {
		slog.Error("failed to list users", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list users", requestID)
		return
	}

	response.Success(w, http.StatusOK, toUserResponses(users), requestID)
}

type inviteRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type inviteResponse struct {
	User         userResponse `json:"user"`
	TempPassword string       `json:"tempPassword"`
	Message      string       `json:"message"`
}

// Invite handles POST /api/users/invite (admin). The generated temporary
// password is returned once to the inviting admin for out-of-band delivery.
func (h *UserHandler) Invite(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateInviteRequest(validation.InviteRequest{
		Email: req.Email,
		Name:  req.Name,
		Role:  req.Role,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	inviter, err := h.repo.GetByID(r.Context(), identity.UserID)
	if err != nil {
		slog.Error("failed to load inviter", "error", err, "userId", identity.UserID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to invite user", requestID)
		return
	}

	invited, tempPassword, err := h.users.Invite(r.Context(), inviter, strings.TrimSpace(req.Email), strings.TrimSpace(req.Name), req.Role)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			response.Err(w, http.StatusBadRequest, "EMAIL_TAKEN", "A user with this email already exists", requestID)
			return
		}
		slog.Error("failed to invite user", "error", err, "email", req.Email)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to invite user", requestID)
		return
	}

	response.Success(w, http.StatusCreated, inviteResponse{
		User:         toUserResponse(invited),
		TempPassword: tempPassword,
		Message:      "User invited successfully",
	}, requestID)
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateRole handles PUT /api/users/{id}/role (admin).
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	id, _, ok := h.sameTeamTarget(w, r, requestID)
	if !ok {
		return
	}

	if id == identity.UserID {
		response.Err(w, http.StatusForbidden, "FORBIDDEN", "Cannot change your own role", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateUpdateRoleRequest(validation.UpdateRoleRequest{Role: req.Role})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	updated, err := h.users.UpdateRole(r.Context(), id, req.Role)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		slog.Error("failed to update role", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update user role", requestID)
		return
	}

	response.Success(w, http.StatusOK, toUserResponse(updated), requestID)
}

type updateStatusRequest struct {
	IsActive *bool `json:"isActive"`
}

// UpdateStatus handles PUT /api/users/{id}/status (admin).
func (h *UserHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	id, _, ok := h.sameTeamTarget(w, r, requestID)
	if !ok {
		return
	}

	if id == identity.UserID {
		response.Err(w, http.StatusForbidden, "FORBIDDEN", "Cannot change your own status", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if req.IsActive == nil {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "isActive must be a boolean", requestID)
		return
	}

	updated, err := h.users.SetActive(r.Context(), id, *req.IsActive)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		slog.Error("failed to update status", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update user status", requestID)
		return
	}

	response.Success(w, http.StatusOK, toUserResponse(updated), requestID)
}

// Delete handles DELETE /api/users/{id} (admin).
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	id, _, ok := h.sameTeamTarget(w, r, requestID)
	if !ok {
		return
	}

	if id == identity.UserID {
		response.Err(w, http.StatusForbidden, "FORBIDDEN", "Cannot delete yourself", requestID)
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		slog.Error("failed to delete user", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete user", requestID)
		return
	}

	response.NoContent(w)
}

// sameTeamTarget parses the {id} URL parameter, loads the target user, and
// enforces that admins only mutate users on their own team. It writes the
// error response itself when validation fails.
func (h *UserHandler) sameTeamTarget(w http.ResponseWriter, r *http.Request, requestID string) (uuid.UUID, *user.User, bool) {
	identity := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return uuid.Nil, nil, false
	}

	target, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return uuid.Nil, nil, false
		}
		slog.Error("failed to load target user", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load user", requestID)
		return uuid.Nil, nil, false
	}

	if target.TeamID != identity.TeamID {
		response.Err(w, http.StatusForbidden, "FORBIDDEN", "Cannot modify users from other teams", requestID)
		return uuid.Nil, nil, false
	}

	return id, target, true
}
