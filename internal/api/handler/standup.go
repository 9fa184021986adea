package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/standupsync/standupsync/internal/api/middleware"
	"github.com/standupsync/standupsync/internal/api/response"
	"github.com/standupsync/standupsync/internal/api/validation"
	"github.com/standupsync/standupsync/internal/day"
	"github.com/standupsync/standupsync/internal/standup"
)

type standupResponse struct {
	ID            string   `json:"id"`
	UserID        string   `json:"userId"`
	TeamID        string   `json:"teamId"`
	Date          string   `json:"date"`
	YesterdayWork []string `json:"yesterdayWork"`
	TodayPlan     []string `json:"todayPlan"`
	Blockers      []string `json:"blockers"`
	SubmittedAt   string   `json:"submittedAt"`
	UpdatedAt     string   `json:"updatedAt"`
}

func toStandupResponse(s *standup.Standup) standupResponse {
	return standupResponse{
		ID:            s.ID.String(),
		UserID:        s.UserID.String(),
		TeamID:        s.TeamID.String(),
		Date:          s.Date.String(),
		YesterdayWork: s.YesterdayWork,
		TodayPlan:     s.TodayPlan,
		Blockers:      s.Blockers,
		SubmittedAt:   s.SubmittedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toStandupResponses(standups []standup.Standup) []standupResponse {
	items := make([]standupResponse, 0, len(standups))
	for i := range standups {
		items = append(items, toStandupResponse(&standups[i]))
	}
	return items
}

// StandupHandler handles standup CRUD endpoints.
type StandupHandler struct {
	service *standup.Service
}

// NewStandupHandler creates a new StandupHandler.
func NewStandupHandler(service *standup.Service) *StandupHandler {
	return &StandupHandler{service: service}
}

// List handles GET /api/standups?date&userId. Without a userId filter the
// caller's own records are returned.
func (h *StandupHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	var userID *uuid.UUID
	if raw := r.URL.Query().Get("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "INVALID_ID", "userId must be a valid UUID", requestID)
			return
		}
		userID = &id
	}

	var d *day.Day
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := day.Parse(raw)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "INVALID_DATE", "date must be YYYY-MM-DD or RFC 3339", requestID)
			return
		}
		d = &parsed
	}

	standups, err := h.service.List(r.Context(), identity.TeamID, identity.UserID, userID, d)
	if err != nil {
		slog.Error("failed to list standups", "error", err, "teamId", identity.TeamID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch standups", requestID)
		return
	}

	response.Success(w, http.StatusOK, toStandupResponses(standups), requestID)
}

// ListRange handles GET /api/standups/range?startDate&endDate&userId. The
// range is inclusive of both endpoint days; without a userId filter the whole
// team's records are returned.
func (h *StandupHandler) ListRange(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	q := r.URL.Query()
	fieldErrors := validation.ValidateRangeRequest(validation.RangeRequest{
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	start, _ := day.Parse(q.Get("startDate")) // already validated
	end, _ := day.Parse(q.Get("endDate"))

	var userID *uuid.UUID
	if raw := q.Get("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "INVALID_ID", "userId must be a valid UUID", requestID)
			return
		}
		userID = &id
	}

	standups, err := h.service.ListRange(r.Context(), identity.TeamID, start, end, userID)
	if err != nil {
		slog.Error("failed to list standup range", "error", err, "teamId", identity.TeamID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch standups", requestID)
		return
	}

	response.Success(w, http.StatusOK, toStandupResponses(standups), requestID)
}

// TeamByDay handles GET /api/standups/team/{date}: every teammate's standup
// for one day.
func (h *StandupHandler) TeamByDay(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	d, err := day.Parse(chi.URLParam(r, "date"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_DATE", "date must be YYYY-MM-DD or RFC 3339", requestID)
		return
	}

	standups, err := h.service.TeamByDay(r.Context(), identity.TeamID, d)
	if err != nil {
		slog.Error("failed to list team standups", "error", err, "teamId", identity.TeamID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch team standups", requestID)
		return
	}

	response.Success(w, http.StatusOK, toStandupResponses(standups), requestID)
}

type createStandupRequest struct {
	Date          string   `json:"date"`
	YesterdayWork []string `json:"yesterdayWork"`
	TodayPlan     []string `json:"todayPlan"`
	Blockers      []string `json:"blockers"`
}

// Create handles POST /api/standups. A second submission for the same day is
// a 400 conflict.
func (h *StandupHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createStandupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateStandupRequest(validation.CreateStandupRequest{Date: req.Date})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	d, _ := day.Parse(req.Date) // already validated

	created, err := h.service.Create(r.Context(), identity.UserID, identity.TeamID, authorName(identity.Name, identity.Email),
		d, req.YesterdayWork, req.TodayPlan, req.Blockers)
	if err != nil {
		if errors.Is(err, standup.ErrDuplicateDay) {
			response.Err(w, http.StatusBadRequest, "DUPLICATE_DAY", "Standup already exists for this date", requestID)
			return
		}
		slog.Error("failed to create standup", "error", err, "userId", identity.UserID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create standup", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toStandupResponse(created), requestID)
}

type updateStandupRequest struct {
	YesterdayWork []string `json:"yesterdayWork"`
	TodayPlan     []string `json:"todayPlan"`
	Blockers      []string `json:"blockers"`
}

// Update handles PUT /api/standups/{id}. Only lists present in the payload
// are replaced; the rest are untouched.
func (h *StandupHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateStandupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	updated, err := h.service.Update(r.Context(), identity.UserID, authorName(identity.Name, identity.Email), id, standup.UpdateFields{
		YesterdayWork: req.YesterdayWork,
		TodayPlan:     req.TodayPlan,
		Blockers:      req.Blockers,
	})
	if err != nil {
		switch {
		case errors.Is(err, standup.ErrNotFound):
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Standup not found", requestID)
		case errors.Is(err, standup.ErrNotOwner):
			response.Err(w, http.StatusForbidden, "FORBIDDEN", "Cannot update another user's standup", requestID)
		default:
			slog.Error("failed to update standup", "error", err, "id", id)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update standup", requestID)
		}
		return
	}

	response.Success(w, http.StatusOK, toStandupResponse(updated), requestID)
}

// Delete handles DELETE /api/standups/{id}.
func (h *StandupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	if err := h.service.Delete(r.Context(), identity.UserID, id); err != nil {
		switch {
		case errors.Is(err, standup.ErrNotFound):
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Standup not found", requestID)
		case errors.Is(err, standup.ErrNotOwner):
			response.Err(w, http.StatusForbidden, "FORBIDDEN", "Cannot delete another user's standup", requestID)
		default:
			slog.Error("failed to delete standup", "error", err, "id", id)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete standup", requestID)
		}
		return
	}

	response.NoContent(w)
}

func authorName(name, email string) string {
	if name != "" {
		return name
	}
	return email
}
