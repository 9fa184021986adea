package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/standupsync/standupsync/internal/api/middleware"
	"github.com/standupsync/standupsync/internal/auth"
	"github.com/standupsync/standupsync/internal/day"
	"github.com/standupsync/standupsync/internal/standup"
	"github.com/standupsync/standupsync/internal/team"
	"github.com/standupsync/standupsync/internal/user"
)

// --- Request helpers ---

func makeChiRequest(method, path string, body []byte, params map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	return req, w
}

func makeAuthRequest(method, path string, body []byte, params map[string]string, identity *auth.Identity) (*http.Request, *httptest.ResponseRecorder) {
	req, w := makeChiRequest(method, path, body, params)
	if identity != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), identity))
	}
	return req, w
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &env)
	require.NoError(t, err, "failed to parse response body")
	return env
}

func envelopeErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := parseEnvelope(t, w)
	errObj, ok := env["error"].(map[string]interface{})
	require.True(t, ok, "expected error envelope, got %s", w.Body.String())
	return errObj["code"].(string)
}

func adminIdentity(teamID uuid.UUID) *auth.Identity {
	return &auth.Identity{
		UserID: uuid.New(),
		Email:  "admin@example.com",
		Name:   "Admin",
		Role:   user.RoleAdmin,
		TeamID: teamID,
	}
}

func memberIdentity(teamID uuid.UUID) *auth.Identity {
	return &auth.Identity{
		UserID: uuid.New(),
		Email:  "member@example.com",
		Name:   "Member",
		Role:   user.RoleUser,
		TeamID: teamID,
	}
}

func sampleUser(id, teamID uuid.UUID) *user.User {
	now := time.Now().UTC()
	return &user.User{
		ID:           id,
		Email:        "sample@example.com",
		Name:         "Sample",
		PasswordHash: "$2a$04$hashhashhashhashhashha",
		Role:         user.RoleUser,
		TeamID:       teamID,
		IsActive:     true,
		LastLoginAt:  now,
		CreatedAt:    now,
	}
}

func sampleStandup(userID, teamID uuid.UUID, d day.Day) *standup.Standup {
	now := time.Now().UTC()
	return &standup.Standup{
		ID:            uuid.New(),
		UserID:        userID,
		TeamID:        teamID,
		Date:          d,
		YesterdayWork: []string{"wrote tests"},
		TodayPlan:     []string{"ship feature"},
		Blockers:      []string{},
		SubmittedAt:   now,
		UpdatedAt:     now,
	}
}

// --- Mock User Repository ---

type mockUserRepo struct {
	createFn           func(ctx context.Context, u *user.User) error
	getByIDFn          func(ctx context.Context, id uuid.UUID) (*user.User, error)
	getByEmailFn       func(ctx context.Context, email string) (*user.User, error)
	getBySlackUserIDFn func(ctx context.Context, slackUserID string) (*user.User, error)
	listFn             func(ctx context.Context) ([]user.User, error)
	listByTeamFn       func(ctx context.Context, teamID uuid.UUID) ([]user.User, error)
	updateRoleFn        func(ctx context.Context, id uuid.UUID, role string) error
	updateActiveFn      func(ctx context.Context, id uuid.UUID, isActive bool) error
	updateSlackUserIDFn func(ctx context.Context, id uuid.UUID, slackUserID string) error
	deleteFn            func(ctx context.Context, id uuid.UUID) error
}

func (m *mockUserRepo) Create(ctx context.Context, u *user.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, u)
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now().UTC()
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, user.ErrUserNotFound
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, user.ErrUserNotFound
}

func (m *mockUserRepo) GetBySlackUserID(ctx context.Context, slackUserID string) (*user.User, error) {
	if m.getBySlackUserIDFn != nil {
		return m.getBySlackUserIDFn(ctx, slackUserID)
	}
	return nil, user.ErrUserNotFound
}

func (m *mockUserRepo) List(ctx context.Context) ([]user.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []user.User{}, nil
}

func (m *mockUserRepo) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]user.User, error) {
	if m.listByTeamFn != nil {
		return m.listByTeamFn(ctx, teamID)
	}
	return []user.User{}, nil
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	if m.updateRoleFn != nil {
		return m.updateRoleFn(ctx, id, role)
	}
	return nil
}

func (m *mockUserRepo) UpdateActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	if m.updateActiveFn != nil {
		return m.updateActiveFn(ctx, id, isActive)
	}
	return nil
}

func (m *mockUserRepo) UpdateSlackUserID(ctx context.Context, id uuid.UUID, slackUserID string) error {
	if m.updateSlackUserIDFn != nil {
		return m.updateSlackUserIDFn(ctx, id, slackUserID)
	}
	return nil
}

func (m *mockUserRepo) UpdateRefreshToken(_ context.Context, _ uuid.UUID, _ *string) error {
	return nil
}

func (m *mockUserRepo) TouchLastLogin(_ context.Context, _ uuid.UUID) error { return nil }

func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockUserRepo) CountAll(_ context.Context) (int, error) { return 0, nil }

// --- Mock Team Repository ---

type mockTeamRepo struct {
	createFn func(ctx context.Context, t *team.Team) error
}

func (m *mockTeamRepo) Create(ctx context.Context, t *team.Team) error {
	if m.createFn != nil {
		return m.createFn(ctx, t)
	}
	t.ID = uuid.New()
	return nil
}

func (m *mockTeamRepo) GetByID(_ context.Context, _ uuid.UUID) (*team.Team, error) {
	return nil, team.ErrTeamNotFound
}

func (m *mockTeamRepo) List(_ context.Context) ([]team.Team, error) { return []team.Team{}, nil }

func (m *mockTeamRepo) SetAdmin(_ context.Context, _, _ uuid.UUID) error { return nil }

func (m *mockTeamRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

// --- Mock Standup Repository ---

type mockStandupRepo struct {
	createFn           func(ctx context.Context, s *standup.Standup) error
	getByIDFn          func(ctx context.Context, id uuid.UUID) (*standup.Standup, error)
	listFn             func(ctx context.Context, filter standup.ListFilter) ([]standup.Standup, error)
	listRangeFn        func(ctx context.Context, teamID uuid.UUID, start, end day.Day, userID *uuid.UUID) ([]standup.Standup, error)
	findByUserAndDayFn func(ctx context.Context, userID uuid.UUID, d day.Day) (*standup.Standup, error)
	updateFn           func(ctx context.Context, s *standup.Standup) error
	deleteFn           func(ctx context.Context, id uuid.UUID) error
}

func (m *mockStandupRepo) Create(ctx context.Context, s *standup.Standup) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	s.ID = uuid.New()
	s.SubmittedAt = time.Now().UTC()
	s.UpdatedAt = s.SubmittedAt
	return nil
}

func (m *mockStandupRepo) GetByID(ctx context.Context, id uuid.UUID) (*standup.Standup, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, standup.ErrNotFound
}

func (m *mockStandupRepo) List(ctx context.Context, filter standup.ListFilter) ([]standup.Standup, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return []standup.Standup{}, nil
}

func (m *mockStandupRepo) ListRange(ctx context.Context, teamID uuid.UUID, start, end day.Day, userID *uuid.UUID) ([]standup.Standup, error) {
	if m.listRangeFn != nil {
		return m.listRangeFn(ctx, teamID, start, end, userID)
	}
	return []standup.Standup{}, nil
}

func (m *mockStandupRepo) FindByUserAndDay(ctx context.Context, userID uuid.UUID, d day.Day) (*standup.Standup, error) {
	if m.findByUserAndDayFn != nil {
		return m.findByUserAndDayFn(ctx, userID, d)
	}
	return nil, standup.ErrNotFound
}

func (m *mockStandupRepo) Update(ctx context.Context, s *standup.Standup) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, s)
	}
	return nil
}

func (m *mockStandupRepo) SetSlackMessageID(_ context.Context, _ uuid.UUID, _ string) error {
	return nil
}

func (m *mockStandupRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// --- Noop Notifier ---

type noopNotifier struct{}

func (noopNotifier) PostStandup(_ context.Context, _ uuid.UUID, _ string, _ *standup.Standup) (string, error) {
	return "", nil
}

func (noopNotifier) UpdateStandup(_ context.Context, _ uuid.UUID, _, _ string, _ *standup.Standup) error {
	return nil
}
