package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/standupsync/standupsync/internal/api/handler"
	"github.com/standupsync/standupsync/internal/auth"
	"github.com/standupsync/standupsync/internal/user"
)

func newAuthHandler(repo user.Repository) (*handler.AuthHandler, *auth.TokenManager) {
	tokens := auth.NewTokenManager("test-access", "test-refresh", time.Hour, 24*time.Hour)
	authSvc := auth.NewService(repo, tokens)
	userSvc := user.NewService(repo, &mockTeamRepo{}, bcrypt.MinCost)
	return handler.NewAuthHandler(authSvc, userSvc, repo), tokens
}

func passwordUser(t *testing.T, password string) *user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := sampleUser(uuid.New(), uuid.New())
	u.Email = "ada@example.com"
	u.PasswordHash = string(hash)
	return u
}

// ===== POST /auth/login =====

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	u := passwordUser(t, "correct horse")
	repo := &mockUserRepo{
		getByEmailFn: func(_ context.Context, email string) (*user.User, error) {
			assert.Equal(t, "ada@example.com", email)
			return u, nil
		},
	}
	h, _ := newAuthHandler(repo)

	body, _ := json.Marshal(map[string]interface{}{
		"email":    "ada@example.com",
		"password": "correct horse",
	})
	req, w := makeChiRequest(http.MethodPost, "/auth/login", body, nil)

	h.Login(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := parseEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.NotEmpty(t, data["accessToken"])
	assert.NotEmpty(t, data["refreshToken"])
	userData := data["user"].(map[string]interface{})
	assert.Equal(t, "ada@example.com", userData["email"])
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	u := passwordUser(t, "correct horse")
	repo := &mockUserRepo{
		getByEmailFn: func(_ context.Context, _ string) (*user.User, error) { return u, nil },
	}
	h, _ := newAuthHandler(repo)

	body, _ := json.Marshal(map[string]interface{}{
		"email":    "ada@example.com",
		"password": "wrong",
	})
	req, w := makeChiRequest(http.MethodPost, "/auth/login", body, nil)

	h.Login(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", envelopeErrorCode(t, w))
}

func TestLogin_MissingFields(t *testing.T) {
	t.Parallel()

	h, _ := newAuthHandler(&mockUserRepo{})

	body, _ := json.Marshal(map[string]interface{}{"email": "ada@example.com"})
	req, w := makeChiRequest(http.MethodPost, "/auth/login", body, nil)

	h.Login(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", envelopeErrorCode(t, w))
}

// ===== POST /auth/register =====

func TestRegister_Handler_Success(t *testing.T) {
	t.Parallel()

	h, _ := newAuthHandler(&mockUserRepo{})

	body, _ := json.Marshal(map[string]interface{}{
		"email":    "new@example.com",
		"password": "hunter2222",
		"name":     "New Admin",
	})
	req, w := makeChiRequest(http.MethodPost, "/auth/register", body, nil)

	h.Register(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	env := parseEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, "new@example.com", data["email"])
	assert.Equal(t, "admin", data["role"])
}

func TestRegister_ShortPassword(t *testing.T) {
	t.Parallel()

	h, _ := newAuthHandler(&mockUserRepo{})

	body, _ := json.Marshal(map[string]interface{}{
		"email":    "new@example.com",
		"password": "short",
		"name":     "New",
	})
	req, w := makeChiRequest(http.MethodPost, "/auth/register", body, nil)

	h.Register(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", envelopeErrorCode(t, w))
}

func TestRegister_EmailTaken(t *testing.T) {
	t.Parallel()

	repo := &mockUserRepo{
		createFn: func(_ context.Context, _ *user.User) error { return user.ErrEmailTaken },
	}
	h, _ := newAuthHandler(repo)

	body, _ := json.Marshal(map[string]interface{}{
		"email":    "taken@example.com",
		"password": "hunter2222",
		"name":     "Dup",
	})
	req, w := makeChiRequest(http.MethodPost, "/auth/register", body, nil)

	h.Register(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "EMAIL_TAKEN", envelopeErrorCode(t, w))
}

// ===== POST /auth/refresh =====

func TestRefresh_Handler_RotatesTokens(t *testing.T) {
	t.Parallel()

	u := passwordUser(t, "pw")
	repo := &mockUserRepo{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*user.User, error) {
			if id == u.ID {
				return u, nil
			}
			return nil, user.ErrUserNotFound
		},
	}
	h, tokens := newAuthHandler(repo)

	refresh, err := tokens.IssueRefresh(u.ID)
	require.NoError(t, err)
	u.RefreshToken = &refresh

	body, _ := json.Marshal(map[string]interface{}{"refreshToken": refresh})
	req, w := makeChiRequest(http.MethodPost, "/auth/refresh", body, nil)

	h.Refresh(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := parseEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.NotEmpty(t, data["accessToken"])
	assert.NotEmpty(t, data["refreshToken"])
}

func TestRefresh_EmptyToken401(t *testing.T) {
	t.Parallel()

	h, _ := newAuthHandler(&mockUserRepo{})

	body, _ := json.Marshal(map[string]interface{}{})
	req, w := makeChiRequest(http.MethodPost, "/auth/refresh", body, nil)

	h.Refresh(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", envelopeErrorCode(t, w))
}

func TestRefresh_GarbageToken403(t *testing.T) {
	t.Parallel()

	h, _ := newAuthHandler(&mockUserRepo{})

	body, _ := json.Marshal(map[string]interface{}{"refreshToken": "garbage"})
	req, w := makeChiRequest(http.MethodPost, "/auth/refresh", body, nil)

	h.Refresh(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", envelopeErrorCode(t, w))
}

func TestRefresh_RotatedAwayToken403(t *testing.T) {
	t.Parallel()

	u := passwordUser(t, "pw")
	stored := "a-newer-token"
	u.RefreshToken = &stored

	repo := &mockUserRepo{
		getByIDFn: func(_ context.Context, _ uuid.UUID) (*user.User, error) { return u, nil },
	}
	h, tokens := newAuthHandler(repo)

	oldToken, err := tokens.IssueRefresh(u.ID)
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]interface{}{"refreshToken": oldToken})
	req, w := makeChiRequest(http.MethodPost, "/auth/refresh", body, nil)

	h.Refresh(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

// ===== POST /auth/logout =====

func TestLogout_Success(t *testing.T) {
	t.Parallel()

	u := passwordUser(t, "pw")
	repo := &mockUserRepo{
		getByEmailFn: func(_ context.Context, _ string) (*user.User, error) { return u, nil },
	}
	h, _ := newAuthHandler(repo)

	body, _ := json.Marshal(map[string]interface{}{"email": "ada@example.com"})
	req, w := makeChiRequest(http.MethodPost, "/auth/logout", body, nil)

	h.Logout(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// ===== GET /auth/me =====

func TestAuthMe_Success(t *testing.T) {
	t.Parallel()

	teamID := uuid.New()
	identity := memberIdentity(teamID)
	u := sampleUser(identity.UserID, teamID)

	repo := &mockUserRepo{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*user.User, error) {
			assert.Equal(t, identity.UserID, id)
			return u, nil
		},
	}
	h, _ := newAuthHandler(repo)

	req, w := makeAuthRequest(http.MethodGet, "/auth/me", nil, nil, identity)

	h.Me(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := parseEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, u.Email, data["email"])
}
