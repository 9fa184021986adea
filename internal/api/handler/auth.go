package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/standupsync/standupsync/internal/api/middleware"
	"github.com/standupsync/standupsync/internal/api/response"
	"github.com/standupsync/standupsync/internal/api/validation"
	"github.com/standupsync/standupsync/internal/auth"
	"github.com/standupsync/standupsync/internal/user"
)

// AuthHandler handles login, registration, logout, and token refresh.
type AuthHandler struct {
	authService *auth.Service
	userService *user.Service
	userRepo    user.Repository
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.Service, userService *user.Service, userRepo user.Repository) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		userRepo:    userRepo,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User         userResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateLoginRequest(validation.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	u, pair, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			response.Err(w, http.StatusBadRequest, "INVALID_CREDENTIALS", "Email or password is incorrect", requestID)
			return
		}
		slog.Error("login failed", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed", requestID)
		return
	}

	response.Success(w, http.StatusOK, sessionResponse{
		User:         toUserResponse(u),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, requestID)
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register handles POST /api/auth/register. Self-registered users become
// admins anchoring a fresh team.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateRegisterRequest(validation.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	u, err := h.userService.Register(r.Context(), strings.TrimSpace(req.Email), strings.TrimSpace(req.Name), req.Password)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			response.Err(w, http.StatusBadRequest, "EMAIL_TAKEN", "A user with this email already exists", requestID)
			return
		}
		slog.Error("registration failed", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Registration failed", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toUserResponse(u), requestID)
}

type logoutRequest struct {
	Email string `json:"email"`
}

// Logout handles POST /api/auth/logout, invalidating the stored refresh
// token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req logoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if err := h.authService.Logout(r.Context(), req.Email); err != nil {
		slog.Error("logout failed", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Logout failed", requestID)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"message": "Logged out successfully"}, requestID)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh handles POST /api/auth/refresh. A verified refresh token rotates
// both tokens; expiry, signature failure, or a mismatch with the stored
// token is rejected with 403.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if req.RefreshToken == "" {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Refresh token is required", requestID)
		return
	}

	u, pair, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrRefreshMismatch) {
			response.Err(w, http.StatusForbidden, "FORBIDDEN", "Invalid or expired refresh token", requestID)
			return
		}
		slog.Error("token refresh failed", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Token refresh failed", requestID)
		return
	}

	response.Success(w, http.StatusOK, sessionResponse{
		User:         toUserResponse(u),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, requestID)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	u, err := h.userRepo.GetByID(r.Context(), identity.UserID)
	if err != nil {
		slog.Error("failed to load current user", "error", err, "userId", identity.UserID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch user", requestID)
		return
	}

	response.Success(w, http.StatusOK, toUserResponse(u), requestID)
}
