package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/standupsync/standupsync/internal/api/response"
	"github.com/standupsync/standupsync/internal/auth"
	"github.com/standupsync/standupsync/internal/user"
)

const identityKey contextKey = "identity"

// Auth is middleware that extracts the Authorization bearer token and
// resolves it to an Identity via the auth service. Identity is re-derived on
// every request; there is no session store. Missing tokens return 401, tokens
// that fail verification return 403, and verified tokens whose subject no
// longer exists return 401.
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			token := bearerToken(r)
			if token == "" {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", requestID)
				return
			}

			identity, err := authService.Authenticate(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrInvalidToken):
					response.Err(w, http.StatusForbidden, "FORBIDDEN", "Invalid or expired token", requestID)
				case errors.Is(err, user.ErrUserNotFound):
					response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "User not found", requestID)
				default:
					response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Authentication failed", requestID)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireRole returns middleware that rejects identities whose role is not in
// the allowed list.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			identity := GetIdentity(r.Context())
			if identity == nil {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", requestID)
				return
			}

			if !allowed[identity.Role] {
				response.Err(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions", requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin restricts a route to team admins.
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(user.RoleAdmin)
}

// WithIdentity returns a context carrying the given Identity.
func WithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity retrieves the authenticated Identity from the request context.
func GetIdentity(ctx context.Context) *auth.Identity {
	if id, ok := ctx.Value(identityKey).(*auth.Identity); ok {
		return id
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
