package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/standupsync/standupsync/internal/api/response"
	"github.com/standupsync/standupsync/internal/slack"
)

// SlackSignature verifies the Slack request signature over the raw body
// before the form is parsed. The body is restored for downstream handlers.
// When no signing secret is configured, verification is skipped.
func SlackSignature(verifier *slack.Verifier, enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}

			requestID := GetRequestID(r.Context())

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
			if err != nil {
				response.Err(w, http.StatusBadRequest, "INVALID_BODY", "Failed to read request body", requestID)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			ok := verifier.Verify(
				r.Header.Get("X-Slack-Signature"),
				r.Header.Get("X-Slack-Request-Timestamp"),
				body,
			)
			if !ok {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid Slack signature", requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
