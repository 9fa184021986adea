package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// maxSignatureAge is the replay window Slack documents for request
// signatures.
const maxSignatureAge = 5 * time.Minute

// Verifier checks Slack request signatures (v0 scheme).
type Verifier struct {
	signingSecret string
	now           func() time.Time
}

// NewVerifier creates a Verifier for the given signing secret.
func NewVerifier(signingSecret string) *Verifier {
	return &Verifier{signingSecret: signingSecret, now: time.Now}
}

// Verify checks the X-Slack-Signature header value against the request
// timestamp header and raw body. Stale timestamps are rejected to prevent
// replay.
func (v *Verifier) Verify(signature, timestamp string, body []byte) bool {
	if v.signingSecret == "" || signature == "" || timestamp == "" {
		return false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}

	age := v.now().Sub(time.Unix(ts, 0))
	if age > maxSignatureAge || age < -maxSignatureAge {
		return false
	}

	mac := hmac.New(sha256.New, []byte(v.signingSecret))
	fmt.Fprintf(mac, "v0:%s:%s", timestamp, body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
