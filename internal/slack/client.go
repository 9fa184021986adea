// Package slack talks to the Slack Web API and translates standup data to
// and from Slack message text and slash-command payloads.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const apiBaseURL = "https://slack.com/api"

// Channel is one entry from conversations.list.
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Member is one entry from users.list.
type Member struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Client is a minimal Slack Web API client. Calls are best-effort network
// requests with the client's default timeout and no retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    apiBaseURL,
	}
}

// NewClientWithBaseURL creates a Client pointed at an alternate API root,
// used by tests.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

// PostMessage posts markdown text to a channel and returns the message
// timestamp used to edit it later.
func (c *Client) PostMessage(ctx context.Context, token, channelID, text string) (string, error) {
	var result struct {
		apiResult
		TS string `json:"ts"`
	}

	err := c.callJSON(ctx, token, "chat.postMessage", map[string]any{
		"channel": channelID,
		"text":    text,
		"mrkdwn":  true,
	}, &result)
	if err != nil {
		return "", err
	}

	return result.TS, nil
}

// UpdateMessage edits a previously posted message in place.
func (c *Client) UpdateMessage(ctx context.Context, token, channelID, messageTS, text string) error {
	var result apiResult
	return c.callJSON(ctx, token, "chat.update", map[string]any{
		"channel": channelID,
		"ts":      messageTS,
		"text":    text,
		"mrkdwn":  true,
	}, &result)
}

// AuthTest verifies the token against auth.test.
func (c *Client) AuthTest(ctx context.Context, token string) error {
	var result apiResult
	return c.callForm(ctx, token, "auth.test", url.Values{}, &result)
}

// ListChannels enumerates unarchived public and private channels.
func (c *Client) ListChannels(ctx context.Context, token string) ([]Channel, error) {
	var result struct {
		apiResult
		Channels []struct {
			ID         string `json:"id"`
			Name       string `json:"name"`
			IsArchived bool   `json:"is_archived"`
		} `json:"channels"`
	}

	params := url.Values{}
	params.Set("types", "public_channel,private_channel")
	params.Set("limit", "200")
	if err := c.callForm(ctx, token, "conversations.list", params, &result); err != nil {
		return nil, err
	}

	channels := make([]Channel, 0, len(result.Channels))
	for _, ch := range result.Channels {
		if ch.IsArchived {
			continue
		}
		channels = append(channels, Channel{ID: ch.ID, Name: ch.Name})
	}

	return channels, nil
}

// ListMembers enumerates active, non-bot workspace members.
func (c *Client) ListMembers(ctx context.Context, token string) ([]Member, error) {
	var result struct {
		apiResult
		Members []struct {
			ID      string `json:"id"`
			Deleted bool   `json:"deleted"`
			IsBot   bool   `json:"is_bot"`
			Profile struct {
				RealName string `json:"real_name"`
				Email    string `json:"email"`
			} `json:"profile"`
		} `json:"members"`
	}

	if err := c.callForm(ctx, token, "users.list", url.Values{}, &result); err != nil {
		return nil, err
	}

	members := make([]Member, 0, len(result.Members))
	for _, m := range result.Members {
		if m.Deleted || m.IsBot || m.ID == "USLACKBOT" {
			continue
		}
		members = append(members, Member{
			ID:    m.ID,
			Name:  m.Profile.RealName,
			Email: m.Profile.Email,
		})
	}

	return members, nil
}

type apiResult struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (r apiResult) err(method string) error {
	if r.OK {
		return nil
	}
	if r.Error == "" {
		return fmt.Errorf("slack %s: response not ok", method)
	}
	return fmt.Errorf("slack %s: %s", method, r.Error)
}

type resultChecker interface {
	err(method string) error
}

func (c *Client) callJSON(ctx context.Context, token, method string, payload any, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling %s payload: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	return c.do(req, token, method, result)
}

func (c *Client) callForm(ctx context.Context, token, method string, params url.Values, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method,
		strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("building %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req, token, method, result)
}

func (c *Client) do(req *http.Request, token, method string, result any) error {
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling slack %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack %s: unexpected status %s", method, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding %s response: %w", method, err)
	}

	if checker, ok := result.(resultChecker); ok {
		return checker.err(method)
	}

	return nil
}
