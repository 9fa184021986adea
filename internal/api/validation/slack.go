package validation

import "strings"

// ConfigureSlackRequest mirrors the fields needed for Slack configure
// validation.
type ConfigureSlackRequest struct {
	AccessToken string
	ChannelID   string
	ChannelName string
}

// ValidateConfigureSlackRequest validates the fields of a Slack configure
// request.
func ValidateConfigureSlackRequest(req ConfigureSlackRequest) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(req.AccessToken) == "" {
		errs = append(errs, FieldError{Field: "accessToken", Message: "accessToken is required"})
	}
	if strings.TrimSpace(req.ChannelID) == "" {
		errs = append(errs, FieldError{Field: "channelId", Message: "channelId is required"})
	}

	return errs
}
