package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standupsync/standupsync/internal/api/validation"
)

func fieldNames(errs []validation.FieldError) []string {
	names := make([]string, 0, len(errs))
	for _, e := range errs {
		names = append(names, e.Field)
	}
	return names
}

func TestValidateLoginRequest(t *testing.T) {
	assert.Empty(t, validation.ValidateLoginRequest(validation.LoginRequest{
		Email: "ada@example.com", Password: "secret",
	}))

	errs := validation.ValidateLoginRequest(validation.LoginRequest{})
	assert.ElementsMatch(t, []string{"email", "password"}, fieldNames(errs))

	errs = validation.ValidateLoginRequest(validation.LoginRequest{Email: "   ", Password: "x"})
	assert.Equal(t, []string{"email"}, fieldNames(errs))
}

func TestValidateRegisterRequest(t *testing.T) {
	valid := validation.RegisterRequest{Email: "ada@example.com", Password: "longenough", Name: "Ada"}
	assert.Empty(t, validation.ValidateRegisterRequest(valid))

	t.Run("short password", func(t *testing.T) {
		req := valid
		req.Password = "short"
		errs := validation.ValidateRegisterRequest(req)
		require.Len(t, errs, 1)
		assert.Equal(t, "password", errs[0].Field)
		assert.Contains(t, errs[0].Message, "at least 8")
	})

	t.Run("malformed email", func(t *testing.T) {
		req := valid
		req.Email = "not-an-address"
		errs := validation.ValidateRegisterRequest(req)
		assert.Equal(t, []string{"email"}, fieldNames(errs))
	})

	t.Run("name too long", func(t *testing.T) {
		req := valid
		req.Name = strings.Repeat("a", 256)
		errs := validation.ValidateRegisterRequest(req)
		assert.Equal(t, []string{"name"}, fieldNames(errs))
	})
}

func TestValidateInviteRequest(t *testing.T) {
	assert.Empty(t, validation.ValidateInviteRequest(validation.InviteRequest{
		Email: "new@example.com", Name: "New", Role: "user",
	}))

	// Role is optional.
	assert.Empty(t, validation.ValidateInviteRequest(validation.InviteRequest{
		Email: "new@example.com",
	}))

	errs := validation.ValidateInviteRequest(validation.InviteRequest{
		Email: "new@example.com", Role: "superuser",
	})
	assert.Equal(t, []string{"role"}, fieldNames(errs))
}

func TestValidateUpdateRoleRequest(t *testing.T) {
	assert.Empty(t, validation.ValidateUpdateRoleRequest(validation.UpdateRoleRequest{Role: "admin"}))

	errs := validation.ValidateUpdateRoleRequest(validation.UpdateRoleRequest{})
	assert.Equal(t, []string{"role"}, fieldNames(errs))

	errs = validation.ValidateUpdateRoleRequest(validation.UpdateRoleRequest{Role: "owner"})
	assert.Equal(t, []string{"role"}, fieldNames(errs))
}

func TestValidateCreateStandupRequest(t *testing.T) {
	assert.Empty(t, validation.ValidateCreateStandupRequest(validation.CreateStandupRequest{Date: "2026-03-15"}))
	assert.Empty(t, validation.ValidateCreateStandupRequest(validation.CreateStandupRequest{Date: "2026-03-15T22:30:00-07:00"}))

	errs := validation.ValidateCreateStandupRequest(validation.CreateStandupRequest{})
	assert.Equal(t, []string{"date"}, fieldNames(errs))

	errs = validation.ValidateCreateStandupRequest(validation.CreateStandupRequest{Date: "15/03/2026"})
	assert.Equal(t, []string{"date"}, fieldNames(errs))
}

func TestValidateRangeRequest(t *testing.T) {
	assert.Empty(t, validation.ValidateRangeRequest(validation.RangeRequest{
		StartDate: "2026-03-01", EndDate: "2026-03-07",
	}))

	// Single-day ranges are allowed.
	assert.Empty(t, validation.ValidateRangeRequest(validation.RangeRequest{
		StartDate: "2026-03-01", EndDate: "2026-03-01",
	}))

	errs := validation.ValidateRangeRequest(validation.RangeRequest{})
	assert.ElementsMatch(t, []string{"startDate", "endDate"}, fieldNames(errs))

	errs = validation.ValidateRangeRequest(validation.RangeRequest{
		StartDate: "2026-03-07", EndDate: "2026-03-01",
	})
	require.Len(t, errs, 1)
	assert.Equal(t, "endDate", errs[0].Field)
	assert.Contains(t, errs[0].Message, "must not be before")
}

func TestValidateConfigureSlackRequest(t *testing.T) {
	assert.Empty(t, validation.ValidateConfigureSlackRequest(validation.ConfigureSlackRequest{
		AccessToken: "xoxb-token", ChannelID: "C123", ChannelName: "standups",
	}))

	errs := validation.ValidateConfigureSlackRequest(validation.ConfigureSlackRequest{})
	assert.ElementsMatch(t, []string{"accessToken", "channelId"}, fieldNames(errs))
}
