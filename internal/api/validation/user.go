package validation

import (
	"strings"

	"github.com/standupsync/standupsync/internal/user"
)

// InviteRequest mirrors the fields needed for invite validation.
type InviteRequest struct {
	Email string
	Name  string
	Role  string
}

// ValidateInviteRequest validates the fields of an invite request. Role is
// optional and defaults to "user" downstream.
func ValidateInviteRequest(req InviteRequest) []FieldError {
	var errs []FieldError

	errs = append(errs, validateEmail(req.Email)...)

	if len(req.Name) > 255 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	if req.Role != "" && !user.ValidRole(req.Role) {
		errs = append(errs, FieldError{Field: "role", Message: "role must be \"admin\" or \"user\""})
	}

	return errs
}

// UpdateRoleRequest mirrors the fields needed for role-update validation.
type UpdateRoleRequest struct {
	Role string
}

// ValidateUpdateRoleRequest validates the fields of a role-update request.
func ValidateUpdateRoleRequest(req UpdateRoleRequest) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(req.Role) == "" {
		errs = append(errs, FieldError{Field: "role", Message: "role is required"})
	} else if !user.ValidRole(req.Role) {
		errs = append(errs, FieldError{Field: "role", Message: "role must be \"admin\" or \"user\""})
	}

	return errs
}
