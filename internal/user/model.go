package user

import (
	"time"

	"github.com/google/uuid"
)

// Roles assignable to a user. Every team is anchored by exactly one admin.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidRole reports whether the given role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// User represents a row in the users table. Email is stored lowercase and is
// unique case-insensitively. PasswordHash and RefreshToken never appear in
// outward-facing serializations.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Role         string
	TeamID       uuid.UUID
	IsActive     bool
	IsInvited    bool
	InvitedBy    *uuid.UUID
	InvitedAt    *time.Time
	SlackUserID  *string
	RefreshToken *string
	LastLoginAt  time.Time
	CreatedAt    time.Time
}
