package team

import (
	"time"

	"github.com/google/uuid"
)

// Team represents a row in the teams table. Each team is anchored by exactly
// one admin user referenced by AdminID.
type Team struct {
	ID        uuid.UUID
	Name      string
	AdminID   *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}
