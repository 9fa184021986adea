package user

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/standupsync/standupsync/internal/team"
)

const tempPasswordLength = 12

// Service provides user lifecycle operations. Authorization policy (same-team,
// admin-only, no self-mutation) is enforced by the HTTP handlers calling into
// this service, not here.
type Service struct {
	userRepo   Repository
	teamRepo   team.Repository
	bcryptCost int
}

// NewService creates a new user Service.
func NewService(userRepo Repository, teamRepo team.Repository, bcryptCost int) *Service {
	return &Service{
		userRepo:   userRepo,
		teamRepo:   teamRepo,
		bcryptCost: bcryptCost,
	}
}

// Register creates a self-registered user. The first user ever created, and
// any registration without an inviter, becomes an admin anchoring a fresh
// team.
func (s *Service) Register(ctx context.Context, email, name, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	teamName := name
	if teamName == "" {
		teamName = localPart(email)
	}

	t := &team.Team{Name: teamName + "'s team"}
	if err := s.teamRepo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("creating team: %w", err)
	}

	u := &User{
		Email:        strings.ToLower(email),
		Name:         name,
		PasswordHash: string(hash),
		Role:         RoleAdmin,
		TeamID:       t.ID,
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		// The team record is orphaned on failure; it has no members and is
		// invisible to any team-scoped query.
		return nil, err
	}

	if err := s.teamRepo.SetAdmin(ctx, t.ID, u.ID); err != nil {
		return nil, fmt.Errorf("anchoring team admin: %w", err)
	}

	slog.Info("user registered", "email", u.Email, "role", u.Role, "teamId", u.TeamID)
	return u, nil
}

// Invite creates an invited user on the inviter's team with a generated
// temporary password. The raw temporary password is returned exactly once for
// out-of-band delivery.
func (s *Service) Invite(ctx context.Context, inviter *User, email, name, role string) (*User, string, error) {
	if role == "" {
		role = RoleUser
	}
	if name == "" {
		name = localPart(email)
	}

	tempPassword, err := generateTempPassword()
	if err != nil {
		return nil, "", fmt.Errorf("generating temporary password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing temporary password: %w", err)
	}

	now := time.Now().UTC()
	u := &User{
		Email:        strings.ToLower(email),
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
		TeamID:       inviter.TeamID,
		IsActive:     true,
		IsInvited:    true,
		InvitedBy:    &inviter.ID,
		InvitedAt:    &now,
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, "", err
	}

	slog.Info("user invited", "email", u.Email, "invitedBy", inviter.Email, "teamId", u.TeamID)
	return u, tempPassword, nil
}

// UpdateRole changes a user's role and returns the updated record.
func (s *Service) UpdateRole(ctx context.Context, id uuid.UUID, role string) (*User, error) {
	if err := s.userRepo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, id)
}

// SetActive flips a user's active flag and returns the updated record.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, isActive bool) (*User, error) {
	if err := s.userRepo.UpdateActive(ctx, id, isActive); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, id)
}

// LinkSlackUser records the Slack user id on the account so future slash
// commands resolve directly by external identity.
func (s *Service) LinkSlackUser(ctx context.Context, id uuid.UUID, slackUserID string) error {
	return s.userRepo.UpdateSlackUserID(ctx, id, slackUserID)
}

// Delete removes a user permanently.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.userRepo.Delete(ctx, id)
}

const tempPasswordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateTempPassword() (string, error) {
	var b strings.Builder
	for i := 0; i < tempPasswordLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(tempPasswordAlphabet))))
		if err != nil {
			return "", err
		}
		b.WriteByte(tempPasswordAlphabet[n.Int64()])
	}
	return b.String(), nil
}

func localPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
