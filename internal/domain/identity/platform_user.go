package identity

import (
	"context"
	"strings"
	"time"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PlatformUser is a control-plane login identity. It belongs to exactly one
// tenant; the tenant claim in every issued token comes from here.
type PlatformUser struct {
	ID           uuid.UUID `json:"id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewPlatformUser creates a user for the tenant with a precomputed password hash
func NewPlatformUser(tenantID uuid.UUID, email, passwordHash, role string) (*PlatformUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, shared.NewDomainError(shared.CodeValidation, "A valid email address is required")
	}
	if passwordHash == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Password hash is required")
	}
	if role == "" {
		role = "member"
	}

	now := time.Now()
	return &PlatformUser{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// CanLogin reports whether the account may authenticate
func (u *PlatformUser) CanLogin() bool {
	return u.Active
}

// PlatformUserRepository provides access to control-plane users
type PlatformUserRepository interface {
	Create(ctx context.Context, user *PlatformUser) error
	FindByEmail(ctx context.Context, email string) (*PlatformUser, error)
	FindByID(ctx context.Context, id uuid.UUID) (*PlatformUser, error)
}
