package company

import (
	"context"
	"strings"
	"time"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Company is a legal entity inside a tenant. Every business record carries a
// company scope in addition to the tenant scope; the company with the
// earliest creation time acts as the tenant's default scope when a request
// names none.
type Company struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Name      string    `json:"name"`
	TaxCode   string    `json:"tax_code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCompany creates a company scoped to the tenant
func NewCompany(tenantID uuid.UUID, name, taxCode string) (*Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Company name is required")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Company name must not exceed 200 characters")
	}

	now := time.Now()
	return &Company{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      name,
		TaxCode:   strings.TrimSpace(taxCode),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Rename changes the company's display name
func (c *Company) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError(shared.CodeValidation, "Company name is required")
	}
	c.Name = name
	c.UpdatedAt = time.Now()
	return nil
}

// Repository provides access to the tenant's companies
type Repository interface {
	// Create saves a new company
	Create(ctx context.Context, company *Company) error

	// FindByID finds a company by ID within the tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Company, error)

	// FindByIDUnscoped finds a company by ID ignoring the tenant filter.
	// Used only to tell a cross-tenant reference apart from a missing one;
	// callers must never hand the result to a request.
	FindByIDUnscoped(ctx context.Context, id uuid.UUID) (*Company, error)

	// FindDefault returns the tenant's default company, the one created
	// first. Ties on creation time break on the smaller ID so the choice
	// is stable.
	FindDefault(ctx context.Context, tenantID uuid.UUID) (*Company, error)

	// List returns all companies of the tenant ordered by creation time
	List(ctx context.Context, tenantID uuid.UUID) ([]*Company, error)

	// Update saves changes to an existing company
	Update(ctx context.Context, company *Company) error
}
