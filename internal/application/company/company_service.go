package company

import (
	"context"

	appaudit "github.com/bizgrid/backend/internal/application/audit"
	"github.com/bizgrid/backend/internal/domain/audit"
	"github.com/bizgrid/backend/internal/domain/company"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateCompanyInput carries the fields for a new company
type CreateCompanyInput struct {
	Name    string `json:"name" binding:"required,max=200"`
	TaxCode string `json:"tax_code" binding:"max=50"`
}

// Service implements company management inside a tenant
type Service struct {
	companies company.Repository
	trail     audit.Repository
	recorder  *appaudit.Recorder
	logger    *zap.Logger
}

// NewService creates a company service over the request's tenant scope
func NewService(companies company.Repository, trail audit.Repository, recorder *appaudit.Recorder, logger *zap.Logger) *Service {
	return &Service{companies: companies, trail: trail, recorder: recorder, logger: logger}
}

// Create adds a company to the tenant
func (s *Service) Create(ctx context.Context, scope shared.Scope, input CreateCompanyInput) (*company.Company, error) {
	c, err := company.NewCompany(scope.TenantID, input.Name, input.TaxCode)
	if err != nil {
		return nil, err
	}

	if err := s.companies.Create(ctx, c); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, s.trail, appaudit.Entry{
		TenantID:    scope.TenantID,
		CompanyID:   c.ID,
		ActorUserID: scope.UserID,
		EntityName:  "company",
		EntityID:    c.ID.String(),
		Action:      audit.ActionCreate,
		NewValue:    c,
	})
	return c, nil
}

// List returns the tenant's companies, oldest first
func (s *Service) List(ctx context.Context, scope shared.Scope) ([]*company.Company, error) {
	return s.companies.List(ctx, scope.TenantID)
}

// Get returns one company of the tenant
func (s *Service) Get(ctx context.Context, scope shared.Scope, id uuid.UUID) (*company.Company, error) {
	return s.companies.FindByID(ctx, scope.TenantID, id)
}

// Rename changes a company's display name
func (s *Service) Rename(ctx context.Context, scope shared.Scope, id uuid.UUID, name string) (*company.Company, error) {
	c, err := s.companies.FindByID(ctx, scope.TenantID, id)
	if err != nil {
		return nil, err
	}
	before := *c

	if err := c.Rename(name); err != nil {
		return nil, err
	}
	if err := s.companies.Update(ctx, c); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, s.trail, appaudit.Entry{
		TenantID:    scope.TenantID,
		CompanyID:   c.ID,
		ActorUserID: scope.UserID,
		EntityName:  "company",
		EntityID:    c.ID.String(),
		Action:      audit.ActionUpdate,
		OldValue:    &before,
		NewValue:    c,
	})
	return c, nil
}
