package company

import (
	"context"
	"errors"
	"fmt"

	"github.com/bizgrid/backend/internal/domain/company"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Resolver decides which company scope a request operates in. An explicit
// company choice is validated against the tenant; without one, the tenant's
// oldest company is the default.
type Resolver struct {
	companies company.Repository
	logger    *zap.Logger
}

// NewResolver creates a company scope resolver
func NewResolver(companies company.Repository, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{companies: companies, logger: logger}
}

// Resolve returns the company scope for the request. explicit carries the
// client's company choice, or nil for the tenant default.
func (r *Resolver) Resolve(ctx context.Context, tenantID uuid.UUID, explicit *uuid.UUID) (*company.Company, error) {
	if explicit != nil {
		return r.resolveExplicit(ctx, tenantID, *explicit)
	}

	c, err := r.companies.FindDefault(ctx, tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("tenant %s has no companies: %w", tenantID, shared.ErrCompanyContextMissing)
		}
		return nil, err
	}
	return c, nil
}

func (r *Resolver) resolveExplicit(ctx context.Context, tenantID, companyID uuid.UUID) (*company.Company, error) {
	c, err := r.companies.FindByID(ctx, tenantID, companyID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	// The company is not in this tenant. If the row exists at all it
	// belongs to a different tenant sharing the database, which is a
	// violation worth distinguishing from a stale reference.
	if _, unscopedErr := r.companies.FindByIDUnscoped(ctx, companyID); unscopedErr == nil {
		r.logger.Warn("cross-tenant company reference rejected",
			zap.String("tenant_id", tenantID.String()),
			zap.String("company_id", companyID.String()),
		)
		return nil, fmt.Errorf("company %s does not belong to tenant %s: %w",
			companyID, tenantID, shared.ErrCrossTenantViolation)
	}
	return nil, fmt.Errorf("company %s: %w", companyID, shared.ErrNotFound)
}
