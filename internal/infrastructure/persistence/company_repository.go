package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/bizgrid/backend/internal/domain/company"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCompanyRepository implements company.Repository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// Create saves a new company
func (r *GormCompanyRepository) Create(ctx context.Context, c *company.Company) error {
	if err := r.db.WithContext(ctx).Create(models.CompanyModelFromDomain(c)).Error; err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

// FindByID finds a company by ID within the tenant
func (r *GormCompanyRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*company.Company, error) {
	var model models.CompanyModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDUnscoped finds a company by ID across all tenants sharing the
// database. Only the scope resolver calls this, to classify lookup misses.
func (r *GormCompanyRepository) FindByIDUnscoped(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	var model models.CompanyModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindDefault returns the company created first, with the ID as a stable
// tie-break for rows sharing a creation timestamp
func (r *GormCompanyRepository) FindDefault(ctx context.Context, tenantID uuid.UUID) (*company.Company, error) {
	var model models.CompanyModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC, id ASC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns all companies of the tenant ordered by creation time
func (r *GormCompanyRepository) List(ctx context.Context, tenantID uuid.UUID) ([]*company.Company, error) {
	var rows []models.CompanyModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	companies := make([]*company.Company, len(rows))
	for i := range rows {
		companies[i] = rows[i].ToDomain()
	}
	return companies, nil
}

// Update saves changes to an existing company
func (r *GormCompanyRepository) Update(ctx context.Context, c *company.Company) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ?", c.TenantID).
		Save(models.CompanyModelFromDomain(c))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ company.Repository = (*GormCompanyRepository)(nil)
