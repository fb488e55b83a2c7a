package persistence

import (
	"context"
	"errors"

	"github.com/bizgrid/backend/internal/domain/hr"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEmployeeRepository implements hr.Repository using GORM.
// Every query carries both isolation keys; a record reachable with the wrong
// tenant or company simply does not exist from the caller's point of view.
type GormEmployeeRepository struct {
	db *gorm.DB
}

// NewGormEmployeeRepository creates a new GormEmployeeRepository
func NewGormEmployeeRepository(db *gorm.DB) *GormEmployeeRepository {
	return &GormEmployeeRepository{db: db}
}

// Create saves a new employee
func (r *GormEmployeeRepository) Create(ctx context.Context, e *hr.Employee) error {
	return r.db.WithContext(ctx).Create(models.EmployeeModelFromDomain(e)).Error
}

// FindByID finds an employee within the company scope
func (r *GormEmployeeRepository) FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*hr.Employee, error) {
	var model models.EmployeeModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND company_id = ? AND id = ?", tenantID, companyID, id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns the company's employees ordered by name
func (r *GormEmployeeRepository) List(ctx context.Context, tenantID, companyID uuid.UUID) ([]*hr.Employee, error) {
	var rows []models.EmployeeModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND company_id = ?", tenantID, companyID).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	employees := make([]*hr.Employee, len(rows))
	for i := range rows {
		employees[i] = rows[i].ToDomain()
	}
	return employees, nil
}

// Update saves changes to an existing employee
func (r *GormEmployeeRepository) Update(ctx context.Context, e *hr.Employee) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND company_id = ?", e.TenantID, e.CompanyID).
		Save(models.EmployeeModelFromDomain(e))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes an employee within the company scope
func (r *GormEmployeeRepository) Delete(ctx context.Context, tenantID, companyID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND company_id = ? AND id = ?", tenantID, companyID, id).
		Delete(&models.EmployeeModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ hr.Repository = (*GormEmployeeRepository)(nil)
