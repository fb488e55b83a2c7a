package persistence

import (
	"context"
	"errors"

	"github.com/bizgrid/backend/internal/domain/accounting"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements accounting.Repository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Create saves a new invoice
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *accounting.Invoice) error {
	return r.db.WithContext(ctx).Create(models.InvoiceModelFromDomain(inv)).Error
}

// FindByID finds an invoice within the company scope
func (r *GormInvoiceRepository) FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*accounting.Invoice, error) {
	var model models.InvoiceModel
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

// List returns the company's invoices, newest first
func (r *GormInvoiceRepository) List(ctx context.Context, tenantID, companyID uuid.UUID) ([]*accounting.Invoice, error) {
	var rows []models.InvoiceModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND company_id = ?", tenantID, companyID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	invoices := make([]*accounting.Invoice, len(rows))
	for i := range rows {
		invoices[i] = rows[i].ToDomain()
	}
	return invoices, nil
}

// Update saves changes to an existing invoice
func (r *GormInvoiceRepository) Update(ctx context.Context, inv *accounting.Invoice) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND company_id = ?", inv.TenantID, inv.CompanyID).
		Save(models.InvoiceModelFromDomain(inv))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ accounting.Repository = (*GormInvoiceRepository)(nil)
