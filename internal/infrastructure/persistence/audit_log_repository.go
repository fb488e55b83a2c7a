package persistence

import (
	"context"
	"fmt"

	"github.com/bizgrid/backend/internal/domain/audit"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAuditLogRepository implements audit.Repository using GORM. The trail
// is append-only; no update or delete path exists here on purpose.
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Create appends a record to the trail
func (r *GormAuditLogRepository) Create(ctx context.Context, record *audit.Record) error {
	if err := r.db.WithContext(ctx).Create(models.AuditLogModelFromDomain(record)).Error; err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}

// Find returns records matching the query, newest first
func (r *GormAuditLogRepository) Find(ctx context.Context, q audit.Query) ([]*audit.Record, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.AuditLogModel{}).
		Where("tenant_id = ? AND company_id = ?", q.TenantID, q.CompanyID)

	if q.EntityName != "" {
		query = query.Where("entity_name = ?", q.EntityName)
	}
	if q.EntityID != "" {
		query = query.Where("entity_id = ?", q.EntityID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := q.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var rows []models.AuditLogModel
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(q.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	records := make([]*audit.Record, len(rows))
	for i := range rows {
		records[i] = rows[i].ToDomain()
	}
	return records, total, nil
}

var _ audit.Repository = (*GormAuditLogRepository)(nil)
