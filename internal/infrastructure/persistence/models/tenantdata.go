package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CompanyModel lives in the tenant schema. The company with the earliest
// created_at is the tenant's implicit default scope.
type CompanyModel struct {
	TenantScopedModel
	Name    string `gorm:"type:varchar(200);not null"`
	TaxCode string `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "companies"
}

// EmployeeModel is an hr-module entity
type EmployeeModel struct {
	CompanyScopedModel
	Name     string          `gorm:"type:varchar(200);not null"`
	Email    string          `gorm:"type:varchar(200)"`
	Position string          `gorm:"type:varchar(100)"`
	Salary   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	HiredAt  *time.Time
}

// TableName returns the table name for GORM
func (EmployeeModel) TableName() string {
	return "employees"
}

// InvoiceModel is an accounting-module entity
type InvoiceModel struct {
	CompanyScopedModel
	Number   string          `gorm:"type:varchar(50);not null;index"`
	Customer string          `gorm:"type:varchar(200)"`
	Amount   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Currency string          `gorm:"type:varchar(3);not null;default:'EUR'"`
	Status   string          `gorm:"type:varchar(20);not null;default:'draft'"`
	DueAt    *time.Time
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// AuditLogModel is the append-only audit trail. Rows are never updated or
// deleted by the application.
type AuditLogModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_scope"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_scope"`
	EntityName  string    `gorm:"type:varchar(100);not null;index:idx_audit_entity"`
	EntityID    string    `gorm:"type:varchar(100);not null;index:idx_audit_entity"`
	Action      string    `gorm:"type:varchar(20);not null"`
	ActorUserID uuid.UUID `gorm:"type:uuid;not null"`
	// OldValue and NewValue hold the full JSON snapshots for programmatic
	// consumers; ChangedFields and the display diff are derived from them.
	OldValue      []byte    `gorm:"type:jsonb"`
	NewValue      []byte    `gorm:"type:jsonb"`
	ChangedFields string    `gorm:"type:varchar(1000)"`
	DisplayDiff   string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}
