package models

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TenantScopedModel adds the tenant isolation key
type TenantScopedModel struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// CompanyScopedModel adds the second, in-tenant isolation key
type CompanyScopedModel struct {
	TenantScopedModel
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
}
