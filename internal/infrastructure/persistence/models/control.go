package models

import (
	"strings"

	"github.com/google/uuid"
)

// TenantModel is the control-plane record for a provisioned tenant. It carries
// the connection descriptor for the tenant's data partition and the set of
// enabled modules. Provisioning is an external process; this layer reads only.
type TenantModel struct {
	BaseModel
	Slug     string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Name     string `gorm:"type:varchar(200);not null"`
	DBDriver string `gorm:"column:db_driver;type:varchar(20);not null;default:'postgres'"`
	DBDSN    string `gorm:"column:db_dsn;type:varchar(500);not null"`
	// Modules is a comma-separated list of enabled module names, e.g. "hr,accounting"
	Modules string `gorm:"type:varchar(500)"`
	Active  bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ModuleList splits the serialized module list
func (m *TenantModel) ModuleList() []string {
	if m.Modules == "" {
		return nil
	}
	parts := strings.Split(m.Modules, ",")
	modules := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			modules = append(modules, p)
		}
	}
	return modules
}

// UserModel is the control-plane record for a platform user
type UserModel struct {
	BaseModel
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Email        string    `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	DisplayName  string    `gorm:"type:varchar(200)"`
	Role         string    `gorm:"type:varchar(50);not null;default:'member'"`
	Active       bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}
