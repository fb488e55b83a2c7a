package models

import (
	"strings"

	"github.com/bizgrid/backend/internal/domain/accounting"
	"github.com/bizgrid/backend/internal/domain/audit"
	"github.com/bizgrid/backend/internal/domain/company"
	"github.com/bizgrid/backend/internal/domain/hr"
	"github.com/bizgrid/backend/internal/domain/identity"
)

// CompanyModelFromDomain converts a domain company to its persistence model
func CompanyModelFromDomain(c *company.Company) *CompanyModel {
	return &CompanyModel{
		TenantScopedModel: TenantScopedModel{
			BaseModel: BaseModel{ID: c.ID, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt},
			TenantID:  c.TenantID,
		},
		Name:    c.Name,
		TaxCode: c.TaxCode,
	}
}

// ToDomain converts the model back to a domain company
func (m *CompanyModel) ToDomain() *company.Company {
	return &company.Company{
		ID:        m.ID,
		TenantID:  m.TenantID,
		Name:      m.Name,
		TaxCode:   m.TaxCode,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// EmployeeModelFromDomain converts a domain employee to its persistence model
func EmployeeModelFromDomain(e *hr.Employee) *EmployeeModel {
	return &EmployeeModel{
		CompanyScopedModel: CompanyScopedModel{
			TenantScopedModel: TenantScopedModel{
				BaseModel: BaseModel{ID: e.ID, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt},
				TenantID:  e.TenantID,
			},
			CompanyID: e.CompanyID,
		},
		Name:     e.Name,
		Email:    e.Email,
		Position: e.Position,
		Salary:   e.Salary,
		HiredAt:  e.HiredAt,
	}
}

// ToDomain converts the model back to a domain employee
func (m *EmployeeModel) ToDomain() *hr.Employee {
	return &hr.Employee{
		ID:        m.ID,
		TenantID:  m.TenantID,
		CompanyID: m.CompanyID,
		Name:      m.Name,
		Email:     m.Email,
		Position:  m.Position,
		Salary:    m.Salary,
		HiredAt:   m.HiredAt,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// InvoiceModelFromDomain converts a domain invoice to its persistence model
func InvoiceModelFromDomain(i *accounting.Invoice) *InvoiceModel {
	return &InvoiceModel{
		CompanyScopedModel: CompanyScopedModel{
			TenantScopedModel: TenantScopedModel{
				BaseModel: BaseModel{ID: i.ID, CreatedAt: i.CreatedAt, UpdatedAt: i.UpdatedAt},
				TenantID:  i.TenantID,
			},
			CompanyID: i.CompanyID,
		},
		Number:   i.Number,
		Customer: i.Customer,
		Amount:   i.Amount,
		Currency: i.Currency,
		Status:   string(i.Status),
		DueAt:    i.DueAt,
	}
}

// ToDomain converts the model back to a domain invoice
func (m *InvoiceModel) ToDomain() *accounting.Invoice {
	return &accounting.Invoice{
		ID:        m.ID,
		TenantID:  m.TenantID,
		CompanyID: m.CompanyID,
		Number:    m.Number,
		Customer:  m.Customer,
		Amount:    m.Amount,
		Currency:  m.Currency,
		Status:    accounting.InvoiceStatus(m.Status),
		DueAt:     m.DueAt,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// AuditLogModelFromDomain converts a domain audit record to its persistence model
func AuditLogModelFromDomain(r *audit.Record) *AuditLogModel {
	return &AuditLogModel{
		ID:            r.ID,
		TenantID:      r.TenantID,
		CompanyID:     r.CompanyID,
		EntityName:    r.EntityName,
		EntityID:      r.EntityID,
		Action:        string(r.Action),
		ActorUserID:   r.ActorUserID,
		OldValue:      r.OldValue,
		NewValue:      r.NewValue,
		ChangedFields: strings.Join(r.ChangedFields, ","),
		DisplayDiff:   r.DisplayDiff,
		CreatedAt:     r.CreatedAt,
	}
}

// ToDomain converts the model back to a domain audit record
func (m *AuditLogModel) ToDomain() *audit.Record {
	var fields []string
	if m.ChangedFields != "" {
		fields = strings.Split(m.ChangedFields, ",")
	}
	return &audit.Record{
		ID:            m.ID,
		TenantID:      m.TenantID,
		CompanyID:     m.CompanyID,
		EntityName:    m.EntityName,
		EntityID:      m.EntityID,
		Action:        audit.Action(m.Action),
		ActorUserID:   m.ActorUserID,
		OldValue:      m.OldValue,
		NewValue:      m.NewValue,
		ChangedFields: fields,
		DisplayDiff:   m.DisplayDiff,
		CreatedAt:     m.CreatedAt,
	}
}

// UserModelFromDomain converts a domain platform user to its persistence model
func UserModelFromDomain(u *identity.PlatformUser) *UserModel {
	return &UserModel{
		BaseModel:    BaseModel{ID: u.ID, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt},
		TenantID:     u.TenantID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		DisplayName:  u.DisplayName,
		Role:         u.Role,
		Active:       u.Active,
	}
}

// ToDomain converts the model back to a domain platform user
func (m *UserModel) ToDomain() *identity.PlatformUser {
	return &identity.PlatformUser{
		ID:           m.ID,
		TenantID:     m.TenantID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		DisplayName:  m.DisplayName,
		Role:         m.Role,
		Active:       m.Active,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

