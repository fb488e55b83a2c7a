package hr

import (
	"context"
	"strings"
	"time"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ModuleName is the enablement key for the hr module
const ModuleName = "hr"

// Employee is an hr-module record, double-keyed by tenant and company
type Employee struct {
	ID        uuid.UUID       `json:"id"`
	TenantID  uuid.UUID       `json:"tenant_id"`
	CompanyID uuid.UUID       `json:"company_id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Position  string          `json:"position"`
	Salary    decimal.Decimal `json:"salary"`
	HiredAt   *time.Time      `json:"hired_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewEmployee creates an employee in the given company scope
func NewEmployee(tenantID, companyID uuid.UUID, name string, salary decimal.Decimal) (*Employee, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Employee name is required")
	}
	if salary.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Salary must not be negative")
	}

	now := time.Now()
	return &Employee{
		ID:        uuid.New(),
		TenantID:  tenantID,
		CompanyID: companyID,
		Name:      name,
		Salary:    salary,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AdjustSalary sets a new salary
func (e *Employee) AdjustSalary(salary decimal.Decimal) error {
	if salary.IsNegative() {
		return shared.NewDomainError(shared.CodeValidation, "Salary must not be negative")
	}
	e.Salary = salary
	e.UpdatedAt = time.Now()
	return nil
}

// Repository provides access to employees within a company scope
type Repository interface {
	Create(ctx context.Context, employee *Employee) error
	FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*Employee, error)
	List(ctx context.Context, tenantID, companyID uuid.UUID) ([]*Employee, error)
	Update(ctx context.Context, employee *Employee) error
	Delete(ctx context.Context, tenantID, companyID, id uuid.UUID) error
}
