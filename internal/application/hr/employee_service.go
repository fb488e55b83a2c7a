package hr

import (
	"context"
	"time"

	appaudit "github.com/bizgrid/backend/internal/application/audit"
	"github.com/bizgrid/backend/internal/domain/audit"
	"github.com/bizgrid/backend/internal/domain/hr"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateEmployeeInput carries the fields for a new employee
type CreateEmployeeInput struct {
	Name     string          `json:"name" binding:"required,max=200"`
	Email    string          `json:"email" binding:"omitempty,email"`
	Position string          `json:"position" binding:"max=100"`
	Salary   decimal.Decimal `json:"salary"`
	HiredAt  *time.Time      `json:"hired_at"`
}

// UpdateEmployeeInput carries the mutable fields of an employee
type UpdateEmployeeInput struct {
	Name     *string          `json:"name" binding:"omitempty,max=200"`
	Email    *string          `json:"email" binding:"omitempty,email"`
	Position *string          `json:"position" binding:"omitempty,max=100"`
	Salary   *decimal.Decimal `json:"salary"`
}

// EmployeeService implements the hr module's employee operations. It is
// constructed per request around the tenant's repositories.
type EmployeeService struct {
	employees hr.Repository
	trail     audit.Repository
	recorder  *appaudit.Recorder
	logger    *zap.Logger
}

// NewEmployeeService creates an employee service over the request's tenant scope
func NewEmployeeService(employees hr.Repository, trail audit.Repository, recorder *appaudit.Recorder, logger *zap.Logger) *EmployeeService {
	return &EmployeeService{employees: employees, trail: trail, recorder: recorder, logger: logger}
}

// Create adds an employee to the company scope
func (s *EmployeeService) Create(ctx context.Context, scope shared.Scope, input CreateEmployeeInput) (*hr.Employee, error) {
	employee, err := hr.NewEmployee(scope.TenantID, scope.CompanyID, input.Name, input.Salary)
	if err != nil {
		return nil, err
	}
	employee.Email = input.Email
	employee.Position = input.Position
	employee.HiredAt = input.HiredAt

	if err := s.employees.Create(ctx, employee); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, s.trail, appaudit.Entry{
		TenantID:    scope.TenantID,
		CompanyID:   scope.CompanyID,
		ActorUserID: scope.UserID,
		EntityName:  "employee",
		EntityID:    employee.ID.String(),
		Action:      audit.ActionCreate,
		NewValue:    employee,
	})
	return employee, nil
}

// Get returns one employee in the company scope
func (s *EmployeeService) Get(ctx context.Context, scope shared.Scope, id uuid.UUID) (*hr.Employee, error) {
	return s.employees.FindByID(ctx, scope.TenantID, scope.CompanyID, id)
}

// List returns the company's employees
func (s *EmployeeService) List(ctx context.Context, scope shared.Scope) ([]*hr.Employee, error) {
	return s.employees.List(ctx, scope.TenantID, scope.CompanyID)
}

// Update applies the provided fields to an employee
func (s *EmployeeService) Update(ctx context.Context, scope shared.Scope, id uuid.UUID, input UpdateEmployeeInput) (*hr.Employee, error) {
	employee, err := s.employees.FindByID(ctx, scope.TenantID, scope.CompanyID, id)
	if err != nil {
		return nil, err
	}
	before := *employee

	if input.Name != nil {
		employee.Name = *input.Name
	}
	if input.Email != nil {
		employee.Email = *input.Email
	}
	if input.Position != nil {
		employee.Position = *input.Position
	}
	if input.Salary != nil {
		if err := employee.AdjustSalary(*input.Salary); err != nil {
			return nil, err
		}
	}
	employee.UpdatedAt = time.Now()

	if err := s.employees.Update(ctx, employee); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, s.trail, appaudit.Entry{
		TenantID:    scope.TenantID,
		CompanyID:   scope.CompanyID,
		ActorUserID: scope.UserID,
		EntityName:  "employee",
		EntityID:    employee.ID.String(),
		Action:      audit.ActionUpdate,
		OldValue:    &before,
		NewValue:    employee,
	})
	return employee, nil
}

// Delete removes an employee from the company scope
func (s *EmployeeService) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	employee, err := s.employees.FindByID(ctx, scope.TenantID, scope.CompanyID, id)
	if err != nil {
		return err
	}

	if err := s.employees.Delete(ctx, scope.TenantID, scope.CompanyID, id); err != nil {
		return err
	}

	s.recorder.Record(ctx, s.trail, appaudit.Entry{
		TenantID:    scope.TenantID,
		CompanyID:   scope.CompanyID,
		ActorUserID: scope.UserID,
		EntityName:  "employee",
		EntityID:    id.String(),
		Action:      audit.ActionDelete,
		OldValue:    employee,
	})
	return nil
}
