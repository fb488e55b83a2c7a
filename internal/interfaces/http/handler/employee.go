package handler

import (
	appaudit "github.com/bizgrid/backend/internal/application/audit"
	apphr "github.com/bizgrid/backend/internal/application/hr"
	"github.com/bizgrid/backend/internal/domain/hr"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/infrastructure/persistence"
	"github.com/bizgrid/backend/internal/interfaces/http/tenantctx"
	"github.com/gin-gonic/gin"
)

// EmployeeHandler serves the hr module's employee endpoints
type EmployeeHandler struct {
	orch     *tenantctx.Orchestrator
	recorder *appaudit.Recorder
}

// NewEmployeeHandler creates a new EmployeeHandler
func NewEmployeeHandler(orch *tenantctx.Orchestrator, recorder *appaudit.Recorder) *EmployeeHandler {
	return &EmployeeHandler{orch: orch, recorder: recorder}
}

// RegisterRoutes registers the employee routes behind the hr module gate
func (h *EmployeeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	opts := tenantctx.Options{Required: true, Module: hr.ModuleName}
	employees := rg.Group("/hr/employees")
	{
		employees.GET("", h.orch.Wrap(h.List, opts))
		employees.POST("", h.orch.Wrap(h.Create, opts))
		employees.GET("/:id", h.orch.Wrap(h.Get, opts))
		employees.PUT("/:id", h.orch.Wrap(h.Update, opts))
		employees.DELETE("/:id", h.orch.Wrap(h.Delete, opts))
	}
}

func (h *EmployeeHandler) service(rc *tenantctx.RequestContext) *apphr.EmployeeService {
	return apphr.NewEmployeeService(
		persistence.NewGormEmployeeRepository(rc.DB),
		persistence.NewGormAuditLogRepository(rc.DB),
		h.recorder,
		rc.Log,
	)
}

// List returns the company's employees
func (h *EmployeeHandler) List(c *gin.Context, rc *tenantctx.RequestContext) (interface{}, error) {
	return h.service(rc).List(c.Request.Context(), rc.Scope())
}

// Create adds an employee
func (h *EmployeeHandler) Create(c *gin.Context, rc *tenantctx.RequestContext) (interface{}, error) {
	var input apphr.CreateEmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		return nil, shared.NewDomainError(shared.CodeValidation, err.Error())
	}
	return h.service(rc).Create(c.Request.Context(), rc.Scope(), input)
}

// Get returns one employee
func (h *EmployeeHandler) Get(c *gin.Context, rc *tenantctx.RequestContext) (interface{}, error) {
	id, err := parseIDParam(c)
	if err != nil {
		return nil, err
	}
	return h.service(rc).Get(c.Request.Context(), rc.Scope(), id)
}

// Update applies changes to an employee
func (h *EmployeeHandler) Update(c *gin.Context, rc *tenantctx.RequestContext) (interface{}, error) {
	id, err := parseIDParam(c)
	if err != nil {
		return nil, err
	}
	var input apphr.UpdateEmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		return nil, shared.NewDomainError(shared.CodeValidation, err.Error())
	}
	return h.service(rc).Update(c.Request.Context(), rc.Scope(), id, input)
}

// Delete removes an employee
func (h *EmployeeHandler) Delete(c *gin.Context, rc *tenantctx.RequestContext) (interface{}, error) {
	id, err := parseIDParam(c)
	if err != nil {
		return nil, err
	}
	if err := h.service(rc).Delete(c.Request.Context(), rc.Scope(), id); err != nil {
		return nil, err
	}
	return gin.H{"deleted": true}, nil
}
