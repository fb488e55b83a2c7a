package handler

import (
	appaudit "github.com/bizgrid/backend/internal/application/audit"
	appcompany "github.com/bizgrid/backend/internal/application/company"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/infrastructure/persistence"
	"github.com/bizgrid/backend/internal/interfaces/http/dto"
	"github.com/bizgrid/backend/internal/interfaces/http/tenantctx"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CompanyHandler serves company management inside a tenant. Creation and
// listing skip company scope resolution so a fresh tenant can bootstrap its
// first company.
type CompanyHandler struct {
	orch     *tenantctx.Orchestrator
	recorder *appaudit.Recorder
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(orch *tenantctx.Orchestrator, recorder *appaudit.Recorder) *CompanyHandler {
	return &CompanyHandler{orch: orch, recorder: recorder}
}

// RegisterRoutes registers the company routes
func (h *CompanyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	companies := rg.Group("/companies")
	{
		companyless := tenantctx.Options{Required: true, SkipCompany: true}
		companies.GET("", h.orch.Wrap(h.List, companyless))
		companies.POST("", h.orch.Wrap(h.Create, companyless))
		companies.GET("/:id", h.orch.Wrap(h.Get, companyless))
		companies.PUT("/:id", h.orch.Wrap(h.Rename, companyless))
	}
}

func (h *CompanyHandler) service(rc *tenantctx.RequestContext) *appcompany.Service {
	return appcompany.NewService(
		persistence.NewGormCompanyRepository(rc.DB),
		persistence.NewGormAuditLogRepository(rc.DB),
		h.recorder,
		rc.Log,
	)
}

// List returns the tenant's companies
func (h *CompanyHandler) List(c *gin.Context, rc *tenantctx.RequestContext) (interface{}, error) {
	return h.service(rc).List(c.Request.Context(), rc.Scope())
}

// Create adds a company to the tenant
func (h *CompanyHandler) Create(c *gin.Context, rc *tenantctx.RequestContext) (interface{}, error) {
	var input appcompany.CreateCompanyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		return nil, shared.NewDomainError(shared.CodeValidation, err.Error())
	}
	return h.service(rc).Create(c.Request.Context(), rc.Scope(), input)
}

// Get returns one company
func (h *CompanyHandler) Get(c *gin.Context, rc *tenantctx.RequestContext) (interface{}, error) {
	id, err := parseIDParam(c)
	if err != nil {
		return nil, err
	}
	return h.service(rc).Get(c.Request.Context(), rc.Scope(), id)
}

// RenameCompanyRequest carries the new company name
type RenameCompanyRequest struct {
	Name string `json:"name" binding:"required,max=200"`
}

// Rename changes a company's display name
func (h *CompanyHandler) Rename(c *gin.Context, rc *tenantctx.RequestContext) (interface{}, error) {
	id, err := parseIDParam(c)
	if err != nil {
		return nil, err
	}
	var req RenameCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, shared.NewDomainError(shared.CodeValidation, err.Error())
	}
	return h.service(rc).Rename(c.Request.Context(), rc.Scope(), id, req.Name)
}

// parseIDParam reads the :id path parameter as a UUID
func parseIDParam(c *gin.Context) (uuid.UUID, error) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		return uuid.Nil, shared.NewDomainError(shared.CodeValidation, "id must be a UUID")
	}
	return uuid.Parse(req.ID)
}
