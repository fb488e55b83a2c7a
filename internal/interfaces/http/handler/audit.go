package handler

import (
	"net/http"

	"github.com/bizgrid/backend/internal/domain/audit"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/infrastructure/persistence"
	"github.com/bizgrid/backend/internal/interfaces/http/dto"
	"github.com/bizgrid/backend/internal/interfaces/http/tenantctx"
	"github.com/gin-gonic/gin"
)

// AuditHandler serves the audit trail read endpoint
type AuditHandler struct {
	orch *tenantctx.Orchestrator
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(orch *tenantctx.Orchestrator) *AuditHandler {
	return &AuditHandler{orch: orch}
}

// RegisterRoutes registers the audit routes
func (h *AuditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/audit", h.orch.Wrap(h.History, tenantctx.DefaultOptions()))
}

// History returns the company's audit trail, newest first
func (h *AuditHandler) History(c *gin.Context, rc *tenantctx.RequestContext) (interface{}, error) {
	var req dto.AuditHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		return nil, shared.NewDomainError(shared.CodeValidation, err.Error())
	}
	limit := req.Limit
	if limit == 0 {
		limit = 50
	}

	records, total, err := persistence.NewGormAuditLogRepository(rc.DB).Find(c.Request.Context(), audit.Query{
		TenantID:   rc.TenantID,
		CompanyID:  rc.Company.ID,
		EntityName: req.EntityName,
		EntityID:   req.EntityID,
		Limit:      limit,
		Offset:     req.Offset,
	})
	if err != nil {
		return nil, err
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(records, total, limit, req.Offset, len(records)))
	return nil, nil
}
