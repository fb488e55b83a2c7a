package handler

import (
	"time"

	appaccounting "github.com/bizgrid/backend/internal/application/accounting"
	appaudit "github.com/bizgrid/backend/internal/application/audit"
	"github.com/bizgrid/backend/internal/domain/accounting"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/infrastructure/persistence"
	"github.com/bizgrid/backend/internal/interfaces/http/tenantctx"
	"github.com/gin-gonic/gin"
)

// InvoiceHandler serves the accounting module's invoice endpoints
type InvoiceHandler struct {
	orch     *tenantctx.Orchestrator
	recorder *appaudit.Recorder
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(orch *tenantctx.Orchestrator, recorder *appaudit.Recorder) *InvoiceHandler {
	return &InvoiceHandler{orch: orch, recorder: recorder}
}

// RegisterRoutes registers the invoice routes behind the accounting module gate
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	opts := tenantctx.Options{Required: true, Module: accounting.ModuleName}
	invoices := rg.Group("/accounting/invoices")
	{
		invoices.GET("", h.orch.Wrap(h.List, opts))
		invoices.POST("", h.orch.Wrap(h.Create, opts))
		invoices.GET("/:id", h.orch.Wrap(h.Get, opts))
		invoices.POST("/:id/issue", h.orch.Wrap(h.Issue, opts))
		invoices.POST("/:id/pay", h.orch.Wrap(h.MarkPaid, opts))
		invoices.POST("/:id/void", h.orch.Wrap(h.Void, opts))
	}
}

func (h *InvoiceHandler) service(rc *tenantctx.RequestContext) *appaccounting.InvoiceService {
	return appaccounting.NewInvoiceService(
		persistence.NewGormInvoiceRepository(rc.DB),
		persistence.NewGormAuditLogRepository(rc.DB),
		h.recorder,
		rc.Log,
	)
}

// List returns the company's invoices
func (h *InvoiceHandler) List(c *gin.Context, rc *tenantctx.RequestContext) (interface{}, error) {
	return h.service(rc).List(c.Request.Context(), rc.Scope())
}

// Create adds a draft invoice
func (h *InvoiceHandler) Create(c *gin.Context, rc *tenantctx.RequestContext) (interface{}, error) {
	var input appaccounting.CreateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		return nil, shared.NewDomainError(shared.CodeValidation, err.Error())
	}
	return h.service(rc).Create(c.Request.Context(), rc.Scope(), input)
}

// Get returns one invoice
func (h *InvoiceHandler) Get(c *gin.Context, rc *tenantctx.RequestContext) (interface{}, error) {
	id, err := parseIDParam(c)
	if err != nil {
		return nil, err
	}
	return h.service(rc).Get(c.Request.Context(), rc.Scope(), id)
}

// IssueInvoiceRequest carries the due date for issuing
type IssueInvoiceRequest struct {
	DueAt time.Time `json:"due_at" binding:"required"`
}

// Issue moves a draft invoice to issued
func (h *InvoiceHandler) Issue(c *gin.Context, rc *tenantctx.RequestContext) (interface{}, error) {
	id, err := parseIDParam(c)
	if err != nil {
		return nil, err
	}
	var req IssueInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "due_at is required")
	}
	return h.service(rc).Issue(c.Request.Context(), rc.Scope(), id, req.DueAt)
}

// MarkPaid settles an issued invoice
func (h *InvoiceHandler) MarkPaid(c *gin.Context, rc *tenantctx.RequestContext) (interface{}, error) {
	id, err := parseIDParam(c)
	if err != nil {
		return nil, err
	}
	return h.service(rc).MarkPaid(c.Request.Context(), rc.Scope(), id)
}

// Void cancels an unpaid invoice
func (h *InvoiceHandler) Void(c *gin.Context, rc *tenantctx.RequestContext) (interface{}, error) {
	id, err := parseIDParam(c)
	if err != nil {
		return nil, err
	}
	return h.service(rc).Void(c.Request.Context(), rc.Scope(), id)
}
