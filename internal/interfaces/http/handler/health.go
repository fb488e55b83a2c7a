package handler

import (
	"net/http"

	"github.com/bizgrid/backend/internal/infrastructure/persistence"
	"github.com/bizgrid/backend/internal/infrastructure/tenantpool"
	"github.com/bizgrid/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// HealthHandler serves liveness and operational visibility endpoints
type HealthHandler struct {
	control *persistence.Database
	pool    *tenantpool.Pool
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(control *persistence.Database, pool *tenantpool.Pool) *HealthHandler {
	return &HealthHandler{control: control, pool: pool}
}

// RegisterRoutes registers the health routes
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
	rg.GET("/health/pool", h.PoolStats)
}

// Health reports liveness and control-plane connectivity
func (h *HealthHandler) Health(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	if h.control != nil {
		if err := h.control.Ping(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	c.JSON(code, dto.NewSuccessResponse(gin.H{"status": status}))
}

// PoolStats reports tenant handle pool activity
func (h *HealthHandler) PoolStats(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(h.pool.Stats()))
}
