package handler

import (
	"net/http"
	"strings"

	"github.com/bizgrid/backend/internal/application/identityapp"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler serves the authentication endpoints. These run against the
// control plane and therefore outside the tenant context orchestrator.
type AuthHandler struct {
	service *identityapp.AuthService
	logger  *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service *identityapp.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

// RegisterRoutes registers the auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
	}
}

// Login authenticates with email and password
func (h *AuthHandler) Login(c *gin.Context) {
	var input identityapp.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(shared.CodeValidation, "Email and password are required"))
		return
	}

	result, err := h.service.Login(c.Request.Context(), input)
	if err != nil {
		status, resp := dto.FromError(err)
		c.JSON(status, resp)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// RefreshRequest carries the refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh exchanges a refresh token for a new pair
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(shared.CodeValidation, "refresh_token is required"))
		return
	}

	result, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		status, resp := dto.FromError(err)
		c.JSON(status, resp)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// Logout revokes the presented access token
func (h *AuthHandler) Logout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

	if err := h.service.Logout(c.Request.Context(), raw); err != nil {
		status, resp := dto.FromError(err)
		c.JSON(status, resp)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"logged_out": true}))
}
