package tenantctx

import (
	"net/http"
	"runtime/debug"
	"strings"

	appcompany "github.com/bizgrid/backend/internal/application/company"
	"github.com/bizgrid/backend/internal/domain/company"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/infrastructure/auth"
	"github.com/bizgrid/backend/internal/infrastructure/logger"
	"github.com/bizgrid/backend/internal/infrastructure/persistence"
	"github.com/bizgrid/backend/internal/infrastructure/tenantpool"
	"github.com/bizgrid/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Request plumbing constants
const (
	AuthHeaderKey    = "Authorization"
	BearerPrefix     = "Bearer "
	CompanyHeaderKey = "X-Company-ID"
	CompanyQueryKey  = "company_id"
)

// RequestContext is everything a handler needs to serve one request inside
// its tenant: verified identity, resolved company scope, and a database
// handle routed to the tenant's partition. Handlers never touch connection
// details or claims themselves.
type RequestContext struct {
	Authenticated bool
	TenantID      uuid.UUID
	TenantSlug    string
	UserID        uuid.UUID
	Role          string
	Company       *company.Company
	DB            *gorm.DB
	Log           *zap.Logger
}

// Scope returns the isolation scope for application services
func (rc *RequestContext) Scope() shared.Scope {
	scope := shared.Scope{TenantID: rc.TenantID, UserID: rc.UserID}
	if rc.Company != nil {
		scope.CompanyID = rc.Company.ID
	}
	return scope
}

// HandlerFunc is a request handler running inside a prepared tenant context.
// Returning data answers 200 with the standard envelope; returning an error
// answers with the error's mapped status and code.
type HandlerFunc func(c *gin.Context, rc *RequestContext) (interface{}, error)

// Options controls how a route's context is assembled
type Options struct {
	// Required rejects unauthenticated requests. Routes with Required false
	// still get a verified identity when a valid token happens to be present.
	Required bool
	// Module names the module this route belongs to; tenants without it
	// enabled are rejected before the handler runs. Empty means ungated.
	Module string
	// SkipCompany leaves the company scope unresolved. Needed by routes
	// that must work before the tenant has any companies.
	SkipCompany bool
}

// DefaultOptions returns the options for a regular tenant route
func DefaultOptions() Options {
	return Options{Required: true}
}

// Orchestrator assembles the per-request tenant context. It is the only
// place where credential verification, partition routing, company scope
// resolution and module gating meet; routes declare what they need and
// handlers receive a finished RequestContext.
type Orchestrator struct {
	tokens    *auth.TokenService
	blacklist auth.TokenBlacklist
	pool      *tenantpool.Pool
	logger    *zap.Logger
}

// New creates an orchestrator
func New(tokens *auth.TokenService, blacklist auth.TokenBlacklist, pool *tenantpool.Pool, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{tokens: tokens, blacklist: blacklist, pool: pool, logger: log}
}

// Wrap turns a tenant-context handler into a gin handler
func (o *Orchestrator) Wrap(handler HandlerFunc, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, release, ok := o.prepare(c, opts)
		if !ok {
			return
		}
		defer release()

		defer func() {
			if r := recover(); r != nil {
				rc.Log.Error("panic in request handler",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.ByteString("stack", debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					dto.NewErrorResponse(shared.CodeInternal, "Internal error"))
			}
		}()

		data, err := handler(c, rc)
		if err != nil {
			o.respondError(c, rc, err)
			return
		}
		if !c.Writer.Written() {
			c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
		}
	}
}

// prepare builds the request context, answering the request itself when a
// step fails. The returned release func must run after the handler.
func (o *Orchestrator) prepare(c *gin.Context, opts Options) (*RequestContext, func(), bool) {
	noop := func() {}
	log := logger.WithTraceContext(c.Request.Context(), o.logger)
	rc := &RequestContext{Log: log}

	rawToken, hasToken := bearerToken(c)
	if !hasToken {
		if opts.Required {
			o.reject(c, shared.ErrTenantContextMissing)
			return nil, noop, false
		}
		return rc, noop, true
	}

	result := o.tokens.Verify(rawToken)
	if !result.Valid {
		if opts.Required {
			log.Warn("rejected invalid credential", zap.String("reason", result.Reason))
			o.reject(c, shared.ErrInvalidCredential)
			return nil, noop, false
		}
		return rc, noop, true
	}
	claims := result.Claims

	if o.blacklist != nil {
		revoked, err := o.blacklist.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			log.Error("token blacklist check failed", zap.Error(err))
			o.reject(c, shared.ErrInternal)
			return nil, noop, false
		}
		if revoked {
			o.reject(c, shared.ErrInvalidCredential)
			return nil, noop, false
		}
	}

	tenantID, err := claims.GetTenantUUID()
	if err != nil {
		o.reject(c, shared.ErrInvalidCredential)
		return nil, noop, false
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		o.reject(c, shared.ErrInvalidCredential)
		return nil, noop, false
	}

	ctx, log := logger.WithTenantID(c.Request.Context(), log, tenantID.String())
	ctx, log = logger.WithUserID(ctx, log, userID.String())
	c.Request = c.Request.WithContext(ctx)

	handle, err := o.pool.Acquire(ctx, tenantID)
	if err != nil {
		log.Error("failed to acquire tenant handle", zap.Error(err))
		o.respondError(c, rc, err)
		return nil, noop, false
	}
	release := handle.Release

	rc.Authenticated = true
	rc.TenantID = tenantID
	rc.TenantSlug = handle.Tenant().Slug
	rc.UserID = userID
	rc.Role = claims.Role
	rc.DB = handle.DB()
	rc.Log = log

	if opts.Module != "" && !handle.Tenant().ModuleEnabled(opts.Module) {
		log.Warn("rejected request for disabled module", zap.String("module", opts.Module))
		o.reject(c, shared.ErrModuleDisabled)
		release()
		return nil, noop, false
	}

	if !opts.SkipCompany {
		resolved, err := o.resolveCompany(c, rc)
		if err != nil {
			o.respondError(c, rc, err)
			release()
			return nil, noop, false
		}
		rc.Company = resolved

		ctx, log = logger.WithCompanyID(c.Request.Context(), log, resolved.ID.String())
		c.Request = c.Request.WithContext(ctx)
		rc.Log = log
	}

	return rc, release, true
}

// resolveCompany picks the request's company scope from the query parameter
// or header, falling back to the tenant default
func (o *Orchestrator) resolveCompany(c *gin.Context, rc *RequestContext) (*company.Company, error) {
	var explicit *uuid.UUID

	raw := c.Query(CompanyQueryKey)
	if raw == "" {
		raw = c.GetHeader(CompanyHeaderKey)
	}
	if raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, shared.NewDomainError(shared.CodeValidation, "company_id must be a UUID")
		}
		explicit = &id
	}

	resolver := appcompany.NewResolver(persistence.NewGormCompanyRepository(rc.DB), rc.Log)
	return resolver.Resolve(c.Request.Context(), rc.TenantID, explicit)
}

func (o *Orchestrator) respondError(c *gin.Context, rc *RequestContext, err error) {
	status, resp := dto.FromError(err)
	if status >= http.StatusInternalServerError {
		log := o.logger
		if rc != nil && rc.Log != nil {
			log = rc.Log
		}
		log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, resp)
}

func (o *Orchestrator) reject(c *gin.Context, err *shared.DomainError) {
	c.AbortWithStatusJSON(dto.StatusForCode(err.Code), dto.NewErrorResponse(err.Code, err.Message))
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(AuthHeaderKey)
	if header == "" {
		return "", false
	}
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}
