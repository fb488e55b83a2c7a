package shared

// DomainError represents a domain-level error with a stable machine-readable code
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes used across the request-context layer. These are the wire-visible
// error kinds; handlers and middleware must reuse them rather than invent new ones.
const (
	CodeInvalidCredential     = "INVALID_CREDENTIAL"
	CodeTenantContextMissing  = "TENANT_CONTEXT_MISSING"
	CodeTenantUnavailable     = "TENANT_UNAVAILABLE"
	CodeCompanyContextMissing = "COMPANY_CONTEXT_MISSING"
	CodeCrossTenantViolation  = "CROSS_TENANT_VIOLATION"
	CodeModuleDisabled        = "MODULE_DISABLED"
	CodeNotFound              = "NOT_FOUND"
	CodeAlreadyExists         = "ALREADY_EXISTS"
	CodeValidation            = "VALIDATION_ERROR"
	CodeConflict              = "CONFLICT"
	CodeForbidden             = "FORBIDDEN"
	CodeInternal              = "INTERNAL_ERROR"
)

// Common domain errors
var (
	// ErrInvalidCredential means the session credential is missing, malformed,
	// badly signed or expired. Decided entirely by the orchestrator.
	ErrInvalidCredential = NewDomainError(CodeInvalidCredential, "Invalid or expired credential")
	// ErrTenantContextMissing means a tenant-required route was hit without a
	// resolvable tenant identity.
	ErrTenantContextMissing = NewDomainError(CodeTenantContextMissing, "Tenant context required")
	// ErrTenantUnavailable means the tenant is known but its data partition could
	// not be reached (registry lookup or connection failure). 5xx-class, not retried here.
	ErrTenantUnavailable = NewDomainError(CodeTenantUnavailable, "Tenant data partition unavailable")
	// ErrCompanyContextMissing means the tenant has no companies yet; callers must
	// treat this as "setup incomplete", not as an invalid company id.
	ErrCompanyContextMissing = NewDomainError(CodeCompanyContextMissing, "Tenant has no company configured")
	// ErrCrossTenantViolation means a company id resolves to a different tenant.
	// Always a client error, never coerced into NOT_FOUND: cross-tenant attempts
	// are a security signal and must stay distinguishable in monitoring.
	ErrCrossTenantViolation = NewDomainError(CodeCrossTenantViolation, "Company does not belong to this tenant")
	// ErrModuleDisabled means the route's module is not enabled for the tenant.
	ErrModuleDisabled = NewDomainError(CodeModuleDisabled, "Module is not enabled for this tenant")

	ErrNotFound      = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrValidation    = NewDomainError(CodeValidation, "Invalid input provided")
	ErrConflict      = NewDomainError(CodeConflict, "Resource was modified by another process")
	ErrForbidden     = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrInternal      = NewDomainError(CodeInternal, "Internal error")
)
