package dto

import (
	"errors"
	"net/http"

	"github.com/bizgrid/backend/internal/domain/shared"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes missing from the map answer 500; an unmapped code is a bug.
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeInvalidCredential: http.StatusUnauthorized,

	shared.CodeTenantContextMissing:  http.StatusUnauthorized,
	shared.CodeTenantUnavailable:     http.StatusServiceUnavailable,
	shared.CodeCompanyContextMissing: http.StatusBadRequest,
	shared.CodeCrossTenantViolation:  http.StatusForbidden,
	shared.CodeModuleDisabled:        http.StatusForbidden,

	shared.CodeNotFound:      http.StatusNotFound,
	shared.CodeAlreadyExists: http.StatusConflict,
	shared.CodeValidation:    http.StatusBadRequest,
	shared.CodeConflict:      http.StatusConflict,
	shared.CodeForbidden:     http.StatusForbidden,
	shared.CodeInternal:      http.StatusInternalServerError,
}

// StatusForCode returns the HTTP status for a domain error code
func StatusForCode(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// FromError translates any error into a status code and response envelope.
// Domain errors keep their code and message; everything else collapses to an
// opaque internal error so no driver or SQL detail leaks to the client.
func FromError(err error) (int, Response) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return StatusForCode(domainErr.Code), NewErrorResponse(domainErr.Code, domainErr.Message)
	}
	return http.StatusInternalServerError, NewErrorResponse(shared.CodeInternal, "Internal error")
}
