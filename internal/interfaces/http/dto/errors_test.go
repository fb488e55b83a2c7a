package dto

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestStatusForCode(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{shared.CodeInvalidCredential, http.StatusUnauthorized},
		{shared.CodeTenantContextMissing, http.StatusUnauthorized},
		{shared.CodeTenantUnavailable, http.StatusServiceUnavailable},
		{shared.CodeCompanyContextMissing, http.StatusBadRequest},
		{shared.CodeCrossTenantViolation, http.StatusForbidden},
		{shared.CodeModuleDisabled, http.StatusForbidden},
		{shared.CodeNotFound, http.StatusNotFound},
		{shared.CodeConflict, http.StatusConflict},
		{"SOMETHING_NEW", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, StatusForCode(tt.code))
		})
	}
}

func TestFromError(t *testing.T) {
	t.Run("domain errors keep their code", func(t *testing.T) {
		status, resp := FromError(shared.ErrModuleDisabled)
		assert.Equal(t, http.StatusForbidden, status)
		assert.False(t, resp.Success)
		assert.Equal(t, shared.CodeModuleDisabled, resp.Error.Code)
	})

	t.Run("wrapped domain errors unwrap", func(t *testing.T) {
		wrapped := fmt.Errorf("while resolving scope: %w", shared.ErrCrossTenantViolation)
		status, resp := FromError(wrapped)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, shared.CodeCrossTenantViolation, resp.Error.Code)
	})

	t.Run("unknown errors hide their message", func(t *testing.T) {
		status, resp := FromError(errors.New("pq: connection refused on 10.0.0.3"))
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, shared.CodeInternal, resp.Error.Code)
		assert.NotContains(t, resp.Error.Message, "10.0.0.3")
	})
}
