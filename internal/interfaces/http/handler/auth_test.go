package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bizgrid/backend/internal/application/identityapp"
	"github.com/bizgrid/backend/internal/domain/identity"
	"github.com/bizgrid/backend/internal/infrastructure/auth"
	"github.com/bizgrid/backend/internal/infrastructure/config"
	"github.com/bizgrid/backend/internal/infrastructure/persistence"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type authTestEnv struct {
	router    *gin.Engine
	tokens    *auth.TokenService
	blacklist *auth.InMemoryTokenBlacklist
	tenantID  uuid.UUID
}

func newAuthTestEnv(t *testing.T) *authTestEnv {
	t.Helper()

	db, err := persistence.Open(persistence.Options{
		Driver:   "sqlite",
		DSN:      ":memory:",
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.DB.AutoMigrate(&models.UserModel{}))

	tokens := auth.NewTokenService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-characters",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "bizgrid-test",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()

	users := persistence.NewGormPlatformUserRepository(db.DB)
	service := identityapp.NewAuthService(users, tokens, blacklist, zap.NewNop())

	tenantID := uuid.New()
	hash, err := auth.HashPassword("s3cret-password")
	require.NoError(t, err)
	user, err := identity.NewPlatformUser(tenantID, "ada@example.com", hash, "admin")
	require.NoError(t, err)
	require.NoError(t, users.Create(t.Context(), user))

	r := gin.New()
	api := r.Group("/api/v1")
	NewAuthHandler(service, zap.NewNop()).RegisterRoutes(api)

	return &authTestEnv{router: r, tokens: tokens, blacklist: blacklist, tenantID: tenantID}
}

func (env *authTestEnv) post(t *testing.T, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func loginResult(t *testing.T, w *httptest.ResponseRecorder) identityapp.LoginResult {
	t.Helper()
	var envelope struct {
		Success bool                    `json:"success"`
		Data    identityapp.LoginResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	return envelope.Data
}

func TestAuthHandler_Login(t *testing.T) {
	env := newAuthTestEnv(t)

	t.Run("valid credentials issue a token pair", func(t *testing.T) {
		w := env.post(t, "/api/v1/auth/login", gin.H{
			"email":    "ada@example.com",
			"password": "s3cret-password",
		}, nil)
		require.Equal(t, http.StatusOK, w.Code)

		result := loginResult(t, w)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.Equal(t, env.tenantID.String(), result.User.TenantID)

		verified := env.tokens.Verify(result.AccessToken)
		assert.True(t, verified.Valid)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		wrong := env.post(t, "/api/v1/auth/login", gin.H{
			"email":    "ada@example.com",
			"password": "nope",
		}, nil)
		unknown := env.post(t, "/api/v1/auth/login", gin.H{
			"email":    "ghost@example.com",
			"password": "nope",
		}, nil)

		assert.Equal(t, http.StatusUnauthorized, wrong.Code)
		assert.Equal(t, http.StatusUnauthorized, unknown.Code)
		assert.JSONEq(t, wrong.Body.String(), unknown.Body.String())
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		w := env.post(t, "/api/v1/auth/login", gin.H{"email": "ada@example.com"}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	env := newAuthTestEnv(t)

	login := env.post(t, "/api/v1/auth/login", gin.H{
		"email":    "ada@example.com",
		"password": "s3cret-password",
	}, nil)
	require.Equal(t, http.StatusOK, login.Code)
	first := loginResult(t, login)

	t.Run("refresh rotates the pair and revokes the old refresh token", func(t *testing.T) {
		w := env.post(t, "/api/v1/auth/refresh", gin.H{"refresh_token": first.RefreshToken}, nil)
		require.Equal(t, http.StatusOK, w.Code)
		second := loginResult(t, w)
		assert.NotEmpty(t, second.AccessToken)

		// The rotated-out token must be unusable
		again := env.post(t, "/api/v1/auth/refresh", gin.H{"refresh_token": first.RefreshToken}, nil)
		assert.Equal(t, http.StatusUnauthorized, again.Code)
	})

	t.Run("access token is not accepted as refresh token", func(t *testing.T) {
		w := env.post(t, "/api/v1/auth/refresh", gin.H{"refresh_token": first.AccessToken}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage refresh token rejected", func(t *testing.T) {
		w := env.post(t, "/api/v1/auth/refresh", gin.H{"refresh_token": "not-a-jwt"}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	env := newAuthTestEnv(t)

	login := env.post(t, "/api/v1/auth/login", gin.H{
		"email":    "ada@example.com",
		"password": "s3cret-password",
	}, nil)
	require.Equal(t, http.StatusOK, login.Code)
	result := loginResult(t, login)

	w := env.post(t, "/api/v1/auth/logout", gin.H{}, map[string]string{
		"Authorization": "Bearer " + result.AccessToken,
	})
	require.Equal(t, http.StatusOK, w.Code)

	claims := env.tokens.Verify(result.AccessToken).Claims
	require.NotNil(t, claims)
	revoked, err := env.blacklist.IsRevoked(t.Context(), claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	// Logout without a token is a no-op, not an error
	again := env.post(t, "/api/v1/auth/logout", gin.H{}, nil)
	assert.Equal(t, http.StatusOK, again.Code)
}
