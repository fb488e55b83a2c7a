package identityapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bizgrid/backend/internal/domain/identity"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// LoginInput carries the credentials for a login attempt
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResult is the outcome of a successful authentication
type LoginResult struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	User         *UserProfile `json:"user"`
}

// UserProfile is the public shape of an authenticated user
type UserProfile struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenant_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// AuthService handles authentication against the control plane
type AuthService struct {
	users     identity.PlatformUserRepository
	tokens    *auth.TokenService
	blacklist auth.TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users identity.PlatformUserRepository,
	tokens *auth.TokenService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{users: users, tokens: tokens, blacklist: blacklist, logger: logger}
}

// Login authenticates a user and issues a token pair. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("login attempt for unknown email", zap.String("email", input.Email))
			return nil, shared.ErrInvalidCredential
		}
		return nil, err
	}

	if !user.CanLogin() {
		s.logger.Warn("login attempt for deactivated account", zap.String("user_id", user.ID.String()))
		return nil, shared.ErrInvalidCredential
	}

	if !auth.CheckPassword(user.PasswordHash, input.Password) {
		s.logger.Warn("login attempt with wrong password", zap.String("user_id", user.ID.String()))
		return nil, shared.ErrInvalidCredential
	}

	pair, err := s.tokens.IssueTokenPair(auth.IssueInput{
		TenantID: user.TenantID,
		UserID:   user.ID,
		Role:     user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("tenant_id", user.TenantID.String()),
	)

	return &LoginResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(time.Until(pair.AccessTokenExpiresAt).Seconds()),
		User: &UserProfile{
			ID:          user.ID.String(),
			TenantID:    user.TenantID.String(),
			Email:       user.Email,
			DisplayName: user.DisplayName,
			Role:        user.Role,
		},
	}, nil
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, shared.ErrInvalidCredential
	}

	if revoked, err := s.blacklist.IsRevoked(ctx, claims.ID); err == nil && revoked {
		return nil, shared.ErrInvalidCredential
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.ErrInvalidCredential
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil || !user.CanLogin() {
		return nil, shared.ErrInvalidCredential
	}

	pair, err := s.tokens.IssueTokenPair(auth.IssueInput{
		TenantID: user.TenantID,
		UserID:   user.ID,
		Role:     user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	// The old refresh token must not stay usable
	if ttl := claims.GetRemainingTTL(); ttl > 0 {
		if err := s.blacklist.Add(ctx, claims.ID, ttl); err != nil {
			s.logger.Warn("failed to revoke rotated refresh token", zap.Error(err))
		}
	}

	return &LoginResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(time.Until(pair.AccessTokenExpiresAt).Seconds()),
		User: &UserProfile{
			ID:          user.ID.String(),
			TenantID:    user.TenantID.String(),
			Email:       user.Email,
			DisplayName: user.DisplayName,
			Role:        user.Role,
		},
	}, nil
}

// Logout revokes the presented access token for its remaining lifetime
func (s *AuthService) Logout(ctx context.Context, rawAccessToken string) error {
	result := s.tokens.Verify(rawAccessToken)
	if !result.Valid {
		// Nothing to revoke; logout is idempotent
		return nil
	}

	ttl := result.Claims.GetRemainingTTL()
	if ttl <= 0 {
		ttl = time.Minute
	}
	if err := s.blacklist.Add(ctx, result.Claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	s.logger.Info("user logged out", zap.String("user_id", result.Claims.UserID))
	return nil
}
