package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/bizgrid/backend/internal/domain/identity"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPlatformUserRepository implements identity.PlatformUserRepository
// against the control-plane database
type GormPlatformUserRepository struct {
	db *gorm.DB
}

// NewGormPlatformUserRepository creates a new GormPlatformUserRepository
func NewGormPlatformUserRepository(db *gorm.DB) *GormPlatformUserRepository {
	return &GormPlatformUserRepository{db: db}
}

// Create saves a new platform user
func (r *GormPlatformUserRepository) Create(ctx context.Context, user *identity.PlatformUser) error {
	return r.db.WithContext(ctx).Create(models.UserModelFromDomain(user)).Error
}

// FindByEmail finds a user by email, case-insensitively
func (r *GormPlatformUserRepository) FindByEmail(ctx context.Context, email string) (*identity.PlatformUser, error) {
	var model models.UserModel
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByID finds a user by ID
func (r *GormPlatformUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.PlatformUser, error) {
	var model models.UserModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

var _ identity.PlatformUserRepository = (*GormPlatformUserRepository)(nil)
