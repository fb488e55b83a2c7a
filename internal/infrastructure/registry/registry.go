package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Default cache behavior for control-plane lookups
const (
	defaultCacheTTL = 30 * time.Second
)

// TenantDescriptor is the read-only routing record for a tenant: where its
// data lives and which modules it may use. Provisioning happens elsewhere.
type TenantDescriptor struct {
	ID      uuid.UUID
	Slug    string
	Name    string
	Driver  string
	DSN     string
	Modules []string
	Active  bool
}

// ModuleEnabled reports whether the named module is enabled for the tenant
func (d *TenantDescriptor) ModuleEnabled(name string) bool {
	for _, m := range d.Modules {
		if m == name {
			return true
		}
	}
	return false
}

// Registry resolves tenant identifiers to connection descriptors
type Registry interface {
	// Lookup returns the descriptor for an active tenant. Unknown or
	// deactivated tenants yield shared.ErrTenantUnavailable.
	Lookup(ctx context.Context, tenantID uuid.UUID) (*TenantDescriptor, error)

	// LookupBySlug resolves a tenant by its URL-safe slug
	LookupBySlug(ctx context.Context, slug string) (*TenantDescriptor, error)
}

// cacheEntry wraps a cached descriptor with its expiration time
type cacheEntry struct {
	descriptor *TenantDescriptor
	expiresAt  time.Time
}

func (e *cacheEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// GormRegistry reads tenant descriptors from the control-plane database with
// a small read-through TTL cache in front. Descriptors change rarely, so a
// short TTL keeps the hot path off the control database without a separate
// invalidation channel.
type GormRegistry struct {
	db     *gorm.DB
	ttl    time.Duration
	logger *zap.Logger

	byID   sync.Map // map[uuid.UUID]*cacheEntry
	bySlug sync.Map // map[string]*cacheEntry

	hits   int64
	misses int64
}

// GormRegistryOption is a functional option for configuring the registry
type GormRegistryOption func(*GormRegistry)

// WithCacheTTL sets how long descriptors are served from cache
func WithCacheTTL(ttl time.Duration) GormRegistryOption {
	return func(r *GormRegistry) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithLogger sets the logger for the registry
func WithLogger(logger *zap.Logger) GormRegistryOption {
	return func(r *GormRegistry) {
		r.logger = logger
	}
}

// NewGormRegistry creates a registry backed by the control-plane database
func NewGormRegistry(db *gorm.DB, opts ...GormRegistryOption) *GormRegistry {
	r := &GormRegistry{
		db:     db,
		ttl:    defaultCacheTTL,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lookup returns the descriptor for an active tenant
func (r *GormRegistry) Lookup(ctx context.Context, tenantID uuid.UUID) (*TenantDescriptor, error) {
	if value, ok := r.byID.Load(tenantID); ok {
		entry := value.(*cacheEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&r.hits, 1)
			return entry.descriptor, nil
		}
		r.byID.Delete(tenantID)
	}
	atomic.AddInt64(&r.misses, 1)

	var model models.TenantModel
	err := r.db.WithContext(ctx).Where("id = ?", tenantID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tenant %s: %w", tenantID, shared.ErrTenantUnavailable)
		}
		return nil, fmt.Errorf("failed to look up tenant %s: %w", tenantID, err)
	}

	descriptor, err := r.toDescriptor(&model)
	if err != nil {
		return nil, err
	}
	r.store(descriptor)
	return descriptor, nil
}

// LookupBySlug resolves a tenant by its URL-safe slug
func (r *GormRegistry) LookupBySlug(ctx context.Context, slug string) (*TenantDescriptor, error) {
	if value, ok := r.bySlug.Load(slug); ok {
		entry := value.(*cacheEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&r.hits, 1)
			return entry.descriptor, nil
		}
		r.bySlug.Delete(slug)
	}
	atomic.AddInt64(&r.misses, 1)

	var model models.TenantModel
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tenant %q: %w", slug, shared.ErrTenantUnavailable)
		}
		return nil, fmt.Errorf("failed to look up tenant %q: %w", slug, err)
	}

	descriptor, err := r.toDescriptor(&model)
	if err != nil {
		return nil, err
	}
	r.store(descriptor)
	return descriptor, nil
}

// Invalidate drops any cached descriptor for the tenant. Callers use this
// after a failed connection attempt so a corrected DSN is picked up promptly.
func (r *GormRegistry) Invalidate(tenantID uuid.UUID) {
	if value, ok := r.byID.Load(tenantID); ok {
		entry := value.(*cacheEntry)
		r.byID.Delete(tenantID)
		r.bySlug.Delete(entry.descriptor.Slug)
	}
}

// CacheStats returns cumulative hit and miss counts
func (r *GormRegistry) CacheStats() (hits, misses int64) {
	return atomic.LoadInt64(&r.hits), atomic.LoadInt64(&r.misses)
}

func (r *GormRegistry) toDescriptor(model *models.TenantModel) (*TenantDescriptor, error) {
	if !model.Active {
		r.logger.Warn("rejected lookup of deactivated tenant",
			zap.String("tenant_id", model.ID.String()),
			zap.String("slug", model.Slug),
		)
		return nil, fmt.Errorf("tenant %q is deactivated: %w", model.Slug, shared.ErrTenantUnavailable)
	}
	return &TenantDescriptor{
		ID:      model.ID,
		Slug:    model.Slug,
		Name:    model.Name,
		Driver:  model.DBDriver,
		DSN:     model.DBDSN,
		Modules: model.ModuleList(),
		Active:  model.Active,
	}, nil
}

func (r *GormRegistry) store(d *TenantDescriptor) {
	entry := &cacheEntry{descriptor: d, expiresAt: time.Now().Add(r.ttl)}
	r.byID.Store(d.ID, entry)
	r.bySlug.Store(d.Slug, entry)
}

var _ Registry = (*GormRegistry)(nil)
