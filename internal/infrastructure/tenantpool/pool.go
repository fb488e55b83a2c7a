package tenantpool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/infrastructure/config"
	"github.com/bizgrid/backend/internal/infrastructure/persistence"
	"github.com/bizgrid/backend/internal/infrastructure/registry"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Default pool behavior when configuration leaves fields unset
const (
	defaultIdleTTL       = 10 * time.Minute
	defaultSweepInterval = time.Minute
	defaultBuildTimeout  = 15 * time.Second
)

// Builder opens a database connection for a tenant descriptor. The pool
// calls it at most once per tenant per miss, however many requests arrive
// concurrently.
type Builder func(ctx context.Context, d *registry.TenantDescriptor) (*persistence.Database, error)

// DefaultBuilder opens tenant connections through the shared persistence
// layer, sized by the pool configuration.
func DefaultBuilder(cfg config.PoolConfig, traceEnabled bool) Builder {
	return func(_ context.Context, d *registry.TenantDescriptor) (*persistence.Database, error) {
		return persistence.Open(persistence.Options{
			Driver:       d.Driver,
			DSN:          d.DSN,
			MaxOpenConns: cfg.MaxOpenConns,
			MaxIdleConns: cfg.MaxIdleConns,
			TraceEnabled: traceEnabled,
		})
	}
}

// entry is a pooled tenant connection with its usage bookkeeping.
// refs and lastUsed are atomics so the fast path only takes a read lock.
type entry struct {
	tenantID uuid.UUID
	db       *persistence.Database
	refs     int64
	lastUsed int64 // unix nanos
}

func (e *entry) touch() {
	atomic.StoreInt64(&e.lastUsed, time.Now().UnixNano())
}

func (e *entry) idleSince() time.Time {
	return time.Unix(0, atomic.LoadInt64(&e.lastUsed))
}

// Handle is a leased tenant connection. The holder must call Release when
// the request finishes; the underlying connection stays pooled afterwards.
type Handle struct {
	tenant   *registry.TenantDescriptor
	entry    *entry
	released int32
}

// DB returns the tenant-scoped gorm connection
func (h *Handle) DB() *gorm.DB {
	return h.entry.db.DB
}

// Tenant returns the descriptor the handle was acquired for
func (h *Handle) Tenant() *registry.TenantDescriptor {
	return h.tenant
}

// Release returns the lease to the pool. Safe to call more than once.
func (h *Handle) Release() {
	if !atomic.CompareAndSwapInt32(&h.released, 0, 1) {
		return
	}
	atomic.AddInt64(&h.entry.refs, -1)
	h.entry.touch()
}

// Stats is a point-in-time snapshot of pool activity
type Stats struct {
	Size      int   `json:"size"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Builds    int64 `json:"builds"`
	Evictions int64 `json:"evictions"`
}

// Pool caches one database connection per tenant. Concurrent first requests
// for the same tenant share a single connection build; idle connections are
// evicted by a background sweep once no request has used them for IdleTTL.
type Pool struct {
	registry registry.Registry
	builder  Builder
	logger   *zap.Logger

	idleTTL       time.Duration
	sweepInterval time.Duration
	buildTimeout  time.Duration

	mu      sync.RWMutex
	entries map[uuid.UUID]*entry
	closed  bool

	group  singleflight.Group
	stopCh chan struct{}

	hits      int64
	misses    int64
	builds    int64
	evictions int64
}

// Option is a functional option for configuring the pool
type Option func(*Pool)

// WithIdleTTL sets how long an unused connection survives before eviction
func WithIdleTTL(ttl time.Duration) Option {
	return func(p *Pool) {
		if ttl > 0 {
			p.idleTTL = ttl
		}
	}
}

// WithSweepInterval sets how often the background sweep runs
func WithSweepInterval(interval time.Duration) Option {
	return func(p *Pool) {
		if interval > 0 {
			p.sweepInterval = interval
		}
	}
}

// WithBuildTimeout bounds how long a single connection build may take
func WithBuildTimeout(timeout time.Duration) Option {
	return func(p *Pool) {
		if timeout > 0 {
			p.buildTimeout = timeout
		}
	}
}

// WithPoolLogger sets the logger for the pool
func WithPoolLogger(logger *zap.Logger) Option {
	return func(p *Pool) {
		p.logger = logger
	}
}

// New creates a tenant handle pool and starts its eviction sweep
func New(reg registry.Registry, builder Builder, opts ...Option) *Pool {
	p := &Pool{
		registry:      reg,
		builder:       builder,
		logger:        zap.NewNop(),
		idleTTL:       defaultIdleTTL,
		sweepInterval: defaultSweepInterval,
		buildTimeout:  defaultBuildTimeout,
		entries:       make(map[uuid.UUID]*entry),
		stopCh:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.sweep()
	return p
}

// Acquire leases a connection for the tenant, building one if none is
// pooled. Cancelling ctx abandons the wait but never aborts a build that
// other requests may be waiting on; a finished build stays pooled for the
// next request.
func (p *Pool) Acquire(ctx context.Context, tenantID uuid.UUID) (*Handle, error) {
	descriptor, err := p.registry.Lookup(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	for {
		if h := p.tryAcquire(descriptor); h != nil {
			return h, nil
		}
		atomic.AddInt64(&p.misses, 1)

		ch := p.group.DoChan(tenantID.String(), func() (interface{}, error) {
			return p.build(descriptor)
		})

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res := <-ch:
			if res.Err != nil {
				return nil, res.Err
			}
		}
		// Loop back to the fast path so the lease is taken under the
		// read lock, where it cannot race the sweep.
	}
}

// tryAcquire leases an already-pooled connection, or returns nil on miss
func (p *Pool) tryAcquire(d *registry.TenantDescriptor) *Handle {
	p.mu.RLock()
	defer p.mu.RUnlock()

	e, ok := p.entries[d.ID]
	if !ok {
		return nil
	}
	atomic.AddInt64(&e.refs, 1)
	e.touch()
	atomic.AddInt64(&p.hits, 1)
	return &Handle{tenant: d, entry: e}
}

// build opens the tenant connection and inserts it into the pool. It runs
// inside singleflight with a detached context: the build belongs to every
// waiter, not to whichever request happened to trigger it.
func (p *Pool) build(d *registry.TenantDescriptor) (interface{}, error) {
	buildCtx, cancel := context.WithTimeout(context.Background(), p.buildTimeout)
	defer cancel()

	atomic.AddInt64(&p.builds, 1)
	start := time.Now()

	db, err := p.builder(buildCtx, d)
	if err != nil {
		p.logger.Error("failed to open tenant database",
			zap.String("tenant_id", d.ID.String()),
			zap.String("slug", d.Slug),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to open database for tenant %q: %w", d.Slug, shared.ErrTenantUnavailable)
	}

	e := &entry{tenantID: d.ID, db: db}
	e.touch()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		_ = db.Close()
		return nil, fmt.Errorf("pool is closed: %w", shared.ErrTenantUnavailable)
	}
	if existing, ok := p.entries[d.ID]; ok {
		// Another flight won the insert between our map check and now
		p.mu.Unlock()
		_ = db.Close()
		return existing, nil
	}
	p.entries[d.ID] = e
	p.mu.Unlock()

	p.logger.Info("opened tenant database",
		zap.String("tenant_id", d.ID.String()),
		zap.String("slug", d.Slug),
		zap.Duration("took", time.Since(start)),
	)
	return e, nil
}

// EvictIdle closes connections with no active leases that have been unused
// for at least IdleTTL. Returns the number of connections evicted.
func (p *Pool) EvictIdle() int {
	cutoff := time.Now().Add(-p.idleTTL)

	p.mu.Lock()
	var victims []*entry
	for id, e := range p.entries {
		if atomic.LoadInt64(&e.refs) == 0 && e.idleSince().Before(cutoff) {
			delete(p.entries, id)
			victims = append(victims, e)
		}
	}
	p.mu.Unlock()

	for _, e := range victims {
		if err := e.db.Close(); err != nil {
			p.logger.Warn("failed to close evicted tenant database",
				zap.String("tenant_id", e.tenantID.String()),
				zap.Error(err),
			)
		}
		atomic.AddInt64(&p.evictions, 1)
		p.logger.Info("evicted idle tenant database", zap.String("tenant_id", e.tenantID.String()))
	}
	return len(victims)
}

// sweep runs EvictIdle on a fixed interval until Close
func (p *Pool) sweep() {
	ticker := time.NewTicker(p.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.EvictIdle()
		}
	}
}

// Stats returns a snapshot of pool activity
func (p *Pool) Stats() Stats {
	p.mu.RLock()
	size := len(p.entries)
	p.mu.RUnlock()

	return Stats{
		Size:      size,
		Hits:      atomic.LoadInt64(&p.hits),
		Misses:    atomic.LoadInt64(&p.misses),
		Builds:    atomic.LoadInt64(&p.builds),
		Evictions: atomic.LoadInt64(&p.evictions),
	}
}

// Close stops the sweep and closes every pooled connection. Acquire fails
// after Close; outstanding handles keep their connection until it is closed
// here, so Close should run after the HTTP server has drained.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	entries := p.entries
	p.entries = make(map[uuid.UUID]*entry)
	p.mu.Unlock()

	close(p.stopCh)

	var firstErr error
	for _, e := range entries {
		if err := e.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
