package tenantpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/infrastructure/persistence"
	"github.com/bizgrid/backend/internal/infrastructure/registry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticRegistry serves descriptors from a fixed map
type staticRegistry struct {
	tenants map[uuid.UUID]*registry.TenantDescriptor
}

func (r *staticRegistry) Lookup(_ context.Context, tenantID uuid.UUID) (*registry.TenantDescriptor, error) {
	if d, ok := r.tenants[tenantID]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("tenant %s: %w", tenantID, shared.ErrTenantUnavailable)
}

func (r *staticRegistry) LookupBySlug(_ context.Context, slug string) (*registry.TenantDescriptor, error) {
	for _, d := range r.tenants {
		if d.Slug == slug {
			return d, nil
		}
	}
	return nil, fmt.Errorf("tenant %q: %w", slug, shared.ErrTenantUnavailable)
}

func newStaticRegistry(descriptors ...*registry.TenantDescriptor) *staticRegistry {
	r := &staticRegistry{tenants: make(map[uuid.UUID]*registry.TenantDescriptor)}
	for _, d := range descriptors {
		r.tenants[d.ID] = d
	}
	return r
}

func testDescriptor(slug string) *registry.TenantDescriptor {
	return &registry.TenantDescriptor{
		ID:     uuid.New(),
		Slug:   slug,
		Driver: "sqlite",
		DSN:    ":memory:",
		Active: true,
	}
}

// sqliteBuilder opens real in-memory databases and counts how often it runs
func sqliteBuilder(builds *int64, delay time.Duration) Builder {
	return func(_ context.Context, d *registry.TenantDescriptor) (*persistence.Database, error) {
		atomic.AddInt64(builds, 1)
		if delay > 0 {
			time.Sleep(delay)
		}
		return persistence.Open(persistence.Options{Driver: d.Driver, DSN: d.DSN})
	}
}

func TestPool_Acquire(t *testing.T) {
	ctx := context.Background()

	t.Run("builds once then serves from pool", func(t *testing.T) {
		var builds int64
		d := testDescriptor("acme")
		pool := New(newStaticRegistry(d), sqliteBuilder(&builds, 0))
		defer pool.Close()

		h1, err := pool.Acquire(ctx, d.ID)
		require.NoError(t, err)
		h1.Release()

		h2, err := pool.Acquire(ctx, d.ID)
		require.NoError(t, err)
		defer h2.Release()

		assert.Same(t, h1.DB(), h2.DB())
		assert.Equal(t, int64(1), atomic.LoadInt64(&builds))

		stats := pool.Stats()
		assert.Equal(t, 1, stats.Size)
		assert.Equal(t, int64(1), stats.Hits)
		assert.Equal(t, int64(1), stats.Misses)
	})

	t.Run("tenants never share a connection", func(t *testing.T) {
		var builds int64
		d1 := testDescriptor("acme")
		d2 := testDescriptor("globex")
		pool := New(newStaticRegistry(d1, d2), sqliteBuilder(&builds, 0))
		defer pool.Close()

		h1, err := pool.Acquire(ctx, d1.ID)
		require.NoError(t, err)
		defer h1.Release()

		h2, err := pool.Acquire(ctx, d2.ID)
		require.NoError(t, err)
		defer h2.Release()

		assert.NotSame(t, h1.DB(), h2.DB())
		assert.Equal(t, d1.ID, h1.Tenant().ID)
		assert.Equal(t, d2.ID, h2.Tenant().ID)
		assert.Equal(t, int64(2), atomic.LoadInt64(&builds))
	})

	t.Run("unknown tenant is unavailable", func(t *testing.T) {
		var builds int64
		pool := New(newStaticRegistry(), sqliteBuilder(&builds, 0))
		defer pool.Close()

		_, err := pool.Acquire(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrTenantUnavailable)
		assert.Zero(t, atomic.LoadInt64(&builds))
	})

	t.Run("build failure is unavailable and not cached", func(t *testing.T) {
		var builds int64
		d := testDescriptor("broken")
		failing := func(_ context.Context, _ *registry.TenantDescriptor) (*persistence.Database, error) {
			atomic.AddInt64(&builds, 1)
			return nil, errors.New("connection refused")
		}
		pool := New(newStaticRegistry(d), failing)
		defer pool.Close()

		_, err := pool.Acquire(ctx, d.ID)
		assert.ErrorIs(t, err, shared.ErrTenantUnavailable)

		_, err = pool.Acquire(ctx, d.ID)
		assert.ErrorIs(t, err, shared.ErrTenantUnavailable)
		assert.Equal(t, int64(2), atomic.LoadInt64(&builds), "failures must not poison the pool")
		assert.Zero(t, pool.Stats().Size)
	})
}

func TestPool_SingleflightBuild(t *testing.T) {
	var builds int64
	d := testDescriptor("acme")
	pool := New(newStaticRegistry(d), sqliteBuilder(&builds, 50*time.Millisecond))
	defer pool.Close()

	const waiters = 20
	handles := make([]*Handle, waiters)
	var wg sync.WaitGroup
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := pool.Acquire(context.Background(), d.ID)
			assert.NoError(t, err)
			handles[i] = h
		}(i)
	}
	wg.Wait()

	for _, h := range handles {
		require.NotNil(t, h)
		assert.Same(t, handles[0].DB(), h.DB())
		h.Release()
	}

	assert.Equal(t, int64(1), atomic.LoadInt64(&builds), "concurrent first requests share one build")
	assert.Equal(t, 1, pool.Stats().Size)
}

func TestPool_WaiterCancellation(t *testing.T) {
	d := testDescriptor("slow")
	release := make(chan struct{})
	var builds int64
	blocking := func(_ context.Context, desc *registry.TenantDescriptor) (*persistence.Database, error) {
		atomic.AddInt64(&builds, 1)
		<-release
		return persistence.Open(persistence.Options{Driver: desc.Driver, DSN: desc.DSN})
	}
	pool := New(newStaticRegistry(d), blocking)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := pool.Acquire(ctx, d.ID)
		errCh <- err
	}()

	// Wait until the build is in flight, then abandon the first waiter
	require.Eventually(t, func() bool { return atomic.LoadInt64(&builds) == 1 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	// The abandoned build still completes and serves later requests
	close(release)
	h, err := pool.Acquire(context.Background(), d.ID)
	require.NoError(t, err)
	defer h.Release()
	assert.Equal(t, int64(1), atomic.LoadInt64(&builds))
}

func TestPool_EvictIdle(t *testing.T) {
	t.Run("held handles are never evicted", func(t *testing.T) {
		var builds int64
		d := testDescriptor("acme")
		pool := New(newStaticRegistry(d), sqliteBuilder(&builds, 0), WithIdleTTL(time.Nanosecond))
		defer pool.Close()

		h, err := pool.Acquire(context.Background(), d.ID)
		require.NoError(t, err)

		time.Sleep(time.Millisecond)
		assert.Zero(t, pool.EvictIdle())
		assert.Equal(t, 1, pool.Stats().Size)

		h.Release()
		time.Sleep(time.Millisecond)
		assert.Equal(t, 1, pool.EvictIdle())
		assert.Zero(t, pool.Stats().Size)
	})

	t.Run("fresh handles survive the sweep", func(t *testing.T) {
		var builds int64
		d := testDescriptor("acme")
		pool := New(newStaticRegistry(d), sqliteBuilder(&builds, 0), WithIdleTTL(time.Hour))
		defer pool.Close()

		h, err := pool.Acquire(context.Background(), d.ID)
		require.NoError(t, err)
		h.Release()

		assert.Zero(t, pool.EvictIdle())
		assert.Equal(t, 1, pool.Stats().Size)
	})

	t.Run("eviction forces a rebuild on next acquire", func(t *testing.T) {
		var builds int64
		d := testDescriptor("acme")
		pool := New(newStaticRegistry(d), sqliteBuilder(&builds, 0), WithIdleTTL(time.Nanosecond))
		defer pool.Close()

		h, err := pool.Acquire(context.Background(), d.ID)
		require.NoError(t, err)
		h.Release()

		time.Sleep(time.Millisecond)
		require.Equal(t, 1, pool.EvictIdle())

		h2, err := pool.Acquire(context.Background(), d.ID)
		require.NoError(t, err)
		defer h2.Release()
		assert.Equal(t, int64(2), atomic.LoadInt64(&builds))
		assert.Equal(t, int64(1), pool.Stats().Evictions)
	})
}

func TestPool_ReleaseIdempotent(t *testing.T) {
	var builds int64
	d := testDescriptor("acme")
	pool := New(newStaticRegistry(d), sqliteBuilder(&builds, 0), WithIdleTTL(time.Nanosecond))
	defer pool.Close()

	h, err := pool.Acquire(context.Background(), d.ID)
	require.NoError(t, err)

	h2, err := pool.Acquire(context.Background(), d.ID)
	require.NoError(t, err)

	// Double release of h must not free h2's lease
	h.Release()
	h.Release()

	time.Sleep(time.Millisecond)
	assert.Zero(t, pool.EvictIdle(), "second handle still holds the lease")
	h2.Release()
}

func TestPool_Close(t *testing.T) {
	var builds int64
	d := testDescriptor("acme")
	pool := New(newStaticRegistry(d), sqliteBuilder(&builds, 0))

	h, err := pool.Acquire(context.Background(), d.ID)
	require.NoError(t, err)
	h.Release()

	require.NoError(t, pool.Close())
	require.NoError(t, pool.Close())

	_, err = pool.Acquire(context.Background(), d.ID)
	assert.ErrorIs(t, err, shared.ErrTenantUnavailable)
}
