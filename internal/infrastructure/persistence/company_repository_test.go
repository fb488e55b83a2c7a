package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/bizgrid/backend/internal/domain/company"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTenantDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.CompanyModel{},
		&models.EmployeeModel{},
		&models.InvoiceModel{},
		&models.AuditLogModel{},
	))
	return db
}

func createCompanyAt(t *testing.T, repo *GormCompanyRepository, tenantID uuid.UUID, name string, createdAt time.Time) *company.Company {
	c, err := company.NewCompany(tenantID, name, "")
	require.NoError(t, err)
	c.CreatedAt = createdAt
	c.UpdatedAt = createdAt
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func TestGormCompanyRepository_FindByID(t *testing.T) {
	db := newTenantDB(t)
	repo := NewGormCompanyRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	created := createCompanyAt(t, repo, tenantID, "Acme GmbH", time.Now())

	t.Run("finds company in its tenant", func(t *testing.T) {
		found, err := repo.FindByID(ctx, tenantID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Acme GmbH", found.Name)
	})

	t.Run("company is invisible from another tenant", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New(), created.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormCompanyRepository_FindDefault(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the oldest company", func(t *testing.T) {
		db := newTenantDB(t)
		repo := NewGormCompanyRepository(db)
		tenantID := uuid.New()
		base := time.Now().Add(-time.Hour)

		createCompanyAt(t, repo, tenantID, "Second", base.Add(time.Minute))
		first := createCompanyAt(t, repo, tenantID, "First", base)
		createCompanyAt(t, repo, tenantID, "Third", base.Add(2*time.Minute))

		def, err := repo.FindDefault(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, def.ID)
	})

	t.Run("breaks creation-time ties on the smaller id", func(t *testing.T) {
		db := newTenantDB(t)
		repo := NewGormCompanyRepository(db)
		tenantID := uuid.New()
		at := time.Now().Truncate(time.Second)

		a := createCompanyAt(t, repo, tenantID, "A", at)
		b := createCompanyAt(t, repo, tenantID, "B", at)

		expected := a
		if b.ID.String() < a.ID.String() {
			expected = b
		}

		def, err := repo.FindDefault(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, expected.ID, def.ID)

		// The choice must be stable across calls
		again, err := repo.FindDefault(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, def.ID, again.ID)
	})

	t.Run("tenant without companies has no default", func(t *testing.T) {
		db := newTenantDB(t)
		repo := NewGormCompanyRepository(db)

		_, err := repo.FindDefault(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("another tenant's companies never become the default", func(t *testing.T) {
		db := newTenantDB(t)
		repo := NewGormCompanyRepository(db)
		tenantA := uuid.New()
		tenantB := uuid.New()

		createCompanyAt(t, repo, tenantA, "A's oldest", time.Now().Add(-time.Hour))
		own := createCompanyAt(t, repo, tenantB, "B's only", time.Now())

		def, err := repo.FindDefault(ctx, tenantB)
		require.NoError(t, err)
		assert.Equal(t, own.ID, def.ID)
	})
}

func TestGormCompanyRepository_List(t *testing.T) {
	db := newTenantDB(t)
	repo := NewGormCompanyRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	base := time.Now().Add(-time.Hour)

	createCompanyAt(t, repo, tenantID, "Older", base)
	createCompanyAt(t, repo, tenantID, "Newer", base.Add(time.Minute))
	createCompanyAt(t, repo, uuid.New(), "Foreign", base)

	companies, err := repo.List(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, "Older", companies[0].Name)
	assert.Equal(t, "Newer", companies[1].Name)
}
