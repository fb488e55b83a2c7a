package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/bizgrid/backend/internal/domain/audit"
	"github.com/bizgrid/backend/internal/domain/hr"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendRecord(t *testing.T, repo *GormAuditLogRepository, tenantID, companyID uuid.UUID, entity, entityID string, at time.Time) *audit.Record {
	record := &audit.Record{
		ID:            uuid.New(),
		TenantID:      tenantID,
		CompanyID:     companyID,
		EntityName:    entity,
		EntityID:      entityID,
		Action:        audit.ActionUpdate,
		ActorUserID:   uuid.New(),
		OldValue:      []byte(`{"name":"before"}`),
		NewValue:      []byte(`{"name":"after"}`),
		ChangedFields: []string{"name"},
		DisplayDiff:   "name: before -> after",
		CreatedAt:     at,
	}
	require.NoError(t, repo.Create(context.Background(), record))
	return record
}

func TestGormAuditLogRepository_Find(t *testing.T) {
	db := newTenantDB(t)
	repo := NewGormAuditLogRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	companyID := uuid.New()
	otherCompany := uuid.New()
	base := time.Now().Add(-time.Hour)

	older := appendRecord(t, repo, tenantID, companyID, "invoice", "inv-1", base)
	newer := appendRecord(t, repo, tenantID, companyID, "invoice", "inv-1", base.Add(time.Minute))
	appendRecord(t, repo, tenantID, companyID, "employee", "emp-1", base.Add(2*time.Minute))
	appendRecord(t, repo, tenantID, otherCompany, "invoice", "inv-9", base)
	appendRecord(t, repo, uuid.New(), companyID, "invoice", "inv-1", base)

	t.Run("scopes to tenant and company", func(t *testing.T) {
		records, total, err := repo.Find(ctx, audit.Query{TenantID: tenantID, CompanyID: companyID})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, records, 3)
	})

	t.Run("filters by entity and orders newest first", func(t *testing.T) {
		records, total, err := repo.Find(ctx, audit.Query{
			TenantID:   tenantID,
			CompanyID:  companyID,
			EntityName: "invoice",
			EntityID:   "inv-1",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, records, 2)
		assert.Equal(t, newer.ID, records[0].ID)
		assert.Equal(t, older.ID, records[1].ID)
		assert.Equal(t, []string{"name"}, records[0].ChangedFields)
	})

	t.Run("paginates", func(t *testing.T) {
		records, total, err := repo.Find(ctx, audit.Query{
			TenantID:  tenantID,
			CompanyID: companyID,
			Limit:     2,
			Offset:    2,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, records, 1)
	})
}

func TestGormEmployeeRepository_Isolation(t *testing.T) {
	db := newTenantDB(t)
	repo := NewGormEmployeeRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	companyA := uuid.New()
	companyB := uuid.New()

	seed := func(companyID uuid.UUID, name string) uuid.UUID {
		e, err := hr.NewEmployee(tenantID, companyID, name, decimal.NewFromInt(50000))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, e))
		return e.ID
	}
	idA := seed(companyA, "Ada")
	seed(companyB, "Grace")

	t.Run("list sees only the requested company", func(t *testing.T) {
		employees, err := repo.List(ctx, tenantID, companyA)
		require.NoError(t, err)
		require.Len(t, employees, 1)
		assert.Equal(t, "Ada", employees[0].Name)
	})

	t.Run("lookup across companies misses", func(t *testing.T) {
		_, err := repo.FindByID(ctx, tenantID, companyB, idA)
		assert.Error(t, err)
	})

	t.Run("delete respects the scope", func(t *testing.T) {
		err := repo.Delete(ctx, tenantID, companyB, idA)
		assert.Error(t, err)

		require.NoError(t, repo.Delete(ctx, tenantID, companyA, idA))
	})
}
