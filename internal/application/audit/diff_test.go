package audit

import (
	"strings"
	"testing"
	"time"

	"github.com/bizgrid/backend/internal/domain/hr"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	t.Run("reports only changed business fields", func(t *testing.T) {
		before, err := hr.NewEmployee(uuid.New(), uuid.New(), "Ada Lovelace", decimal.NewFromInt(50000))
		require.NoError(t, err)

		after := *before
		after.Position = "Lead Engineer"
		after.Salary = decimal.NewFromInt(60000)
		after.UpdatedAt = time.Now().Add(time.Minute)

		cs, err := Diff(before, &after)
		require.NoError(t, err)

		assert.Equal(t, []string{"position", "salary"}, cs.Fields())
		assert.False(t, cs.Empty())
	})

	t.Run("bookkeeping fields never appear", func(t *testing.T) {
		type row struct {
			ID        string `json:"id"`
			TenantID  string `json:"tenant_id"`
			CompanyID string `json:"company_id"`
			CreatedAt string `json:"created_at"`
			UpdatedAt string `json:"updated_at"`
			Name      string `json:"name"`
		}
		cs, err := Diff(
			row{ID: "1", TenantID: "a", CreatedAt: "x", Name: "same"},
			row{ID: "2", TenantID: "b", CreatedAt: "y", Name: "same"},
		)
		require.NoError(t, err)
		assert.True(t, cs.Empty())
	})

	t.Run("identical snapshots yield an empty change set", func(t *testing.T) {
		e, err := hr.NewEmployee(uuid.New(), uuid.New(), "Ada", decimal.NewFromInt(1))
		require.NoError(t, err)

		cs, err := Diff(e, e)
		require.NoError(t, err)
		assert.True(t, cs.Empty())
		assert.Empty(t, cs.Display())
	})

	t.Run("creation diffs against nothing", func(t *testing.T) {
		e, err := hr.NewEmployee(uuid.New(), uuid.New(), "Ada", decimal.NewFromInt(1))
		require.NoError(t, err)

		cs, err := Diff(nil, e)
		require.NoError(t, err)
		assert.Nil(t, cs.OldJSON)
		assert.NotNil(t, cs.NewJSON)
		assert.Contains(t, cs.Fields(), "name")
	})

	t.Run("display renders one line per change", func(t *testing.T) {
		type doc struct {
			Title string `json:"title"`
			Body  string `json:"body"`
		}
		cs, err := Diff(doc{Title: "old", Body: "same"}, doc{Title: "new", Body: "same"})
		require.NoError(t, err)
		assert.Equal(t, "title: old -> new", cs.Display())
	})

	t.Run("display truncates long values", func(t *testing.T) {
		type doc struct {
			Body string `json:"body"`
		}
		long := strings.Repeat("x", 500)
		cs, err := Diff(doc{Body: "short"}, doc{Body: long})
		require.NoError(t, err)

		line := cs.Display()
		assert.Less(t, len(line), 300)
		assert.Contains(t, line, "...")
	})

	t.Run("nested values compare structurally", func(t *testing.T) {
		type doc struct {
			Tags []string `json:"tags"`
		}
		cs, err := Diff(doc{Tags: []string{"a"}}, doc{Tags: []string{"a", "b"}})
		require.NoError(t, err)
		require.Len(t, cs.Changes, 1)
		assert.Equal(t, `["a"]`, cs.Changes[0].Old)
		assert.Equal(t, `["a","b"]`, cs.Changes[0].New)
	})
}
