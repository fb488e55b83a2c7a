package audit

import (
	"context"
	"time"

	"github.com/bizgrid/backend/internal/domain/audit"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Entry describes one mutation to record
type Entry struct {
	TenantID    uuid.UUID
	CompanyID   uuid.UUID
	ActorUserID uuid.UUID
	EntityName  string
	EntityID    string
	Action      audit.Action
	OldValue    any // nil for creations
	NewValue    any // nil for deletions
}

// Recorder writes the audit trail on a best-effort basis. A mutation must
// never fail because its audit row could not be written, so Record reports
// problems to the log and nowhere else.
type Recorder struct {
	logger *zap.Logger
}

// NewRecorder creates an audit recorder
func NewRecorder(logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{logger: logger}
}

// Record diffs the entry's snapshots and appends a record to the tenant's
// trail. Updates that change no business field are skipped entirely.
func (r *Recorder) Record(ctx context.Context, repo audit.Repository, e Entry) {
	cs, err := Diff(e.OldValue, e.NewValue)
	if err != nil {
		r.logger.Error("failed to diff entity snapshots for audit",
			zap.String("entity", e.EntityName),
			zap.String("entity_id", e.EntityID),
			zap.Error(err),
		)
		return
	}

	if e.Action == audit.ActionUpdate && cs.Empty() {
		return
	}

	record := &audit.Record{
		ID:            uuid.New(),
		TenantID:      e.TenantID,
		CompanyID:     e.CompanyID,
		EntityName:    e.EntityName,
		EntityID:      e.EntityID,
		Action:        e.Action,
		ActorUserID:   e.ActorUserID,
		OldValue:      cs.OldJSON,
		NewValue:      cs.NewJSON,
		ChangedFields: cs.Fields(),
		DisplayDiff:   cs.Display(),
		CreatedAt:     time.Now(),
	}

	if err := repo.Create(ctx, record); err != nil {
		r.logger.Error("failed to write audit record",
			zap.String("tenant_id", e.TenantID.String()),
			zap.String("entity", e.EntityName),
			zap.String("entity_id", e.EntityID),
			zap.Error(err),
		)
	}
}
