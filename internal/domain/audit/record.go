package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action classifies what happened to an entity
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Record is one append-only audit trail row. Records carry both full JSON
// snapshots and a precomputed human-readable diff; they are written once and
// never modified.
type Record struct {
	ID            uuid.UUID `json:"id"`
	TenantID      uuid.UUID `json:"tenant_id"`
	CompanyID     uuid.UUID `json:"company_id"`
	EntityName    string    `json:"entity_name"`
	EntityID      string    `json:"entity_id"`
	Action        Action    `json:"action"`
	ActorUserID   uuid.UUID `json:"actor_user_id"`
	OldValue      []byte    `json:"old_value,omitempty"`
	NewValue      []byte    `json:"new_value,omitempty"`
	ChangedFields []string  `json:"changed_fields"`
	DisplayDiff   string    `json:"display_diff"`
	CreatedAt     time.Time `json:"created_at"`
}

// Query filters the audit trail within one tenant and company scope
type Query struct {
	TenantID   uuid.UUID
	CompanyID  uuid.UUID
	EntityName string // optional
	EntityID   string // optional
	Limit      int
	Offset     int
}

// Repository is the append-and-read store for audit records
type Repository interface {
	// Create appends a record to the trail
	Create(ctx context.Context, record *Record) error

	// Find returns records matching the query, newest first
	Find(ctx context.Context, q Query) ([]*Record, int64, error)
}
