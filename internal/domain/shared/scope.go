package shared

import "github.com/google/uuid"

// Scope is the resolved isolation context a mutation runs in: which tenant,
// which company inside it, and which user is acting. Application services
// receive it instead of reading claims themselves.
type Scope struct {
	TenantID  uuid.UUID
	CompanyID uuid.UUID
	UserID    uuid.UUID
}
