package accounting

import (
	"context"
	"time"

	appaudit "github.com/bizgrid/backend/internal/application/audit"
	"github.com/bizgrid/backend/internal/domain/accounting"
	"github.com/bizgrid/backend/internal/domain/audit"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateInvoiceInput carries the fields for a new draft invoice
type CreateInvoiceInput struct {
	Number   string          `json:"number" binding:"required,max=50"`
	Customer string          `json:"customer" binding:"max=200"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency" binding:"omitempty,currency"`
}

// InvoiceService implements the accounting module's invoice operations
type InvoiceService struct {
	invoices accounting.Repository
	trail    audit.Repository
	recorder *appaudit.Recorder
	logger   *zap.Logger
}

// NewInvoiceService creates an invoice service over the request's tenant scope
func NewInvoiceService(invoices accounting.Repository, trail audit.Repository, recorder *appaudit.Recorder, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{invoices: invoices, trail: trail, recorder: recorder, logger: logger}
}

// Create adds a draft invoice to the company scope
func (s *InvoiceService) Create(ctx context.Context, scope shared.Scope, input CreateInvoiceInput) (*accounting.Invoice, error) {
	invoice, err := accounting.NewInvoice(scope.TenantID, scope.CompanyID, input.Number, input.Customer, input.Amount, input.Currency)
	if err != nil {
		return nil, err
	}

	if err := s.invoices.Create(ctx, invoice); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, s.trail, appaudit.Entry{
		TenantID:    scope.TenantID,
		CompanyID:   scope.CompanyID,
		ActorUserID: scope.UserID,
		EntityName:  "invoice",
		EntityID:    invoice.ID.String(),
		Action:      audit.ActionCreate,
		NewValue:    invoice,
	})
	return invoice, nil
}

// Get returns one invoice in the company scope
func (s *InvoiceService) Get(ctx context.Context, scope shared.Scope, id uuid.UUID) (*accounting.Invoice, error) {
	return s.invoices.FindByID(ctx, scope.TenantID, scope.CompanyID, id)
}

// List returns the company's invoices
func (s *InvoiceService) List(ctx context.Context, scope shared.Scope) ([]*accounting.Invoice, error) {
	return s.invoices.List(ctx, scope.TenantID, scope.CompanyID)
}

// Issue moves a draft invoice to issued with the given due date
func (s *InvoiceService) Issue(ctx context.Context, scope shared.Scope, id uuid.UUID, dueAt time.Time) (*accounting.Invoice, error) {
	return s.transition(ctx, scope, id, func(inv *accounting.Invoice) error {
		return inv.Issue(dueAt)
	})
}

// MarkPaid settles an issued invoice
func (s *InvoiceService) MarkPaid(ctx context.Context, scope shared.Scope, id uuid.UUID) (*accounting.Invoice, error) {
	return s.transition(ctx, scope, id, func(inv *accounting.Invoice) error {
		return inv.MarkPaid()
	})
}

// Void cancels an unpaid invoice
func (s *InvoiceService) Void(ctx context.Context, scope shared.Scope, id uuid.UUID) (*accounting.Invoice, error) {
	return s.transition(ctx, scope, id, func(inv *accounting.Invoice) error {
		return inv.Void()
	})
}

func (s *InvoiceService) transition(ctx context.Context, scope shared.Scope, id uuid.UUID, apply func(*accounting.Invoice) error) (*accounting.Invoice, error) {
	invoice, err := s.invoices.FindByID(ctx, scope.TenantID, scope.CompanyID, id)
	if err != nil {
		return nil, err
	}
	before := *invoice

	if err := apply(invoice); err != nil {
		return nil, err
	}
	if err := s.invoices.Update(ctx, invoice); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, s.trail, appaudit.Entry{
		TenantID:    scope.TenantID,
		CompanyID:   scope.CompanyID,
		ActorUserID: scope.UserID,
		EntityName:  "invoice",
		EntityID:    invoice.ID.String(),
		Action:      audit.ActionUpdate,
		OldValue:    &before,
		NewValue:    invoice,
	})
	return invoice, nil
}
