package accounting

import (
	"context"
	"strings"
	"time"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ModuleName is the enablement key for the accounting module
const ModuleName = "accounting"

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft  InvoiceStatus = "draft"
	InvoiceStatusIssued InvoiceStatus = "issued"
	InvoiceStatusPaid   InvoiceStatus = "paid"
	InvoiceStatusVoid   InvoiceStatus = "void"
)

// Invoice is an accounting-module record, double-keyed by tenant and company
type Invoice struct {
	ID        uuid.UUID       `json:"id"`
	TenantID  uuid.UUID       `json:"tenant_id"`
	CompanyID uuid.UUID       `json:"company_id"`
	Number    string          `json:"number"`
	Customer  string          `json:"customer"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Status    InvoiceStatus   `json:"status"`
	DueAt     *time.Time      `json:"due_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewInvoice creates a draft invoice in the given company scope
func NewInvoice(tenantID, companyID uuid.UUID, number, customer string, amount decimal.Decimal, currency string) (*Invoice, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Invoice number is required")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Invoice amount must not be negative")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "EUR"
	}
	if len(currency) != 3 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Currency must be a 3-letter code")
	}

	now := time.Now()
	return &Invoice{
		ID:        uuid.New(),
		TenantID:  tenantID,
		CompanyID: companyID,
		Number:    number,
		Customer:  strings.TrimSpace(customer),
		Amount:    amount,
		Currency:  currency,
		Status:    InvoiceStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Issue moves a draft invoice to issued
func (i *Invoice) Issue(dueAt time.Time) error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewDomainError(shared.CodeConflict, "Only draft invoices can be issued")
	}
	i.Status = InvoiceStatusIssued
	i.DueAt = &dueAt
	i.UpdatedAt = time.Now()
	return nil
}

// MarkPaid settles an issued invoice
func (i *Invoice) MarkPaid() error {
	if i.Status != InvoiceStatusIssued {
		return shared.NewDomainError(shared.CodeConflict, "Only issued invoices can be paid")
	}
	i.Status = InvoiceStatusPaid
	i.UpdatedAt = time.Now()
	return nil
}

// Void cancels an unpaid invoice
func (i *Invoice) Void() error {
	if i.Status == InvoiceStatusPaid {
		return shared.NewDomainError(shared.CodeConflict, "Paid invoices cannot be voided")
	}
	i.Status = InvoiceStatusVoid
	i.UpdatedAt = time.Now()
	return nil
}

// Repository provides access to invoices within a company scope
type Repository interface {
	Create(ctx context.Context, invoice *Invoice) error
	FindByID(ctx context.Context, tenantID, companyID, id uuid.UUID) (*Invoice, error)
	List(ctx context.Context, tenantID, companyID uuid.UUID) ([]*Invoice, error)
	Update(ctx context.Context, invoice *Invoice) error
}
