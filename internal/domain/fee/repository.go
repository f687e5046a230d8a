package fee

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schoolfee/backend/internal/domain/academic"
	"github.com/schoolfee/backend/internal/domain/shared"
)

// StructureFilter narrows fee structure listings
type StructureFilter struct {
	shared.Filter
	ClassID *uuid.UUID
}

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	shared.Filter
	StudentID *uuid.UUID
	ClassID   *uuid.UUID
	Status    InvoiceStatus
}

// PaymentFilter narrows payment listings
type PaymentFilter struct {
	shared.Filter
	StudentID *uuid.UUID
	InvoiceID *uuid.UUID
	Method    PaymentMethod
	From      *time.Time
	To        *time.Time
}

// HandoverFilter narrows handover listings
type HandoverFilter struct {
	shared.Filter
	SubmittedBy *uuid.UUID
	From        *time.Time
	To          *time.Time
}

// StructureRepository persists fee structures.
// Every lookup is scoped by tenant; tombstoned rows are excluded unless the
// method name says otherwise.
type StructureRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*FeeStructure, error)
	FindByIDIncludeDeleted(ctx context.Context, tenantID, id uuid.UUID) (*FeeStructure, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter StructureFilter) ([]FeeStructure, int64, error)
	Create(ctx context.Context, fs *FeeStructure) error
	// SaveWithLock updates using optimistic locking on Version
	SaveWithLock(ctx context.Context, fs *FeeStructure) error
}

// InvoiceRepository persists fee invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*FeeInvoice, error)
	// FindByIDForUpdate loads the invoice with a row lock held until the transaction ends
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*FeeInvoice, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]FeeInvoice, int64, error)
	FindByStudent(ctx context.Context, tenantID, studentID uuid.UUID) ([]FeeInvoice, error)
	CountByStructure(ctx context.Context, tenantID, structureID uuid.UUID) (int64, error)
	Create(ctx context.Context, inv *FeeInvoice) error
	// SaveWithLock updates using optimistic locking on Version
	SaveWithLock(ctx context.Context, inv *FeeInvoice) error
	// UpdateStatus persists a re-derived status without bumping the version.
	// The write only lands if the row still has inv.Version and a different status.
	UpdateStatus(ctx context.Context, inv *FeeInvoice) (bool, error)
}

// PaymentRepository persists payments. Payments are append-only.
type PaymentRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*FeePayment, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) ([]FeePayment, int64, error)
	Create(ctx context.Context, p *FeePayment) error
	CountByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (int64, error)
	// SumByStudent returns the totals of the student's invoice-linked and unassociated payments
	SumByStudent(ctx context.Context, tenantID, studentID uuid.UUID) (linked, unassociated decimal.Decimal, err error)
	// SumCollected totals payments of the given methods; nil methods means all
	SumCollected(ctx context.Context, tenantID uuid.UUID, methods []PaymentMethod) (decimal.Decimal, error)
}

// HandoverRepository persists handovers. Handovers are append-only.
type HandoverRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*FeeHandover, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter HandoverFilter) ([]FeeHandover, int64, error)
	Create(ctx context.Context, h *FeeHandover) error
	SumSubmitted(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error)
}

// TxRepositories exposes repositories bound to one transaction
type TxRepositories interface {
	Students() academic.StudentReader
	Invoices() InvoiceRepository
	Payments() PaymentRepository
	Handovers() HandoverRepository
	// LockTenant takes the per-tenant write lock that serialises handover submissions
	LockTenant(ctx context.Context, tenantID uuid.UUID) error
}

// UnitOfWork runs fn in a single transaction. If fn returns an error nothing it
// wrote is kept.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}
