package fee

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/schoolfee/backend/internal/domain/academic"
	"github.com/schoolfee/backend/internal/domain/fee"
	"github.com/schoolfee/backend/internal/domain/identity"
	"github.com/schoolfee/backend/internal/domain/shared"
	"github.com/schoolfee/backend/internal/infrastructure/telemetry"
)

// InvoiceService manages per-student fee invoices and keeps their status current
type InvoiceService struct {
	base
	invoices   fee.InvoiceRepository
	structures fee.StructureRepository
	payments   fee.PaymentRepository
	students   academic.StudentReader
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoices fee.InvoiceRepository,
	structures fee.StructureRepository,
	payments fee.PaymentRepository,
	students academic.StudentReader,
	logger *zap.Logger,
	opts ...Option,
) *InvoiceService {
	return &InvoiceService{
		base:       newBase(logger, opts),
		invoices:   invoices,
		structures: structures,
		payments:   payments,
		students:   students,
	}
}

// CreateInvoiceRequest carries the fields of a new invoice.
// A nil Amount bills the fee structure's amount.
type CreateInvoiceRequest struct {
	StudentID      uuid.UUID
	FeeStructureID uuid.UUID
	Amount         *decimal.Decimal
	DueDate        time.Time
	Remarks        string
}

// Create raises an invoice for a student against a fee structure of the same school
func (s *InvoiceService) Create(ctx context.Context, p identity.Principal, req CreateInvoiceRequest) (*fee.FeeInvoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fee_invoice", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		"tenant_id", p.TenantID.String(),
		"student_id", req.StudentID.String(),
	)

	if err := p.RequireStaff(); err != nil {
		return nil, err
	}
	student, err := s.students.FindByID(ctx, p.TenantID, req.StudentID)
	if err != nil {
		return nil, asValidation(err, "INVALID_STUDENT", "Student does not exist in this school")
	}
	structure, err := s.structures.FindByID(ctx, p.TenantID, req.FeeStructureID)
	if err != nil {
		return nil, asValidation(err, "INVALID_FEE_STRUCTURE", "Fee structure does not exist in this school")
	}
	if !structure.AppliesTo(student.ClassID) {
		return nil, shared.NewValidationError("FEE_STRUCTURE_CLASS_MISMATCH",
			"Fee structure is scoped to a different class than the student's")
	}

	amount := structure.Amount
	if req.Amount != nil {
		amount = *req.Amount
	}
	inv, err := fee.NewFeeInvoice(p.TenantID, student.ID, structure.ID, amount, req.DueDate, req.Remarks, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	s.logger.Info("Invoice created",
		zap.String("tenant_id", p.TenantID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("student_id", student.ID.String()),
		zap.String("amount", inv.Amount.String()))
	return inv, nil
}

// Get returns an invoice with its status brought up to date
func (s *InvoiceService) Get(ctx context.Context, p identity.Principal, id uuid.UUID) (*fee.FeeInvoice, error) {
	if err := p.RequireStaff(); err != nil {
		return nil, err
	}
	inv, err := s.invoices.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.refreshStatus(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// List returns a page of invoices, each with its status brought up to date
func (s *InvoiceService) List(ctx context.Context, p identity.Principal, filter fee.InvoiceFilter) (shared.Paginated[fee.FeeInvoice], error) {
	if err := p.RequireStaff(); err != nil {
		return shared.Paginated[fee.FeeInvoice]{}, err
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return shared.Paginated[fee.FeeInvoice]{}, shared.NewValidationError("INVALID_STATUS", "Unknown invoice status")
	}
	filter.Filter = filter.Normalize()
	items, total, err := s.invoices.FindAll(ctx, p.TenantID, filter)
	if err != nil {
		return shared.Paginated[fee.FeeInvoice]{}, fmt.Errorf("failed to list invoices: %w", err)
	}
	for i := range items {
		if err := s.refreshStatus(ctx, &items[i]); err != nil {
			return shared.Paginated[fee.FeeInvoice]{}, err
		}
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// UpdateInvoiceRequest carries optional invoice changes
type UpdateInvoiceRequest struct {
	Amount  *decimal.Decimal
	DueDate *time.Time
	Remarks *string
}

// Update edits the amount, due date or remarks. The status is re-derived.
func (s *InvoiceService) Update(ctx context.Context, p identity.Principal, id uuid.UUID, req UpdateInvoiceRequest) (*fee.FeeInvoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fee_invoice", "update")
	defer span.End()

	if err := p.RequireStaff(); err != nil {
		return nil, err
	}
	inv, err := s.invoices.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, err
	}
	before := inv.Status
	if err := inv.Update(fee.InvoiceChanges{Amount: req.Amount, DueDate: req.DueDate, Remarks: req.Remarks}, s.now()); err != nil {
		return nil, err
	}
	if err := s.invoices.SaveWithLock(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}
	s.statusChanged(ctx, inv, before)
	return inv, nil
}

// Delete tombstones an invoice that has no linked payments
func (s *InvoiceService) Delete(ctx context.Context, p identity.Principal, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "fee_invoice", "delete")
	defer span.End()

	if err := p.RequireStaff(); err != nil {
		return err
	}
	inv, err := s.invoices.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return err
	}
	linked, err := s.payments.CountByInvoice(ctx, p.TenantID, id)
	if err != nil {
		return fmt.Errorf("failed to count payments: %w", err)
	}
	if linked > 0 {
		return shared.NewConflictError("INVOICE_HAS_PAYMENTS", "Cannot delete an invoice with recorded payments")
	}
	if err := inv.Delete(s.now()); err != nil {
		return err
	}
	if err := s.invoices.SaveWithLock(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	s.logger.Info("Invoice deleted",
		zap.String("tenant_id", p.TenantID.String()),
		zap.String("invoice_id", id.String()))
	return nil
}

// refreshStatus is the read-time catch-up: an invoice that passed its due date
// without a new payment is moved to OVERDUE here.
func (s *InvoiceService) refreshStatus(ctx context.Context, inv *fee.FeeInvoice) error {
	return refreshInvoiceStatus(ctx, s.base, s.invoices, inv)
}

func refreshInvoiceStatus(ctx context.Context, b base, repo fee.InvoiceRepository, inv *fee.FeeInvoice) error {
	before := inv.Status
	if !inv.RecomputeStatus(b.now()) {
		return nil
	}
	written, err := repo.UpdateStatus(ctx, inv)
	if err != nil {
		return fmt.Errorf("failed to refresh invoice status: %w", err)
	}
	if written {
		b.statusChanged(ctx, inv, before)
	}
	return nil
}

func (b base) statusChanged(ctx context.Context, inv *fee.FeeInvoice, before fee.InvoiceStatus) {
	if inv.Status == before {
		return
	}
	b.metrics.InvoiceStatusChanged(ctx, inv.Status.String())
	b.logger.Info("Invoice status changed",
		zap.String("tenant_id", inv.TenantID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("from", before.String()),
		zap.String("to", inv.Status.String()))
}

// asValidation turns a NotFound on a referenced entity into a Validation error
func asValidation(err error, code, message string) error {
	if shared.IsNotFound(err) {
		return shared.NewValidationError(code, message)
	}
	return err
}
