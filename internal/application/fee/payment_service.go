package fee

import (
	"context"
	"errors"
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

// PaymentConfig controls how payments are accepted
type PaymentConfig struct {
	AllowOverpayment bool
	IdempotencyTTL   time.Duration
}

// PaymentService records fee payments and reports student fee positions
type PaymentService struct {
	base
	uow         fee.UnitOfWork
	payments    fee.PaymentRepository
	invoices    fee.InvoiceRepository
	students    academic.StudentReader
	idempotency shared.IdempotencyStore
	cfg         PaymentConfig
}

// NewPaymentService creates a new PaymentService. idempotency may be nil, in
// which case idempotency keys are ignored.
func NewPaymentService(
	uow fee.UnitOfWork,
	payments fee.PaymentRepository,
	invoices fee.InvoiceRepository,
	students academic.StudentReader,
	idempotency shared.IdempotencyStore,
	cfg PaymentConfig,
	logger *zap.Logger,
	opts ...Option,
) *PaymentService {
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = 24 * time.Hour
	}
	return &PaymentService{
		base:        newBase(logger, opts),
		uow:         uow,
		payments:    payments,
		invoices:    invoices,
		students:    students,
		idempotency: idempotency,
		cfg:         cfg,
	}
}

// RecordPaymentRequest carries the fields of a new payment
type RecordPaymentRequest struct {
	StudentID      uuid.UUID
	InvoiceID      *uuid.UUID
	AmountPaid     decimal.Decimal
	Method         fee.PaymentMethod
	TransactionID  string
	Remarks        string
	PaidAt         *time.Time
	IdempotencyKey string
}

// Create records a payment. When it is linked to an invoice the invoice is locked,
// its paid amount and status are updated and both rows commit together.
func (s *PaymentService) Create(ctx context.Context, p identity.Principal, req RecordPaymentRequest) (*fee.FeePayment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fee_payment", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		"tenant_id", p.TenantID.String(),
		"student_id", req.StudentID.String(),
		"amount", req.AmountPaid.String(),
		"method", req.Method.String(),
	)

	if err := p.RequireStaff(); err != nil {
		return nil, err
	}

	key, err := s.claim(ctx, p.TenantID, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	var (
		payment     *fee.FeePayment
		invoice     *fee.FeeInvoice
		statusAfter fee.InvoiceStatus
		statusPrior fee.InvoiceStatus
	)
	err = s.uow.Do(ctx, func(ctx context.Context, repos fee.TxRepositories) error {
		now := s.now()

		student, err := repos.Students().FindByID(ctx, p.TenantID, req.StudentID)
		if err != nil {
			return asValidation(err, "INVALID_STUDENT", "Student does not exist in this school")
		}

		spec := fee.PaymentSpec{
			StudentID:     student.ID,
			InvoiceID:     req.InvoiceID,
			AmountPaid:    req.AmountPaid,
			Method:        req.Method,
			TransactionID: req.TransactionID,
			Remarks:       req.Remarks,
			RecordedBy:    p.UserID,
		}
		if req.PaidAt != nil {
			spec.PaidAt = req.PaidAt.UTC()
		}
		payment, err = fee.NewFeePayment(p.TenantID, spec, now)
		if err != nil {
			return err
		}

		if payment.IsAssociated() {
			invoice, err = repos.Invoices().FindByIDForUpdate(ctx, p.TenantID, *payment.InvoiceID)
			if err != nil {
				return asValidation(err, "INVALID_INVOICE", "Invoice does not exist in this school")
			}
			if invoice.StudentID != student.ID {
				return shared.NewValidationError("INVOICE_STUDENT_MISMATCH", "Invoice belongs to a different student")
			}
			statusPrior = invoice.Status
			if err := invoice.ApplyPayment(payment.AmountPaid, s.cfg.AllowOverpayment, now); err != nil {
				return err
			}
			statusAfter = invoice.Status
		}

		if err := repos.Payments().Create(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		if invoice != nil {
			if err := repos.Invoices().SaveWithLock(ctx, invoice); err != nil {
				return fmt.Errorf("failed to update invoice: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.release(ctx, key)
		telemetry.RecordError(span, err)
		s.logger.Warn("Payment rejected",
			zap.String("tenant_id", p.TenantID.String()),
			zap.String("student_id", req.StudentID.String()),
			zap.Error(err))
		return nil, err
	}

	s.metrics.PaymentRecorded(ctx, payment.Method.String(), payment.AmountPaid)
	if invoice != nil && statusAfter != statusPrior {
		s.statusChanged(ctx, invoice, statusPrior)
	}
	s.logger.Info("Payment recorded",
		zap.String("tenant_id", p.TenantID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("student_id", payment.StudentID.String()),
		zap.String("amount", payment.AmountPaid.String()),
		zap.String("method", payment.Method.String()))
	return payment, nil
}

// Get returns a payment
func (s *PaymentService) Get(ctx context.Context, p identity.Principal, id uuid.UUID) (*fee.FeePayment, error) {
	if err := p.RequireStaff(); err != nil {
		return nil, err
	}
	return s.payments.FindByID(ctx, p.TenantID, id)
}

// List returns a page of payments, newest first by default
func (s *PaymentService) List(ctx context.Context, p identity.Principal, filter fee.PaymentFilter) (shared.Paginated[fee.FeePayment], error) {
	if err := p.RequireStaff(); err != nil {
		return shared.Paginated[fee.FeePayment]{}, err
	}
	if filter.Method != "" && !filter.Method.IsValid() {
		return shared.Paginated[fee.FeePayment]{}, shared.NewValidationError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return shared.Paginated[fee.FeePayment]{}, shared.NewValidationError("INVALID_DATE_RANGE", "From must not be after To")
	}
	filter.Filter = filter.Normalize()
	items, total, err := s.payments.FindAll(ctx, p.TenantID, filter)
	if err != nil {
		return shared.Paginated[fee.FeePayment]{}, fmt.Errorf("failed to list payments: %w", err)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// StudentSummary totals what a student has been invoiced and has paid
func (s *PaymentService) StudentSummary(ctx context.Context, p identity.Principal, studentID uuid.UUID) (*fee.StudentFeeSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fee_payment", "student_summary")
	defer span.End()

	if err := p.RequireStaff(); err != nil {
		return nil, err
	}
	if _, err := s.students.FindByID(ctx, p.TenantID, studentID); err != nil {
		return nil, err
	}
	invoices, err := s.invoices.FindByStudent(ctx, p.TenantID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}
	for i := range invoices {
		if err := refreshInvoiceStatus(ctx, s.base, s.invoices, &invoices[i]); err != nil {
			return nil, err
		}
	}
	linked, unassociated, err := s.payments.SumByStudent(ctx, p.TenantID, studentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to total payments: %w", err)
	}
	summary := fee.NewStudentFeeSummary(studentID, invoices, linked, unassociated)
	return &summary, nil
}

// claim reserves the idempotency key for this tenant. An empty key or a missing
// store disables the check; a store outage is logged and the payment proceeds.
func (s *PaymentService) claim(ctx context.Context, tenantID uuid.UUID, key string) (string, error) {
	if key == "" || s.idempotency == nil {
		return "", nil
	}
	scoped := tenantID.String() + ":" + key
	claimed, err := s.idempotency.MarkProcessed(ctx, scoped, s.cfg.IdempotencyTTL)
	if err != nil {
		s.logger.Warn("Idempotency store unavailable",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
		return "", nil
	}
	if !claimed {
		return "", shared.NewDomainError(shared.KindStateConflict, shared.ErrDuplicateSubmission.Code,
			"A payment with this idempotency key was already submitted")
	}
	return scoped, nil
}

func (s *PaymentService) release(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.idempotency.Release(context.WithoutCancel(ctx), key); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(err))
	}
}
