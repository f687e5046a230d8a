package fee

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/schoolfee/backend/internal/domain/academic"
	"github.com/schoolfee/backend/internal/domain/fee"
	"github.com/schoolfee/backend/internal/domain/identity"
	"github.com/schoolfee/backend/internal/domain/school"
	"github.com/schoolfee/backend/internal/domain/shared"
	"github.com/schoolfee/backend/internal/infrastructure/telemetry"
)

// LogoURLResolver turns a stored logo key into a URL a browser can fetch
type LogoURLResolver interface {
	ResolveLogoURL(ctx context.Context, key string) (string, error)
}

// ReceiptRenderer prints a receipt payload to PDF
type ReceiptRenderer interface {
	RenderReceipt(ctx context.Context, payload *fee.ReceiptPayload) ([]byte, error)
}

// ReceiptSources groups the read models a receipt is assembled from
type ReceiptSources struct {
	Payments   fee.PaymentRepository
	Invoices   fee.InvoiceRepository
	Structures fee.StructureRepository
	Students   academic.StudentReader
	Classes    academic.ClassReader
	Schools    school.Repository
}

// ReceiptService assembles printable receipts for payments
type ReceiptService struct {
	base
	src      ReceiptSources
	logos    LogoURLResolver
	renderer ReceiptRenderer
}

// NewReceiptService creates a new ReceiptService. logos and renderer may be nil:
// logo keys are then left out and RenderPDF is unavailable.
func NewReceiptService(src ReceiptSources, logos LogoURLResolver, renderer ReceiptRenderer, logger *zap.Logger, opts ...Option) *ReceiptService {
	return &ReceiptService{
		base:     newBase(logger, opts),
		src:      src,
		logos:    logos,
		renderer: renderer,
	}
}

// Payload joins a payment with its student and school for school staff.
// Repeated calls yield the same receipt number.
func (s *ReceiptService) Payload(ctx context.Context, p identity.Principal, paymentID uuid.UUID) (*fee.ReceiptPayload, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fee_receipt", "payload")
	defer span.End()

	if err := p.RequireStaff(); err != nil {
		return nil, err
	}
	payment, err := s.src.Payments.FindByID(ctx, p.TenantID, paymentID)
	if err != nil {
		return nil, err
	}
	student, err := s.src.Students.FindByID(ctx, p.TenantID, payment.StudentID)
	if err != nil {
		return nil, err
	}
	sch, err := s.src.Schools.FindByID(ctx, p.TenantID)
	if err != nil {
		return nil, err
	}
	feeType, err := s.feeType(ctx, payment)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	payload := &fee.ReceiptPayload{
		Payment: fee.NewReceiptPayment(payment, feeType),
		Student: fee.ReceiptStudent{
			Name:       student.Name,
			RollNumber: student.RollNumber,
			ClassName:  s.className(ctx, p.TenantID, student),
			Phone:      student.Phone,
		},
		School: fee.ReceiptSchool{
			Name:          sch.Name,
			LogoURL:       s.logoURL(ctx, sch.LogoKey),
			PrincipalName: sch.PrincipalName,
			Address:       sch.Address,
			Phone:         sch.Phone,
			Email:         sch.Email,
		},
	}
	return payload, nil
}

// RenderPDF prints the receipt of a payment
func (s *ReceiptService) RenderPDF(ctx context.Context, p identity.Principal, paymentID uuid.UUID) ([]byte, error) {
	if err := p.RequireStaff(); err != nil {
		return nil, err
	}
	if s.renderer == nil {
		return nil, shared.NewDomainError(shared.KindInternal, "PRINTING_DISABLED", "Receipt printing is not configured")
	}
	payload, err := s.Payload(ctx, p, paymentID)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "fee_receipt", "render_pdf")
	defer span.End()
	pdf, err := s.renderer.RenderReceipt(ctx, payload)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	s.logger.Debug("Receipt rendered",
		zap.String("tenant_id", p.TenantID.String()),
		zap.String("receipt_number", payload.Payment.ReceiptNumber),
		zap.Int("bytes", len(pdf)))
	return pdf, nil
}

func (s *ReceiptService) feeType(ctx context.Context, payment *fee.FeePayment) (string, error) {
	if !payment.IsAssociated() {
		return fee.GeneralFeeLabel, nil
	}
	inv, err := s.src.Invoices.FindByID(ctx, payment.TenantID, *payment.InvoiceID)
	if err != nil {
		if shared.IsNotFound(err) {
			return fee.GeneralFeeLabel, nil
		}
		return "", fmt.Errorf("failed to load invoice: %w", err)
	}
	structure, err := s.src.Structures.FindByIDIncludeDeleted(ctx, payment.TenantID, inv.FeeStructureID)
	if err != nil {
		if shared.IsNotFound(err) {
			return fee.GeneralFeeLabel, nil
		}
		return "", fmt.Errorf("failed to load fee structure: %w", err)
	}
	return structure.Name, nil
}

func (s *ReceiptService) className(ctx context.Context, tenantID uuid.UUID, student *academic.Student) string {
	if student.ClassID == nil {
		return ""
	}
	class, err := s.src.Classes.FindByID(ctx, tenantID, *student.ClassID)
	if err != nil {
		if !shared.IsNotFound(err) {
			s.logger.Warn("Failed to load class for receipt", zap.Error(err))
		}
		return ""
	}
	return class.DisplayName()
}

func (s *ReceiptService) logoURL(ctx context.Context, key string) string {
	if key == "" || s.logos == nil {
		return ""
	}
	url, err := s.logos.ResolveLogoURL(ctx, key)
	if err != nil {
		s.logger.Warn("Failed to resolve school logo", zap.String("logo_key", key), zap.Error(err))
		return ""
	}
	return url
}
