package fee

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/schoolfee/backend/internal/domain/fee"
	"github.com/schoolfee/backend/internal/domain/identity"
	"github.com/schoolfee/backend/internal/domain/shared"
	"github.com/schoolfee/backend/internal/infrastructure/telemetry"
)

// HandoverService reconciles cash collected by staff against cash handed over
type HandoverService struct {
	base
	uow       fee.UnitOfWork
	handovers fee.HandoverRepository
	payments  fee.PaymentRepository
	policy    fee.CollectionPolicy
}

// NewHandoverService creates a new HandoverService
func NewHandoverService(
	uow fee.UnitOfWork,
	handovers fee.HandoverRepository,
	payments fee.PaymentRepository,
	policy fee.CollectionPolicy,
	logger *zap.Logger,
	opts ...Option,
) *HandoverService {
	return &HandoverService{
		base:      newBase(logger, opts),
		uow:       uow,
		handovers: handovers,
		payments:  payments,
		policy:    policy,
	}
}

// Summary returns the school's current cash position
func (s *HandoverService) Summary(ctx context.Context, p identity.Principal) (fee.CashPosition, error) {
	if err := p.RequireStaff(); err != nil {
		return fee.CashPosition{}, err
	}
	return s.position(ctx, p.TenantID, s.payments, s.handovers)
}

// SubmitHandoverRequest carries the fields of a new handover
type SubmitHandoverRequest struct {
	Amount  decimal.Decimal
	Remarks string
}

// Create records a handover. Submissions for the same school are serialised so the
// available balance can never go negative.
func (s *HandoverService) Create(ctx context.Context, p identity.Principal, req SubmitHandoverRequest) (*fee.FeeHandover, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fee_handover", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		"tenant_id", p.TenantID.String(),
		"amount", req.Amount.String(),
	)

	if err := p.RequireCollector(); err != nil {
		return nil, err
	}

	var handover *fee.FeeHandover
	err := s.uow.Do(ctx, func(ctx context.Context, repos fee.TxRepositories) error {
		if err := repos.LockTenant(ctx, p.TenantID); err != nil {
			return err
		}
		position, err := s.position(ctx, p.TenantID, repos.Payments(), repos.Handovers())
		if err != nil {
			return err
		}
		handover, err = fee.NewFeeHandover(p.TenantID, p.UserID, req.Amount, req.Remarks, position, s.now())
		if err != nil {
			return err
		}
		if err := repos.Handovers().Create(ctx, handover); err != nil {
			return fmt.Errorf("failed to save handover: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		if shared.KindOf(err) != shared.KindInternal {
			s.metrics.HandoverRejected(ctx, rejectReason(err))
		}
		s.logger.Warn("Handover rejected",
			zap.String("tenant_id", p.TenantID.String()),
			zap.String("submitted_by", p.UserID.String()),
			zap.String("amount", req.Amount.String()),
			zap.Error(err))
		return nil, err
	}

	s.metrics.HandoverAccepted(ctx, handover.AmountSubmitted)
	s.logger.Info("Handover accepted",
		zap.String("tenant_id", p.TenantID.String()),
		zap.String("handover_id", handover.ID.String()),
		zap.String("submitted_by", p.UserID.String()),
		zap.String("amount", handover.AmountSubmitted.String()))
	return handover, nil
}

// List returns a page of handovers
func (s *HandoverService) List(ctx context.Context, p identity.Principal, filter fee.HandoverFilter) (shared.Paginated[fee.FeeHandover], error) {
	if err := p.RequireStaff(); err != nil {
		return shared.Paginated[fee.FeeHandover]{}, err
	}
	filter.Filter = filter.Normalize()
	items, total, err := s.handovers.FindAll(ctx, p.TenantID, filter)
	if err != nil {
		return shared.Paginated[fee.FeeHandover]{}, fmt.Errorf("failed to list handovers: %w", err)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Get returns a handover
func (s *HandoverService) Get(ctx context.Context, p identity.Principal, id uuid.UUID) (*fee.FeeHandover, error) {
	if err := p.RequireStaff(); err != nil {
		return nil, err
	}
	return s.handovers.FindByID(ctx, p.TenantID, id)
}

func (s *HandoverService) position(
	ctx context.Context,
	tenantID uuid.UUID,
	payments fee.PaymentRepository,
	handovers fee.HandoverRepository,
) (fee.CashPosition, error) {
	collected, err := payments.SumCollected(ctx, tenantID, s.policy.Methods())
	if err != nil {
		return fee.CashPosition{}, fmt.Errorf("failed to total collections: %w", err)
	}
	submitted, err := handovers.SumSubmitted(ctx, tenantID)
	if err != nil {
		return fee.CashPosition{}, fmt.Errorf("failed to total handovers: %w", err)
	}
	return fee.CashPosition{TotalCollected: collected, TotalHandedOver: submitted}, nil
}

func rejectReason(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return "UNKNOWN"
}
