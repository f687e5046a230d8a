package fee

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/schoolfee/backend/internal/domain/academic"
	"github.com/schoolfee/backend/internal/domain/fee"
	"github.com/schoolfee/backend/internal/domain/identity"
	"github.com/schoolfee/backend/internal/domain/shared"
	"github.com/schoolfee/backend/internal/infrastructure/telemetry"
)

// StructureService manages the catalog of fee structures
type StructureService struct {
	base
	structures fee.StructureRepository
	invoices   fee.InvoiceRepository
	classes    academic.ClassReader
}

// NewStructureService creates a new StructureService
func NewStructureService(
	structures fee.StructureRepository,
	invoices fee.InvoiceRepository,
	classes academic.ClassReader,
	logger *zap.Logger,
	opts ...Option,
) *StructureService {
	return &StructureService{
		base:       newBase(logger, opts),
		structures: structures,
		invoices:   invoices,
		classes:    classes,
	}
}

// StructureRequest carries the fields of a fee structure create or update
type StructureRequest struct {
	ClassID     *uuid.UUID
	Name        string
	Description string
	Amount      decimal.Decimal
	Frequency   fee.Frequency
}

func (r StructureRequest) spec() fee.StructureSpec {
	return fee.StructureSpec{
		ClassID:     r.ClassID,
		Name:        r.Name,
		Description: r.Description,
		Amount:      r.Amount,
		Frequency:   r.Frequency,
	}
}

// Create adds a fee structure. A class scope must name a live class of the same school.
func (s *StructureService) Create(ctx context.Context, p identity.Principal, req StructureRequest) (*fee.FeeStructure, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fee_structure", "create")
	defer span.End()

	if err := p.RequireStaff(); err != nil {
		return nil, err
	}
	if err := s.checkClass(ctx, p.TenantID, req.ClassID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	fs, err := fee.NewFeeStructure(p.TenantID, req.spec(), s.now())
	if err != nil {
		return nil, err
	}
	if err := s.structures.Create(ctx, fs); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save fee structure: %w", err)
	}

	s.logger.Info("Fee structure created",
		zap.String("tenant_id", p.TenantID.String()),
		zap.String("fee_structure_id", fs.ID.String()),
		zap.String("amount", fs.Amount.String()))
	return fs, nil
}

// Get returns a live fee structure
func (s *StructureService) Get(ctx context.Context, p identity.Principal, id uuid.UUID) (*fee.FeeStructure, error) {
	if err := p.RequireStaff(); err != nil {
		return nil, err
	}
	return s.structures.FindByID(ctx, p.TenantID, id)
}

// List returns a page of live fee structures
func (s *StructureService) List(ctx context.Context, p identity.Principal, filter fee.StructureFilter) (shared.Paginated[fee.FeeStructure], error) {
	if err := p.RequireStaff(); err != nil {
		return shared.Paginated[fee.FeeStructure]{}, err
	}
	filter.Filter = filter.Normalize()
	items, total, err := s.structures.FindAll(ctx, p.TenantID, filter)
	if err != nil {
		return shared.Paginated[fee.FeeStructure]{}, fmt.Errorf("failed to list fee structures: %w", err)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Update edits a fee structure. Invoices already issued keep their own amount.
func (s *StructureService) Update(ctx context.Context, p identity.Principal, id uuid.UUID, req StructureRequest) (*fee.FeeStructure, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fee_structure", "update")
	defer span.End()

	if err := p.RequireStaff(); err != nil {
		return nil, err
	}
	fs, err := s.structures.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkClass(ctx, p.TenantID, req.ClassID); err != nil {
		return nil, err
	}
	if err := fs.Update(req.spec(), s.now()); err != nil {
		return nil, err
	}
	if err := s.structures.SaveWithLock(ctx, fs); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to update fee structure: %w", err)
	}
	return fs, nil
}

// Delete tombstones a fee structure that no live invoice references
func (s *StructureService) Delete(ctx context.Context, p identity.Principal, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "fee_structure", "delete")
	defer span.End()

	if err := p.RequireStaff(); err != nil {
		return err
	}
	fs, err := s.structures.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return err
	}
	inUse, err := s.invoices.CountByStructure(ctx, p.TenantID, id)
	if err != nil {
		return fmt.Errorf("failed to count invoices: %w", err)
	}
	if inUse > 0 {
		return shared.NewConflictError("FEE_STRUCTURE_IN_USE",
			fmt.Sprintf("Fee structure is referenced by %d invoice(s)", inUse))
	}

	now := s.now()
	fs.MarkDeleted(now)
	fs.Touch(now)
	fs.IncrementVersion()
	if err := s.structures.SaveWithLock(ctx, fs); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to delete fee structure: %w", err)
	}
	s.logger.Info("Fee structure deleted",
		zap.String("tenant_id", p.TenantID.String()),
		zap.String("fee_structure_id", id.String()))
	return nil
}

func (s *StructureService) checkClass(ctx context.Context, tenantID uuid.UUID, classID *uuid.UUID) error {
	if classID == nil || *classID == uuid.Nil {
		return nil
	}
	if _, err := s.classes.FindByID(ctx, tenantID, *classID); err != nil {
		if shared.IsNotFound(err) {
			return shared.NewValidationError("INVALID_CLASS", "Class does not exist in this school")
		}
		return fmt.Errorf("failed to load class: %w", err)
	}
	return nil
}
