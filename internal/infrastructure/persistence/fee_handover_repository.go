package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/schoolfee/backend/internal/domain/fee"
	"github.com/schoolfee/backend/internal/domain/shared"
	"github.com/schoolfee/backend/internal/infrastructure/persistence/models"
)

// GormFeeHandoverRepository implements fee.HandoverRepository using GORM
type GormFeeHandoverRepository struct {
	db *gorm.DB
}

// NewGormFeeHandoverRepository creates a new GormFeeHandoverRepository
func NewGormFeeHandoverRepository(db *gorm.DB) *GormFeeHandoverRepository {
	return &GormFeeHandoverRepository{db: db}
}

// FindByID finds a handover of the tenant
func (r *GormFeeHandoverRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*fee.FeeHandover, error) {
	var model models.FeeHandoverModel
	if err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Handover")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists handovers of the tenant
func (r *GormFeeHandoverRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter fee.HandoverFilter) ([]fee.FeeHandover, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.FeeHandoverModel{}).
		Scopes(TenantScope(tenantID))

	if filter.SubmittedBy != nil {
		query = query.Where("submitted_by = ?", *filter.SubmittedBy)
	}
	if filter.From != nil {
		query = query.Where("submitted_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("submitted_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.FeeHandoverModel
	if err := query.Scopes(Paginate(filter.Filter, FeeHandoverSortFields, "submitted_at")).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	items := make([]fee.FeeHandover, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, total, nil
}

// Create inserts a handover
func (r *GormFeeHandoverRepository) Create(ctx context.Context, h *fee.FeeHandover) error {
	return r.db.WithContext(ctx).Create(models.FeeHandoverModelFromDomain(h)).Error
}

// SumSubmitted totals every handover of the tenant
func (r *GormFeeHandoverRepository) SumSubmitted(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	return sumDecimal(r.db.WithContext(ctx).
		Model(&models.FeeHandoverModel{}).
		Scopes(TenantScope(tenantID)), "amount_submitted")
}
