package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolfee/backend/internal/domain/fee"
	"github.com/schoolfee/backend/internal/domain/shared"
	"github.com/schoolfee/backend/internal/infrastructure/persistence/models"
)

// GormFeeStructureRepository implements fee.StructureRepository using GORM
type GormFeeStructureRepository struct {
	db *gorm.DB
}

// NewGormFeeStructureRepository creates a new GormFeeStructureRepository
func NewGormFeeStructureRepository(db *gorm.DB) *GormFeeStructureRepository {
	return &GormFeeStructureRepository{db: db}
}

// FindByID finds a live fee structure of the tenant
func (r *GormFeeStructureRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*fee.FeeStructure, error) {
	return r.find(r.db.WithContext(ctx).Scopes(NotDeleted), tenantID, id)
}

// FindByIDIncludeDeleted finds a fee structure of the tenant even if it was deleted
func (r *GormFeeStructureRepository) FindByIDIncludeDeleted(ctx context.Context, tenantID, id uuid.UUID) (*fee.FeeStructure, error) {
	return r.find(r.db.WithContext(ctx), tenantID, id)
}

func (r *GormFeeStructureRepository) find(db *gorm.DB, tenantID, id uuid.UUID) (*fee.FeeStructure, error) {
	var model models.FeeStructureModel
	if err := db.Scopes(TenantScope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Fee structure")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists live fee structures of the tenant
func (r *GormFeeStructureRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter fee.StructureFilter) ([]fee.FeeStructure, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.FeeStructureModel{}).
		Scopes(TenantScope(tenantID), NotDeleted)

	if filter.ClassID != nil {
		query = query.Where("class_id = ?", *filter.ClassID)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(filter.Search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.FeeStructureModel
	if err := query.Scopes(Paginate(filter.Filter, FeeStructureSortFields, "created_at")).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	items := make([]fee.FeeStructure, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, total, nil
}

// Create inserts a new fee structure
func (r *GormFeeStructureRepository) Create(ctx context.Context, fs *fee.FeeStructure) error {
	return r.db.WithContext(ctx).Create(models.FeeStructureModelFromDomain(fs)).Error
}

// SaveWithLock updates a fee structure whose Version was already incremented
// by the domain. The row must still carry Version-1.
func (r *GormFeeStructureRepository) SaveWithLock(ctx context.Context, fs *fee.FeeStructure) error {
	model := models.FeeStructureModelFromDomain(fs)
	result := r.db.WithContext(ctx).
		Model(&models.FeeStructureModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", fs.ID, fs.TenantID, fs.Version-1).
		Updates(map[string]any{
			"class_id":    model.ClassID,
			"name":        model.Name,
			"description": model.Description,
			"amount":      model.Amount,
			"frequency":   model.Frequency,
			"deleted_at":  model.DeletedAt,
			"version":     model.Version,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
