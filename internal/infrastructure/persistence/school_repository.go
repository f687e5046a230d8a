package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolfee/backend/internal/domain/school"
	"github.com/schoolfee/backend/internal/domain/shared"
	"github.com/schoolfee/backend/internal/infrastructure/persistence/models"
)

// GormSchoolRepository implements school.Repository using GORM
type GormSchoolRepository struct {
	db *gorm.DB
}

// NewGormSchoolRepository creates a new GormSchoolRepository
func NewGormSchoolRepository(db *gorm.DB) *GormSchoolRepository {
	return &GormSchoolRepository{db: db}
}

// FindByID finds a live school by ID
func (r *GormSchoolRepository) FindByID(ctx context.Context, id uuid.UUID) (*school.School, error) {
	var model models.SchoolModel
	if err := r.db.WithContext(ctx).
		Scopes(NotDeleted).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("School")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists live schools, optionally matching a name search
func (r *GormSchoolRepository) FindAll(ctx context.Context, filter shared.Filter) ([]school.School, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SchoolModel{}).Scopes(NotDeleted)
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(filter.Search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SchoolModel
	if err := query.Scopes(Paginate(filter, SchoolSortFields, "created_at")).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	schools := make([]school.School, len(rows))
	for i := range rows {
		schools[i] = *rows[i].ToDomain()
	}
	return schools, total, nil
}

// Create inserts a new school
func (r *GormSchoolRepository) Create(ctx context.Context, s *school.School) error {
	return r.db.WithContext(ctx).Create(models.SchoolModelFromDomain(s)).Error
}

// SaveWithLock updates a school whose Version was already incremented by the
// domain. The row must still carry Version-1.
func (r *GormSchoolRepository) SaveWithLock(ctx context.Context, s *school.School) error {
	model := models.SchoolModelFromDomain(s)
	result := r.db.WithContext(ctx).
		Model(&models.SchoolModel{}).
		Where("id = ? AND version = ?", s.ID, s.Version-1).
		Updates(map[string]any{
			"name":                    model.Name,
			"logo_key":                model.LogoKey,
			"principal_name":          model.PrincipalName,
			"address":                 model.Address,
			"phone":                   model.Phone,
			"email":                   model.Email,
			"subscription_amount":     model.SubscriptionAmount,
			"subscription_start_date": model.SubscriptionStartDate,
			"next_billing_date":       model.NextBillingDate,
			"subscription_status":     model.SubscriptionStatus,
			"deleted_at":              model.DeletedAt,
			"version":                 model.Version,
			"updated_at":              model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// UpdateStatus writes the derived status only when it differs from the stored one
func (r *GormSchoolRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status school.SubscriptionStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.SchoolModel{}).
		Where("id = ? AND subscription_status <> ?", id, status).
		Scopes(NotDeleted).
		Update("subscription_status", status)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
