package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolfee/backend/internal/domain/academic"
	"github.com/schoolfee/backend/internal/domain/shared"
	"github.com/schoolfee/backend/internal/infrastructure/persistence/models"
)

// GormStudentRepository implements academic.StudentReader using GORM
type GormStudentRepository struct {
	db *gorm.DB
}

// NewGormStudentRepository creates a new GormStudentRepository
func NewGormStudentRepository(db *gorm.DB) *GormStudentRepository {
	return &GormStudentRepository{db: db}
}

// FindByID finds a live student of the tenant
func (r *GormStudentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*academic.Student, error) {
	var model models.StudentModel
	if err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID), NotDeleted).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Student")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GormClassRepository implements academic.ClassReader using GORM
type GormClassRepository struct {
	db *gorm.DB
}

// NewGormClassRepository creates a new GormClassRepository
func NewGormClassRepository(db *gorm.DB) *GormClassRepository {
	return &GormClassRepository{db: db}
}

// FindByID finds a live class of the tenant
func (r *GormClassRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*academic.Class, error) {
	var model models.ClassModel
	if err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID), NotDeleted).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Class")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func likePattern(search string) string {
	s := strings.ToLower(strings.TrimSpace(search))
	s = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
	return "%" + s + "%"
}
