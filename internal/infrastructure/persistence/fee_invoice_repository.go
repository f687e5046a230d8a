package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/schoolfee/backend/internal/domain/fee"
	"github.com/schoolfee/backend/internal/domain/shared"
	"github.com/schoolfee/backend/internal/infrastructure/persistence/models"
)

// GormFeeInvoiceRepository implements fee.InvoiceRepository using GORM
type GormFeeInvoiceRepository struct {
	db *gorm.DB
}

// NewGormFeeInvoiceRepository creates a new GormFeeInvoiceRepository
func NewGormFeeInvoiceRepository(db *gorm.DB) *GormFeeInvoiceRepository {
	return &GormFeeInvoiceRepository{db: db}
}

// FindByID finds a live invoice of the tenant
func (r *GormFeeInvoiceRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*fee.FeeInvoice, error) {
	return r.find(r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate finds a live invoice and locks its row until the transaction ends
func (r *GormFeeInvoiceRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*fee.FeeInvoice, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), tenantID, id)
}

func (r *GormFeeInvoiceRepository) find(db *gorm.DB, tenantID, id uuid.UUID) (*fee.FeeInvoice, error) {
	var model models.FeeInvoiceModel
	if err := db.Scopes(TenantScope(tenantID), NotDeleted).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Invoice")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists live invoices of the tenant
func (r *GormFeeInvoiceRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter fee.InvoiceFilter) ([]fee.FeeInvoice, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.FeeInvoiceModel{}).
		Scopes(TenantScope(tenantID), NotDeleted)

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.ClassID != nil {
		students := r.db.Model(&models.StudentModel{}).
			Select("id").
			Where("tenant_id = ? AND class_id = ?", tenantID, *filter.ClassID)
		query = query.Where("student_id IN (?)", students)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.FeeInvoiceModel
	if err := query.Scopes(Paginate(filter.Filter, FeeInvoiceSortFields, "due_date")).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	items := make([]fee.FeeInvoice, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, total, nil
}

// FindByStudent returns every live invoice of a student
func (r *GormFeeInvoiceRepository) FindByStudent(ctx context.Context, tenantID, studentID uuid.UUID) ([]fee.FeeInvoice, error) {
	var rows []models.FeeInvoiceModel
	if err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID), NotDeleted).
		Where("student_id = ?", studentID).
		Order("due_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]fee.FeeInvoice, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, nil
}

// CountByStructure counts live invoices issued from a fee structure
func (r *GormFeeInvoiceRepository) CountByStructure(ctx context.Context, tenantID, structureID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.FeeInvoiceModel{}).
		Scopes(TenantScope(tenantID), NotDeleted).
		Where("fee_structure_id = ?", structureID).
		Count(&count).Error
	return count, err
}

// Create inserts a new invoice
func (r *GormFeeInvoiceRepository) Create(ctx context.Context, inv *fee.FeeInvoice) error {
	return r.db.WithContext(ctx).Create(models.FeeInvoiceModelFromDomain(inv)).Error
}

// SaveWithLock updates an invoice whose Version was already incremented by the
// domain. The row must still carry Version-1.
func (r *GormFeeInvoiceRepository) SaveWithLock(ctx context.Context, inv *fee.FeeInvoice) error {
	model := models.FeeInvoiceModelFromDomain(inv)
	result := r.db.WithContext(ctx).
		Model(&models.FeeInvoiceModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", inv.ID, inv.TenantID, inv.Version-1).
		Updates(map[string]any{
			"amount":      model.Amount,
			"paid_amount": model.PaidAmount,
			"due_date":    model.DueDate,
			"status":      model.Status,
			"remarks":     model.Remarks,
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

// UpdateStatus persists a re-derived status. A concurrent payment bumps the
// version, so a stale catch-up write never overwrites a fresher status.
func (r *GormFeeInvoiceRepository) UpdateStatus(ctx context.Context, inv *fee.FeeInvoice) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.FeeInvoiceModel{}).
		Where("id = ? AND tenant_id = ? AND version = ? AND status <> ?", inv.ID, inv.TenantID, inv.Version, inv.Status).
		UpdateColumn("status", inv.Status)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
