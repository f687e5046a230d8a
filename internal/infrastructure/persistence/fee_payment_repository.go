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

// GormFeePaymentRepository implements fee.PaymentRepository using GORM.
// Payment rows are insert-only.
type GormFeePaymentRepository struct {
	db *gorm.DB
}

// NewGormFeePaymentRepository creates a new GormFeePaymentRepository
func NewGormFeePaymentRepository(db *gorm.DB) *GormFeePaymentRepository {
	return &GormFeePaymentRepository{db: db}
}

// FindByID finds a payment of the tenant
func (r *GormFeePaymentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*fee.FeePayment, error) {
	var model models.FeePaymentModel
	if err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Payment")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists payments of the tenant
func (r *GormFeePaymentRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter fee.PaymentFilter) ([]fee.FeePayment, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.FeePaymentModel{}).
		Scopes(TenantScope(tenantID))

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.InvoiceID != nil {
		query = query.Where("invoice_id = ?", *filter.InvoiceID)
	}
	if filter.Method != "" {
		query = query.Where("method = ?", filter.Method)
	}
	if filter.From != nil {
		query = query.Where("paid_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("paid_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.FeePaymentModel
	if err := query.Scopes(Paginate(filter.Filter, FeePaymentSortFields, "paid_at")).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	items := make([]fee.FeePayment, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, total, nil
}

// Create inserts a payment
func (r *GormFeePaymentRepository) Create(ctx context.Context, p *fee.FeePayment) error {
	return r.db.WithContext(ctx).Create(models.FeePaymentModelFromDomain(p)).Error
}

// CountByInvoice counts payments linked to an invoice
func (r *GormFeePaymentRepository) CountByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.FeePaymentModel{}).
		Scopes(TenantScope(tenantID)).
		Where("invoice_id = ?", invoiceID).
		Count(&count).Error
	return count, err
}

// SumByStudent totals a student's payments split by whether they are linked to
// a live invoice or stand alone
func (r *GormFeePaymentRepository) SumByStudent(ctx context.Context, tenantID, studentID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	liveInvoices := r.db.Model(&models.FeeInvoiceModel{}).
		Select("id").
		Where("tenant_id = ? AND student_id = ? AND deleted_at IS NULL", tenantID, studentID)

	linked, err := sumDecimal(r.db.WithContext(ctx).
		Model(&models.FeePaymentModel{}).
		Scopes(TenantScope(tenantID)).
		Where("student_id = ? AND invoice_id IN (?)", studentID, liveInvoices), "amount_paid")
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	unassociated, err := sumDecimal(r.db.WithContext(ctx).
		Model(&models.FeePaymentModel{}).
		Scopes(TenantScope(tenantID)).
		Where("student_id = ? AND invoice_id IS NULL", studentID), "amount_paid")
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return linked, unassociated, nil
}

// SumCollected totals payments of the given methods; nil methods means all
func (r *GormFeePaymentRepository) SumCollected(ctx context.Context, tenantID uuid.UUID, methods []fee.PaymentMethod) (decimal.Decimal, error) {
	query := r.db.WithContext(ctx).
		Model(&models.FeePaymentModel{}).
		Scopes(TenantScope(tenantID))
	if len(methods) > 0 {
		query = query.Where("method IN ?", methods)
	}
	return sumDecimal(query, "amount_paid")
}
