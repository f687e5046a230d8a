package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/schoolfee/backend/internal/domain/academic"
	"github.com/schoolfee/backend/internal/domain/fee"
	"github.com/schoolfee/backend/internal/domain/shared"
	"github.com/schoolfee/backend/internal/infrastructure/persistence/models"
)

// GormUnitOfWork implements fee.UnitOfWork on top of gorm transactions
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Do runs fn inside a transaction. Any error returned by fn, or a panic,
// rolls the transaction back.
func (u *GormUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos fee.TxRepositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &txRepositories{tx: tx})
	})
}

type txRepositories struct {
	tx *gorm.DB
}

func (r *txRepositories) Students() academic.StudentReader {
	return NewGormStudentRepository(r.tx)
}

func (r *txRepositories) Invoices() fee.InvoiceRepository {
	return NewGormFeeInvoiceRepository(r.tx)
}

func (r *txRepositories) Payments() fee.PaymentRepository {
	return NewGormFeePaymentRepository(r.tx)
}

func (r *txRepositories) Handovers() fee.HandoverRepository {
	return NewGormFeeHandoverRepository(r.tx)
}

// LockTenant locks the tenant's school row. Handover submissions for one
// tenant queue behind this lock until the holder commits.
func (r *txRepositories) LockTenant(ctx context.Context, tenantID uuid.UUID) error {
	var model models.SchoolModel
	err := r.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Scopes(NotDeleted).
		First(&model, "id = ?", tenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError("School")
	}
	return err
}
