package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/schoolfee/backend/internal/domain/fee"
	"github.com/schoolfee/backend/internal/domain/shared"
)

func newMockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestFeeInvoiceRepository_FindByIDForUpdate_LocksRow(t *testing.T) {
	db, mock, mockDB := newMockPostgres(t)
	defer mockDB.Close()

	tenantID, id := uuid.New(), uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "created_at", "updated_at", "version", "deleted_at", "tenant_id",
		"student_id", "fee_structure_id", "amount", "paid_amount", "due_date", "status", "remarks",
	}).AddRow(id.String(), now, now, int64(3), nil, tenantID.String(), uuid.NewString(), uuid.NewString(), "5000.00", "2000.00", now, "PARTIAL", "")

	mock.ExpectQuery(`SELECT \* FROM "fee_invoices" WHERE .*tenant_id = .*deleted_at IS NULL.* FOR UPDATE`).
		WillReturnRows(rows)

	inv, err := NewGormFeeInvoiceRepository(db).FindByIDForUpdate(context.Background(), tenantID, id)
	require.NoError(t, err)
	assert.Equal(t, fee.InvoiceStatusPartial, inv.Status)
	assert.Equal(t, 3, inv.Version)
	assert.Equal(t, "3000", inv.RemainingAmount().String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeeInvoiceRepository_SaveWithLock_ConflictWhenNoRowUpdated(t *testing.T) {
	db, mock, mockDB := newMockPostgres(t)
	defer mockDB.Close()

	inv := &fee.FeeInvoice{}
	inv.ID = uuid.New()
	inv.TenantID = uuid.New()
	inv.Version = 4

	mock.ExpectExec(`UPDATE "fee_invoices" SET .* WHERE .*version = `).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewGormFeeInvoiceRepository(db).SaveWithLock(context.Background(), inv)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_LockTenant_SelectsForUpdateInsideTransaction(t *testing.T) {
	db, mock, mockDB := newMockPostgres(t)
	defer mockDB.Close()

	tenantID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "schools" WHERE .*deleted_at IS NULL.* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(tenantID.String()))
	mock.ExpectCommit()

	err := NewGormUnitOfWork(db).Do(context.Background(), func(ctx context.Context, repos fee.TxRepositories) error {
		return repos.LockTenant(ctx, tenantID)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_RollsBackWhenLockedTenantIsMissing(t *testing.T) {
	db, mock, mockDB := newMockPostgres(t)
	defer mockDB.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "schools" WHERE .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := NewGormUnitOfWork(db).Do(context.Background(), func(ctx context.Context, repos fee.TxRepositories) error {
		return repos.LockTenant(ctx, uuid.New())
	})
	assert.True(t, shared.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
