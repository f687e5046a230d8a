package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/schoolfee/backend/internal/infrastructure/persistence/models"
	"github.com/schoolfee/backend/internal/infrastructure/persistence/tenant"
)

// SQLite-compatible versions of the persistence models. Postgres column types
// (uuid, decimal(18,2)) are replaced with plain text/numeric columns.

type schoolModelSQLite struct {
	ID                    string `gorm:"primaryKey"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
	Version               int `gorm:"not null;default:1"`
	DeletedAt             *time.Time
	Name                  string
	LogoKey               string
	PrincipalName         string
	Address               string
	Phone                 string
	Email                 string
	SubscriptionAmount    decimal.Decimal `gorm:"type:numeric"`
	SubscriptionStartDate time.Time
	NextBillingDate       *time.Time
	SubscriptionStatus    string
}

func (schoolModelSQLite) TableName() string { return "schools" }

type classModelSQLite struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	TenantID  string `gorm:"index;not null"`
	Name      string
	Section   string
	DeletedAt *time.Time
}

func (classModelSQLite) TableName() string { return "classes" }

type studentModelSQLite struct {
	ID         string `gorm:"primaryKey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	TenantID   string `gorm:"index;not null"`
	ClassID    *string
	Name       string
	RollNumber string
	Phone      string
	DeletedAt  *time.Time
}

func (studentModelSQLite) TableName() string { return "students" }

type feeStructureModelSQLite struct {
	ID          string `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int `gorm:"not null;default:1"`
	DeletedAt   *time.Time
	TenantID    string `gorm:"index;not null"`
	ClassID     *string
	Name        string
	Description string
	Amount      decimal.Decimal `gorm:"type:numeric"`
	Frequency   string
}

func (feeStructureModelSQLite) TableName() string { return "fee_structures" }

type feeInvoiceModelSQLite struct {
	ID             string `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Version        int `gorm:"not null;default:1"`
	DeletedAt      *time.Time
	TenantID       string `gorm:"index;not null"`
	StudentID      string
	FeeStructureID string
	Amount         decimal.Decimal `gorm:"type:numeric"`
	PaidAmount     decimal.Decimal `gorm:"type:numeric"`
	DueDate        time.Time
	Status         string
	Remarks        string
}

func (feeInvoiceModelSQLite) TableName() string { return "fee_invoices" }

type feePaymentModelSQLite struct {
	ID            string `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	TenantID      string `gorm:"index;not null"`
	StudentID     string
	InvoiceID     *string
	AmountPaid    decimal.Decimal `gorm:"type:numeric"`
	Method        string
	TransactionID string
	Remarks       string
	PaidAt        time.Time
	RecordedBy    string
}

func (feePaymentModelSQLite) TableName() string { return "fee_payments" }

type feeHandoverModelSQLite struct {
	ID              string `gorm:"primaryKey"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	TenantID        string `gorm:"index;not null"`
	SubmittedBy     string
	AmountSubmitted decimal.Decimal `gorm:"type:numeric"`
	SubmittedAt     time.Time
	Remarks         string
}

func (feeHandoverModelSQLite) TableName() string { return "fee_handovers" }

func setupFeeTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// A single connection keeps every query, including those inside a
	// transaction, on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&schoolModelSQLite{},
		&classModelSQLite{},
		&studentModelSQLite{},
		&feeStructureModelSQLite{},
		&feeInvoiceModelSQLite{},
		&feePaymentModelSQLite{},
		&feeHandoverModelSQLite{},
	)
	require.NoError(t, err)
	// Every repository statement must carry its tenant condition
	require.NoError(t, tenant.Register(db, tenant.WithStrict()))
	return db
}

func seedClass(t *testing.T, db *gorm.DB, tenantID uuid.UUID, name string) uuid.UUID {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	m := &models.ClassModel{
		BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		TenantID:  tenantID,
		Name:      name,
	}
	require.NoError(t, db.Create(m).Error)
	return m.ID
}

func seedStudent(t *testing.T, db *gorm.DB, tenantID uuid.UUID, classID *uuid.UUID, name string) uuid.UUID {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	m := &models.StudentModel{
		BaseModel:  models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		TenantID:   tenantID,
		ClassID:    classID,
		Name:       name,
		RollNumber: "R-" + name,
	}
	require.NoError(t, db.Create(m).Error)
	return m.ID
}
