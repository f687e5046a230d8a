package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schoolfee/backend/internal/domain/fee"
)

// FeeStructureModel is the persistence model for fee structures
type FeeStructureModel struct {
	TenantAggregateModel
	ClassID     *uuid.UUID      `gorm:"type:uuid;index"`
	Name        string          `gorm:"type:varchar(150);not null"`
	Description string          `gorm:"type:text"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Frequency   fee.Frequency   `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (FeeStructureModel) TableName() string {
	return "fee_structures"
}

// ToDomain converts the persistence model to a domain FeeStructure
func (m *FeeStructureModel) ToDomain() *fee.FeeStructure {
	fs := &fee.FeeStructure{
		ClassID:     m.ClassID,
		Name:        m.Name,
		Description: m.Description,
		Amount:      m.Amount,
		Frequency:   m.Frequency,
	}
	m.PopulateTenantAggregateRoot(&fs.TenantAggregateRoot, &fs.SoftDeletable)
	return fs
}

// FeeStructureModelFromDomain creates a persistence model from a domain FeeStructure
func FeeStructureModelFromDomain(fs *fee.FeeStructure) *FeeStructureModel {
	m := &FeeStructureModel{
		ClassID:     fs.ClassID,
		Name:        fs.Name,
		Description: fs.Description,
		Amount:      fs.Amount,
		Frequency:   fs.Frequency,
	}
	m.FromDomainTenantAggregateRoot(fs.TenantAggregateRoot, fs.SoftDeletable)
	return m
}

// FeeInvoiceModel is the persistence model for fee invoices
type FeeInvoiceModel struct {
	TenantAggregateModel
	StudentID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	FeeStructureID uuid.UUID         `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	PaidAmount     decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	DueDate        time.Time         `gorm:"not null;index"`
	Status         fee.InvoiceStatus `gorm:"type:varchar(20);not null;index"`
	Remarks        string            `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (FeeInvoiceModel) TableName() string {
	return "fee_invoices"
}

// ToDomain converts the persistence model to a domain FeeInvoice
func (m *FeeInvoiceModel) ToDomain() *fee.FeeInvoice {
	inv := &fee.FeeInvoice{
		StudentID:      m.StudentID,
		FeeStructureID: m.FeeStructureID,
		Amount:         m.Amount,
		PaidAmount:     m.PaidAmount,
		DueDate:        m.DueDate,
		Status:         m.Status,
		Remarks:        m.Remarks,
	}
	m.PopulateTenantAggregateRoot(&inv.TenantAggregateRoot, &inv.SoftDeletable)
	return inv
}

// FeeInvoiceModelFromDomain creates a persistence model from a domain FeeInvoice
func FeeInvoiceModelFromDomain(inv *fee.FeeInvoice) *FeeInvoiceModel {
	m := &FeeInvoiceModel{
		StudentID:      inv.StudentID,
		FeeStructureID: inv.FeeStructureID,
		Amount:         inv.Amount,
		PaidAmount:     inv.PaidAmount,
		DueDate:        inv.DueDate,
		Status:         inv.Status,
		Remarks:        inv.Remarks,
	}
	m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot, inv.SoftDeletable)
	return m
}

// FeePaymentModel is the persistence model for payments. Rows are never updated.
type FeePaymentModel struct {
	BaseModel
	TenantID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	StudentID     uuid.UUID         `gorm:"type:uuid;not null;index"`
	InvoiceID     *uuid.UUID        `gorm:"type:uuid;index"`
	AmountPaid    decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	Method        fee.PaymentMethod `gorm:"type:varchar(20);not null;index"`
	TransactionID string            `gorm:"type:varchar(100)"`
	Remarks       string            `gorm:"type:text"`
	PaidAt        time.Time         `gorm:"not null;index"`
	RecordedBy    uuid.UUID         `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (FeePaymentModel) TableName() string {
	return "fee_payments"
}

// ToDomain converts the persistence model to a domain FeePayment
func (m *FeePaymentModel) ToDomain() *fee.FeePayment {
	return &fee.FeePayment{
		BaseEntity:    m.BaseModel.ToDomain(),
		TenantID:      m.TenantID,
		StudentID:     m.StudentID,
		InvoiceID:     m.InvoiceID,
		AmountPaid:    m.AmountPaid,
		Method:        m.Method,
		TransactionID: m.TransactionID,
		Remarks:       m.Remarks,
		PaidAt:        m.PaidAt,
		RecordedBy:    m.RecordedBy,
	}
}

// FeePaymentModelFromDomain creates a persistence model from a domain FeePayment
func FeePaymentModelFromDomain(p *fee.FeePayment) *FeePaymentModel {
	m := &FeePaymentModel{
		TenantID:      p.TenantID,
		StudentID:     p.StudentID,
		InvoiceID:     p.InvoiceID,
		AmountPaid:    p.AmountPaid,
		Method:        p.Method,
		TransactionID: p.TransactionID,
		Remarks:       p.Remarks,
		PaidAt:        p.PaidAt,
		RecordedBy:    p.RecordedBy,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// FeeHandoverModel is the persistence model for handovers. Rows are never updated.
type FeeHandoverModel struct {
	BaseModel
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	SubmittedBy     uuid.UUID       `gorm:"type:uuid;not null;index"`
	AmountSubmitted decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	SubmittedAt     time.Time       `gorm:"not null;index"`
	Remarks         string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (FeeHandoverModel) TableName() string {
	return "fee_handovers"
}

// ToDomain converts the persistence model to a domain FeeHandover
func (m *FeeHandoverModel) ToDomain() *fee.FeeHandover {
	return &fee.FeeHandover{
		BaseEntity:      m.BaseModel.ToDomain(),
		TenantID:        m.TenantID,
		SubmittedBy:     m.SubmittedBy,
		AmountSubmitted: m.AmountSubmitted,
		SubmittedAt:     m.SubmittedAt,
		Remarks:         m.Remarks,
	}
}

// FeeHandoverModelFromDomain creates a persistence model from a domain FeeHandover
func FeeHandoverModelFromDomain(h *fee.FeeHandover) *FeeHandoverModel {
	m := &FeeHandoverModel{
		TenantID:        h.TenantID,
		SubmittedBy:     h.SubmittedBy,
		AmountSubmitted: h.AmountSubmitted,
		SubmittedAt:     h.SubmittedAt,
		Remarks:         h.Remarks,
	}
	m.FromDomainBaseEntity(h.BaseEntity)
	return m
}
