package fee

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schoolfee/backend/internal/domain/shared"
)

// PaymentMethod is how a fee was paid
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodOnline       PaymentMethod = "ONLINE"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the method is a known value
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCheque,
		PaymentMethodCard, PaymentMethodOnline, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation
func (m PaymentMethod) String() string {
	return string(m)
}

// FeePayment is an immutable ledger entry. There is no update or delete.
type FeePayment struct {
	shared.BaseEntity
	TenantID      uuid.UUID
	StudentID     uuid.UUID
	InvoiceID     *uuid.UUID
	AmountPaid    decimal.Decimal
	Method        PaymentMethod
	TransactionID string
	Remarks       string
	PaidAt        time.Time
	RecordedBy    uuid.UUID
}

// PaymentSpec carries the fields of a new payment
type PaymentSpec struct {
	StudentID     uuid.UUID
	InvoiceID     *uuid.UUID
	AmountPaid    decimal.Decimal
	Method        PaymentMethod
	TransactionID string
	Remarks       string
	PaidAt        time.Time
	RecordedBy    uuid.UUID
}

// NewFeePayment creates a payment. PaidAt defaults to now.
func NewFeePayment(tenantID uuid.UUID, spec PaymentSpec, now time.Time) (*FeePayment, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if spec.StudentID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if !spec.AmountPaid.IsPositive() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Amount paid must be positive")
	}
	if err := shared.CheckMoneyScale(spec.AmountPaid, "Amount paid"); err != nil {
		return nil, err
	}
	if !spec.Method.IsValid() {
		return nil, shared.NewValidationError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	if spec.InvoiceID != nil && *spec.InvoiceID == uuid.Nil {
		spec.InvoiceID = nil
	}
	paidAt := spec.PaidAt
	if paidAt.IsZero() {
		paidAt = now
	}
	if paidAt.After(now.Add(time.Minute)) {
		return nil, shared.NewValidationError("INVALID_PAID_AT", "Payment date cannot be in the future")
	}
	txID := strings.TrimSpace(spec.TransactionID)
	if len(txID) > 100 {
		return nil, shared.NewValidationError("INVALID_TRANSACTION_ID", "Transaction ID cannot exceed 100 characters")
	}

	return &FeePayment{
		BaseEntity:    shared.NewBaseEntity(now),
		TenantID:      tenantID,
		StudentID:     spec.StudentID,
		InvoiceID:     spec.InvoiceID,
		AmountPaid:    spec.AmountPaid,
		Method:        spec.Method,
		TransactionID: txID,
		Remarks:       strings.TrimSpace(spec.Remarks),
		PaidAt:        paidAt,
		RecordedBy:    spec.RecordedBy,
	}, nil
}

// IsAssociated reports whether the payment is linked to an invoice
func (p *FeePayment) IsAssociated() bool {
	return p.InvoiceID != nil
}
