package fee

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schoolfee/backend/internal/domain/shared"
)

// InvoiceStatus represents the payment state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusUnpaid  InvoiceStatus = "UNPAID"
	InvoiceStatusPartial InvoiceStatus = "PARTIAL"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE"
)

// IsValid checks if the status is a known value
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusUnpaid, InvoiceStatusPartial, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// String returns the string representation
func (s InvoiceStatus) String() string {
	return string(s)
}

// DeriveInvoiceStatus is the only place invoice status is decided.
// PAID wins over OVERDUE; OVERDUE wins over PARTIAL.
func DeriveInvoiceStatus(amount, paid decimal.Decimal, dueDate, now time.Time) InvoiceStatus {
	switch {
	case paid.GreaterThanOrEqual(amount):
		return InvoiceStatusPaid
	case now.After(dueDate):
		return InvoiceStatusOverdue
	case paid.IsPositive():
		return InvoiceStatusPartial
	default:
		return InvoiceStatusUnpaid
	}
}

// FeeInvoice is a billing obligation raised against one student for one fee structure.
// PaidAmount is the sum of linked payments and only changes through ApplyPayment.
type FeeInvoice struct {
	shared.TenantAggregateRoot
	shared.SoftDeletable
	StudentID      uuid.UUID
	FeeStructureID uuid.UUID
	Amount         decimal.Decimal
	PaidAmount     decimal.Decimal
	DueDate        time.Time
	Status         InvoiceStatus
	Remarks        string
}

// NewFeeInvoice creates an unpaid invoice for a student
func NewFeeInvoice(
	tenantID, studentID, structureID uuid.UUID,
	amount decimal.Decimal,
	dueDate time.Time,
	remarks string,
	now time.Time,
) (*FeeInvoice, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if studentID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if structureID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_FEE_STRUCTURE", "Fee structure ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Amount must be positive")
	}
	if err := shared.CheckMoneyScale(amount, "Amount"); err != nil {
		return nil, err
	}
	if dueDate.IsZero() {
		return nil, shared.NewValidationError("INVALID_DUE_DATE", "Due date is required")
	}

	inv := &FeeInvoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID, now),
		StudentID:           studentID,
		FeeStructureID:      structureID,
		Amount:              amount,
		PaidAmount:          decimal.Zero,
		DueDate:             dueDate,
		Remarks:             strings.TrimSpace(remarks),
	}
	inv.Status = DeriveInvoiceStatus(inv.Amount, inv.PaidAmount, inv.DueDate, now)
	return inv, nil
}

// RemainingAmount returns the unpaid balance, floored at zero
func (inv *FeeInvoice) RemainingAmount() decimal.Decimal {
	rem := inv.Amount.Sub(inv.PaidAmount)
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}

// ApplyPayment records a linked payment and re-derives the status.
// With allowOverpayment false, amounts beyond the remaining balance are rejected.
func (inv *FeeInvoice) ApplyPayment(amount decimal.Decimal, allowOverpayment bool, now time.Time) error {
	if inv.IsDeleted() {
		return shared.NewNotFoundError("Invoice")
	}
	if !amount.IsPositive() {
		return shared.NewValidationError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if err := shared.CheckMoneyScale(amount, "Payment amount"); err != nil {
		return err
	}
	if !allowOverpayment && amount.GreaterThan(inv.RemainingAmount()) {
		return shared.NewConflictError("OVERPAYMENT",
			fmt.Sprintf("Payment of %s exceeds remaining balance %s", amount.StringFixed(2), inv.RemainingAmount().StringFixed(2)))
	}
	inv.PaidAmount = inv.PaidAmount.Add(amount)
	inv.RecomputeStatus(now)
	inv.Touch(now)
	inv.IncrementVersion()
	return nil
}

// RecomputeStatus re-derives the status and reports whether it changed
func (inv *FeeInvoice) RecomputeStatus(now time.Time) bool {
	status := DeriveInvoiceStatus(inv.Amount, inv.PaidAmount, inv.DueDate, now)
	if status == inv.Status {
		return false
	}
	inv.Status = status
	return true
}

// InvoiceChanges holds the optional fields of an invoice update
type InvoiceChanges struct {
	Amount  *decimal.Decimal
	DueDate *time.Time
	Remarks *string
}

// Update applies changes. The amount can never drop below what has already been paid.
func (inv *FeeInvoice) Update(ch InvoiceChanges, now time.Time) error {
	if inv.IsDeleted() {
		return shared.NewNotFoundError("Invoice")
	}
	if ch.Amount != nil {
		if !ch.Amount.IsPositive() {
			return shared.NewValidationError("INVALID_AMOUNT", "Amount must be positive")
		}
		if err := shared.CheckMoneyScale(*ch.Amount, "Amount"); err != nil {
			return err
		}
		if ch.Amount.LessThan(inv.PaidAmount) {
			return shared.NewConflictError("AMOUNT_BELOW_PAID",
				fmt.Sprintf("Amount cannot be less than the %s already paid", inv.PaidAmount.StringFixed(2)))
		}
		inv.Amount = *ch.Amount
	}
	if ch.DueDate != nil {
		if ch.DueDate.IsZero() {
			return shared.NewValidationError("INVALID_DUE_DATE", "Due date is required")
		}
		inv.DueDate = *ch.DueDate
	}
	if ch.Remarks != nil {
		inv.Remarks = strings.TrimSpace(*ch.Remarks)
	}
	inv.RecomputeStatus(now)
	inv.Touch(now)
	inv.IncrementVersion()
	return nil
}

// Delete tombstones the invoice. Invoices with linked payments are kept.
func (inv *FeeInvoice) Delete(now time.Time) error {
	if inv.IsDeleted() {
		return shared.NewNotFoundError("Invoice")
	}
	if inv.PaidAmount.IsPositive() {
		return shared.NewConflictError("INVOICE_HAS_PAYMENTS", "Cannot delete an invoice with recorded payments")
	}
	inv.MarkDeleted(now)
	inv.Touch(now)
	inv.IncrementVersion()
	return nil
}
