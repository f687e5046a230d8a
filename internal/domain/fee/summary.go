package fee

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StudentFeeSummary is the fee position of one student
type StudentFeeSummary struct {
	StudentID        uuid.UUID
	TotalInvoiced    decimal.Decimal
	TotalPaid        decimal.Decimal
	TotalPending     decimal.Decimal
	UnassociatedPaid decimal.Decimal
	InvoiceCount     int
	StatusCounts     map[InvoiceStatus]int
}

// NewStudentFeeSummary totals a student's live invoices. linkedPaid is the sum of
// payments attached to those invoices; unassociatedPaid is reported on its own
// and never offsets the pending amount.
func NewStudentFeeSummary(studentID uuid.UUID, invoices []FeeInvoice, linkedPaid, unassociatedPaid decimal.Decimal) StudentFeeSummary {
	s := StudentFeeSummary{
		StudentID:        studentID,
		TotalInvoiced:    decimal.Zero,
		TotalPaid:        linkedPaid,
		UnassociatedPaid: unassociatedPaid,
		StatusCounts:     make(map[InvoiceStatus]int, 4),
	}
	for i := range invoices {
		if invoices[i].IsDeleted() {
			continue
		}
		s.TotalInvoiced = s.TotalInvoiced.Add(invoices[i].Amount)
		s.StatusCounts[invoices[i].Status]++
		s.InvoiceCount++
	}
	s.TotalPending = s.TotalInvoiced.Sub(s.TotalPaid)
	if s.TotalPending.IsNegative() {
		s.TotalPending = decimal.Zero
	}
	return s
}
