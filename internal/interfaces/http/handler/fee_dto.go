package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/schoolfee/backend/internal/domain/fee"
	"github.com/schoolfee/backend/internal/interfaces/http/dto"
)

// Amounts go over the wire as strings with two decimals, e.g. "5000.00"
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func idString(id interface{ String() string }) string {
	return id.String()
}

func optionalID[T interface{ String() string }](id *T) *string {
	if id == nil {
		return nil
	}
	s := (*id).String()
	return &s
}

// =============================================================================
// Fee structures
// =============================================================================

// FeeStructureRequest is the body of a fee structure create or update
type FeeStructureRequest struct {
	ClassID     string          `json:"class_id" binding:"omitempty,uuid"`
	Name        string          `json:"name" binding:"required,min=1,max=150"`
	Description string          `json:"description" binding:"max=500"`
	Amount      decimal.Decimal `json:"amount" binding:"money_positive"`
	Frequency   string          `json:"frequency" binding:"required,fee_frequency"`
}

// FeeStructureListQuery filters fee structure listings
type FeeStructureListQuery struct {
	dto.ListRequest
	ClassID string `form:"class_id" binding:"omitempty,uuid"`
}

// FeeStructureResponse represents a fee structure in API responses
type FeeStructureResponse struct {
	ID          string  `json:"id"`
	ClassID     *string `json:"class_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Amount      string  `json:"amount"`
	Frequency   string  `json:"frequency"`
	Version     int     `json:"version"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toFeeStructureResponse(fs *fee.FeeStructure) FeeStructureResponse {
	return FeeStructureResponse{
		ID:          idString(fs.ID),
		ClassID:     optionalID(fs.ClassID),
		Name:        fs.Name,
		Description: fs.Description,
		Amount:      money(fs.Amount),
		Frequency:   fs.Frequency.String(),
		Version:     fs.Version,
		CreatedAt:   fs.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   fs.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// =============================================================================
// Fee invoices
// =============================================================================

// CreateFeeInvoiceRequest is the body of an invoice create. Amount defaults
// to the fee structure's amount.
type CreateFeeInvoiceRequest struct {
	StudentID      string           `json:"student_id" binding:"required,uuid"`
	FeeStructureID string           `json:"fee_structure_id" binding:"required,uuid"`
	Amount         *decimal.Decimal `json:"amount" binding:"omitempty,money_positive"`
	DueDate        string           `json:"due_date" binding:"required,datetime=2006-01-02"`
	Remarks        string           `json:"remarks" binding:"max=500"`
}

// UpdateFeeInvoiceRequest is the body of an invoice update; absent fields are kept
type UpdateFeeInvoiceRequest struct {
	Amount  *decimal.Decimal `json:"amount" binding:"omitempty,money_positive"`
	DueDate *string          `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Remarks *string          `json:"remarks" binding:"omitempty,max=500"`
}

// FeeInvoiceListQuery filters invoice listings
type FeeInvoiceListQuery struct {
	dto.ListRequest
	StudentID string `form:"student_id" binding:"omitempty,uuid"`
	ClassID   string `form:"class_id" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,invoice_status"`
}

// FeeInvoiceResponse represents an invoice in API responses
type FeeInvoiceResponse struct {
	ID              string `json:"id"`
	StudentID       string `json:"student_id"`
	FeeStructureID  string `json:"fee_structure_id"`
	Amount          string `json:"amount"`
	PaidAmount      string `json:"paid_amount"`
	RemainingAmount string `json:"remaining_amount"`
	DueDate         string `json:"due_date"`
	Status          string `json:"status"`
	Remarks         string `json:"remarks"`
	Version         int    `json:"version"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

func toFeeInvoiceResponse(inv *fee.FeeInvoice) FeeInvoiceResponse {
	return FeeInvoiceResponse{
		ID:              idString(inv.ID),
		StudentID:       idString(inv.StudentID),
		FeeStructureID:  idString(inv.FeeStructureID),
		Amount:          money(inv.Amount),
		PaidAmount:      money(inv.PaidAmount),
		RemainingAmount: money(inv.RemainingAmount()),
		DueDate:         inv.DueDate.UTC().Format(dateLayout),
		Status:          inv.Status.String(),
		Remarks:         inv.Remarks,
		Version:         inv.Version,
		CreatedAt:       inv.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       inv.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// =============================================================================
// Fee payments
// =============================================================================

// RecordFeePaymentRequest is the body of a payment create
type RecordFeePaymentRequest struct {
	StudentID     string          `json:"student_id" binding:"required,uuid"`
	InvoiceID     string          `json:"invoice_id" binding:"omitempty,uuid"`
	AmountPaid    decimal.Decimal `json:"amount_paid" binding:"money_positive"`
	PaymentMethod string          `json:"payment_method" binding:"required,payment_method"`
	TransactionID string          `json:"transaction_id" binding:"max=100"`
	Remarks       string          `json:"remarks" binding:"max=500"`
	PaidAt        *time.Time      `json:"paid_at"`
}

// FeePaymentListQuery filters payment listings. From and To are inclusive dates.
type FeePaymentListQuery struct {
	dto.ListRequest
	StudentID     string `form:"student_id" binding:"omitempty,uuid"`
	InvoiceID     string `form:"invoice_id" binding:"omitempty,uuid"`
	PaymentMethod string `form:"payment_method" binding:"omitempty,payment_method"`
	From          string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To            string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// FeePaymentResponse represents a payment in API responses
type FeePaymentResponse struct {
	ID            string  `json:"id"`
	StudentID     string  `json:"student_id"`
	InvoiceID     *string `json:"invoice_id"`
	AmountPaid    string  `json:"amount_paid"`
	PaymentMethod string  `json:"payment_method"`
	TransactionID string  `json:"transaction_id,omitempty"`
	Remarks       string  `json:"remarks,omitempty"`
	PaidAt        string  `json:"paid_at"`
	RecordedBy    string  `json:"recorded_by"`
	ReceiptNumber string  `json:"receipt_number"`
	CreatedAt     string  `json:"created_at"`
}

func toFeePaymentResponse(p *fee.FeePayment) FeePaymentResponse {
	return FeePaymentResponse{
		ID:            idString(p.ID),
		StudentID:     idString(p.StudentID),
		InvoiceID:     optionalID(p.InvoiceID),
		AmountPaid:    money(p.AmountPaid),
		PaymentMethod: p.Method.String(),
		TransactionID: p.TransactionID,
		Remarks:       p.Remarks,
		PaidAt:        p.PaidAt.UTC().Format(time.RFC3339),
		RecordedBy:    idString(p.RecordedBy),
		ReceiptNumber: fee.ReceiptNumber(p),
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// StudentFeeSummaryResponse is the fee position of one student
type StudentFeeSummaryResponse struct {
	StudentID        string         `json:"student_id"`
	TotalInvoiced    string         `json:"total_invoiced"`
	TotalPaid        string         `json:"total_paid"`
	TotalPending     string         `json:"total_pending"`
	UnassociatedPaid string         `json:"unassociated_paid"`
	InvoiceCount     int            `json:"invoice_count"`
	StatusCounts     map[string]int `json:"status_counts"`
}

func toStudentFeeSummaryResponse(s *fee.StudentFeeSummary) StudentFeeSummaryResponse {
	counts := make(map[string]int, len(s.StatusCounts))
	for status, n := range s.StatusCounts {
		counts[status.String()] = n
	}
	return StudentFeeSummaryResponse{
		StudentID:        idString(s.StudentID),
		TotalInvoiced:    money(s.TotalInvoiced),
		TotalPaid:        money(s.TotalPaid),
		TotalPending:     money(s.TotalPending),
		UnassociatedPaid: money(s.UnassociatedPaid),
		InvoiceCount:     s.InvoiceCount,
		StatusCounts:     counts,
	}
}

// =============================================================================
// Fee handovers
// =============================================================================

// SubmitFeeHandoverRequest is the body of a handover create
type SubmitFeeHandoverRequest struct {
	AmountSubmitted decimal.Decimal `json:"amount_submitted" binding:"money"`
	Remarks         string          `json:"remarks" binding:"max=500"`
}

// FeeHandoverListQuery filters handover listings. From and To are inclusive dates.
type FeeHandoverListQuery struct {
	dto.ListRequest
	SubmittedBy string `form:"submitted_by" binding:"omitempty,uuid"`
	From        string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To          string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// FeeHandoverResponse represents a handover in API responses
type FeeHandoverResponse struct {
	ID              string `json:"id"`
	SubmittedBy     string `json:"submitted_by"`
	AmountSubmitted string `json:"amount_submitted"`
	SubmittedAt     string `json:"submitted_at"`
	Remarks         string `json:"remarks,omitempty"`
}

func toFeeHandoverResponse(h *fee.FeeHandover) FeeHandoverResponse {
	return FeeHandoverResponse{
		ID:              idString(h.ID),
		SubmittedBy:     idString(h.SubmittedBy),
		AmountSubmitted: money(h.AmountSubmitted),
		SubmittedAt:     h.SubmittedAt.UTC().Format(time.RFC3339),
		Remarks:         h.Remarks,
	}
}

// CashPositionResponse is the running reconciliation of collected versus handed-over cash
type CashPositionResponse struct {
	TotalCollected  string `json:"total_collected"`
	TotalHandedOver string `json:"total_handed_over"`
	Available       string `json:"available"`
}

func toCashPositionResponse(p fee.CashPosition) CashPositionResponse {
	return CashPositionResponse{
		TotalCollected:  money(p.TotalCollected),
		TotalHandedOver: money(p.TotalHandedOver),
		Available:       money(p.Available()),
	}
}

// mapSlice converts a page of domain values into response values
func mapSlice[T, R any](items []T, fn func(*T) R) []R {
	out := make([]R, 0, len(items))
	for i := range items {
		out = append(out, fn(&items[i]))
	}
	return out
}
