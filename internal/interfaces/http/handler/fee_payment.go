package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	feeapp "github.com/schoolfee/backend/internal/application/fee"
	"github.com/schoolfee/backend/internal/domain/fee"
	"github.com/schoolfee/backend/internal/domain/identity"
	"github.com/schoolfee/backend/internal/domain/shared"
	"github.com/schoolfee/backend/internal/interfaces/http/middleware"
)

// FeePaymentService is the subset of the payment service used over HTTP
type FeePaymentService interface {
	Create(ctx context.Context, p identity.Principal, req feeapp.RecordPaymentRequest) (*fee.FeePayment, error)
	Get(ctx context.Context, p identity.Principal, id uuid.UUID) (*fee.FeePayment, error)
	List(ctx context.Context, p identity.Principal, filter fee.PaymentFilter) (shared.Paginated[fee.FeePayment], error)
	StudentSummary(ctx context.Context, p identity.Principal, studentID uuid.UUID) (*fee.StudentFeeSummary, error)
}

// ReceiptProvider assembles and prints payment receipts
type ReceiptProvider interface {
	Payload(ctx context.Context, p identity.Principal, paymentID uuid.UUID) (*fee.ReceiptPayload, error)
	RenderPDF(ctx context.Context, p identity.Principal, paymentID uuid.UUID) ([]byte, error)
}

// FeePaymentHandler handles fee payment and receipt endpoints
type FeePaymentHandler struct {
	BaseHandler
	service  FeePaymentService
	receipts ReceiptProvider
}

// NewFeePaymentHandler creates a new FeePaymentHandler
func NewFeePaymentHandler(service FeePaymentService, receipts ReceiptProvider) *FeePaymentHandler {
	return &FeePaymentHandler{service: service, receipts: receipts}
}

// Create handles POST /fee-payments. A repeated Idempotency-Key header is
// rejected with 409 instead of recording the payment twice.
func (h *FeePaymentHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req RecordFeePaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	invoiceID, err := parseOptionalUUID(req.InvoiceID)
	if err != nil {
		h.BadRequest(c, "Invalid invoice_id format")
		return
	}

	payment, err := h.service.Create(c.Request.Context(), p, feeapp.RecordPaymentRequest{
		StudentID:      uuid.MustParse(req.StudentID),
		InvoiceID:      invoiceID,
		AmountPaid:     req.AmountPaid,
		Method:         fee.PaymentMethod(strings.ToUpper(req.PaymentMethod)),
		TransactionID:  req.TransactionID,
		Remarks:        req.Remarks,
		PaidAt:         req.PaidAt,
		IdempotencyKey: strings.TrimSpace(c.GetHeader(middleware.IdempotencyKeyHeader)),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toFeePaymentResponse(payment))
}

// Get handles GET /fee-payments/:id
func (h *FeePaymentHandler) Get(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	payment, err := h.service.Get(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toFeePaymentResponse(payment))
}

// List handles GET /fee-payments
func (h *FeePaymentHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var q FeePaymentListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter := fee.PaymentFilter{
		Filter: q.ToFilter(),
		Method: fee.PaymentMethod(strings.ToUpper(q.PaymentMethod)),
	}
	var err error
	if filter.StudentID, err = parseOptionalUUID(q.StudentID); err != nil {
		h.BadRequest(c, "Invalid student_id format")
		return
	}
	if filter.InvoiceID, err = parseOptionalUUID(q.InvoiceID); err != nil {
		h.BadRequest(c, "Invalid invoice_id format")
		return
	}
	if filter.From, err = parseOptionalDate(q.From); err != nil {
		h.BadRequest(c, "Invalid from date, expected YYYY-MM-DD")
		return
	}
	if filter.To, err = parseOptionalDate(q.To); err != nil {
		h.BadRequest(c, "Invalid to date, expected YYYY-MM-DD")
		return
	}

	page, err := h.service.List(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, mapSlice(page.Items, toFeePaymentResponse), page.Total, page.Page, page.PageSize)
}

// StudentSummary handles GET /fee-payments/students/:studentId/summary
func (h *FeePaymentHandler) StudentSummary(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	studentID, ok := h.pathID(c, "studentId")
	if !ok {
		return
	}

	summary, err := h.service.StudentSummary(c.Request.Context(), p, studentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toStudentFeeSummaryResponse(summary))
}

// Receipt handles GET /fee-payments/:id/receipt
func (h *FeePaymentHandler) Receipt(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	payload, err := h.receipts.Payload(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payload)
}

// ReceiptPDF handles GET /fee-payments/:id/receipt.pdf
func (h *FeePaymentHandler) ReceiptPDF(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	pdf, err := h.receipts.RenderPDF(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="receipt-%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// RegisterRoutes registers all fee payment routes
func (h *FeePaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/fee-payments")
	{
		payments.GET("", h.List)
		payments.POST("", h.Create)
		payments.GET("/students/:studentId/summary", h.StudentSummary)
		payments.GET("/:id", h.Get)
		payments.GET("/:id/receipt", h.Receipt)
		payments.GET("/:id/receipt.pdf", h.ReceiptPDF)
	}
}
