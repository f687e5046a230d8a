package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	feeapp "github.com/schoolfee/backend/internal/application/fee"
	"github.com/schoolfee/backend/internal/domain/fee"
	"github.com/schoolfee/backend/internal/domain/identity"
	"github.com/schoolfee/backend/internal/domain/shared"
)

// FeeInvoiceService is the subset of the invoice service used over HTTP
type FeeInvoiceService interface {
	Create(ctx context.Context, p identity.Principal, req feeapp.CreateInvoiceRequest) (*fee.FeeInvoice, error)
	Get(ctx context.Context, p identity.Principal, id uuid.UUID) (*fee.FeeInvoice, error)
	List(ctx context.Context, p identity.Principal, filter fee.InvoiceFilter) (shared.Paginated[fee.FeeInvoice], error)
	Update(ctx context.Context, p identity.Principal, id uuid.UUID, req feeapp.UpdateInvoiceRequest) (*fee.FeeInvoice, error)
	Delete(ctx context.Context, p identity.Principal, id uuid.UUID) error
}

// FeeInvoiceHandler handles fee invoice endpoints
type FeeInvoiceHandler struct {
	BaseHandler
	service FeeInvoiceService
}

// NewFeeInvoiceHandler creates a new FeeInvoiceHandler
func NewFeeInvoiceHandler(service FeeInvoiceService) *FeeInvoiceHandler {
	return &FeeInvoiceHandler{service: service}
}

// Create handles POST /fee-invoices
func (h *FeeInvoiceHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req CreateFeeInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		h.BadRequest(c, "Invalid due_date format, expected YYYY-MM-DD")
		return
	}

	inv, err := h.service.Create(c.Request.Context(), p, feeapp.CreateInvoiceRequest{
		StudentID:      uuid.MustParse(req.StudentID),
		FeeStructureID: uuid.MustParse(req.FeeStructureID),
		Amount:         req.Amount,
		DueDate:        dueDate,
		Remarks:        req.Remarks,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toFeeInvoiceResponse(inv))
}

// Get handles GET /fee-invoices/:id
func (h *FeeInvoiceHandler) Get(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	inv, err := h.service.Get(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toFeeInvoiceResponse(inv))
}

// List handles GET /fee-invoices. Overdue invoices are reported as OVERDUE
// even when the stored status has not been refreshed yet.
func (h *FeeInvoiceHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var q FeeInvoiceListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter := fee.InvoiceFilter{
		Filter: q.ToFilter(),
		Status: fee.InvoiceStatus(strings.ToUpper(q.Status)),
	}
	var err error
	if filter.StudentID, err = parseOptionalUUID(q.StudentID); err != nil {
		h.BadRequest(c, "Invalid student_id format")
		return
	}
	if filter.ClassID, err = parseOptionalUUID(q.ClassID); err != nil {
		h.BadRequest(c, "Invalid class_id format")
		return
	}

	page, err := h.service.List(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, mapSlice(page.Items, toFeeInvoiceResponse), page.Total, page.Page, page.PageSize)
}

// Update handles PUT /fee-invoices/:id
func (h *FeeInvoiceHandler) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateFeeInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	update := feeapp.UpdateInvoiceRequest{Amount: req.Amount, Remarks: req.Remarks}
	if req.DueDate != nil {
		var due time.Time
		var err error
		if due, err = parseDate(*req.DueDate); err != nil {
			h.BadRequest(c, "Invalid due_date format, expected YYYY-MM-DD")
			return
		}
		update.DueDate = &due
	}

	inv, err := h.service.Update(c.Request.Context(), p, id, update)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toFeeInvoiceResponse(inv))
}

// Delete handles DELETE /fee-invoices/:id
func (h *FeeInvoiceHandler) Delete(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), p, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers all fee invoice routes
func (h *FeeInvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/fee-invoices")
	{
		invoices.GET("", h.List)
		invoices.POST("", h.Create)
		invoices.GET("/:id", h.Get)
		invoices.PUT("/:id", h.Update)
		invoices.DELETE("/:id", h.Delete)
	}
}
