package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	feeapp "github.com/schoolfee/backend/internal/application/fee"
	"github.com/schoolfee/backend/internal/domain/fee"
	"github.com/schoolfee/backend/internal/domain/identity"
	"github.com/schoolfee/backend/internal/domain/shared"
)

// FeeHandoverService is the subset of the handover service used over HTTP
type FeeHandoverService interface {
	Summary(ctx context.Context, p identity.Principal) (fee.CashPosition, error)
	Create(ctx context.Context, p identity.Principal, req feeapp.SubmitHandoverRequest) (*fee.FeeHandover, error)
	List(ctx context.Context, p identity.Principal, filter fee.HandoverFilter) (shared.Paginated[fee.FeeHandover], error)
	Get(ctx context.Context, p identity.Principal, id uuid.UUID) (*fee.FeeHandover, error)
}

// FeeHandoverHandler handles cash handover endpoints
type FeeHandoverHandler struct {
	BaseHandler
	service FeeHandoverService
}

// NewFeeHandoverHandler creates a new FeeHandoverHandler
func NewFeeHandoverHandler(service FeeHandoverService) *FeeHandoverHandler {
	return &FeeHandoverHandler{service: service}
}

// Summary handles GET /fee-handovers/summary
func (h *FeeHandoverHandler) Summary(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	pos, err := h.service.Summary(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCashPositionResponse(pos))
}

// Create handles POST /fee-handovers
func (h *FeeHandoverHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req SubmitFeeHandoverRequest
	if !h.bindJSON(c, &req) {
		return
	}

	handover, err := h.service.Create(c.Request.Context(), p, feeapp.SubmitHandoverRequest{
		Amount:  req.AmountSubmitted,
		Remarks: req.Remarks,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toFeeHandoverResponse(handover))
}

// List handles GET /fee-handovers
func (h *FeeHandoverHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var q FeeHandoverListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter := fee.HandoverFilter{Filter: q.ToFilter()}
	var err error
	if filter.SubmittedBy, err = parseOptionalUUID(q.SubmittedBy); err != nil {
		h.BadRequest(c, "Invalid submitted_by format")
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
	h.SuccessWithMeta(c, mapSlice(page.Items, toFeeHandoverResponse), page.Total, page.Page, page.PageSize)
}

// Get handles GET /fee-handovers/:id
func (h *FeeHandoverHandler) Get(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	handover, err := h.service.Get(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toFeeHandoverResponse(handover))
}

// RegisterRoutes registers all handover routes
func (h *FeeHandoverHandler) RegisterRoutes(rg *gin.RouterGroup) {
	handovers := rg.Group("/fee-handovers")
	{
		handovers.GET("", h.List)
		handovers.POST("", h.Create)
		handovers.GET("/summary", h.Summary)
		handovers.GET("/:id", h.Get)
	}
}
