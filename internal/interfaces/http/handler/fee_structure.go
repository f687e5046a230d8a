package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	feeapp "github.com/schoolfee/backend/internal/application/fee"
	"github.com/schoolfee/backend/internal/domain/fee"
	"github.com/schoolfee/backend/internal/domain/identity"
	"github.com/schoolfee/backend/internal/domain/shared"
)

// FeeStructureService is the subset of the fee structure service used over HTTP
type FeeStructureService interface {
	Create(ctx context.Context, p identity.Principal, req feeapp.StructureRequest) (*fee.FeeStructure, error)
	Get(ctx context.Context, p identity.Principal, id uuid.UUID) (*fee.FeeStructure, error)
	List(ctx context.Context, p identity.Principal, filter fee.StructureFilter) (shared.Paginated[fee.FeeStructure], error)
	Update(ctx context.Context, p identity.Principal, id uuid.UUID, req feeapp.StructureRequest) (*fee.FeeStructure, error)
	Delete(ctx context.Context, p identity.Principal, id uuid.UUID) error
}

// FeeStructureHandler handles fee structure endpoints
type FeeStructureHandler struct {
	BaseHandler
	service FeeStructureService
}

// NewFeeStructureHandler creates a new FeeStructureHandler
func NewFeeStructureHandler(service FeeStructureService) *FeeStructureHandler {
	return &FeeStructureHandler{service: service}
}

func (h *FeeStructureHandler) toRequest(c *gin.Context) (feeapp.StructureRequest, bool) {
	var req FeeStructureRequest
	if !h.bindJSON(c, &req) {
		return feeapp.StructureRequest{}, false
	}
	classID, err := parseOptionalUUID(req.ClassID)
	if err != nil {
		h.BadRequest(c, "Invalid class_id format")
		return feeapp.StructureRequest{}, false
	}
	return feeapp.StructureRequest{
		ClassID:     classID,
		Name:        req.Name,
		Description: req.Description,
		Amount:      req.Amount,
		Frequency:   fee.Frequency(strings.ToUpper(req.Frequency)),
	}, true
}

// Create handles POST /fee-structures
func (h *FeeStructureHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	req, ok := h.toRequest(c)
	if !ok {
		return
	}

	fs, err := h.service.Create(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toFeeStructureResponse(fs))
}

// Get handles GET /fee-structures/:id
func (h *FeeStructureHandler) Get(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	fs, err := h.service.Get(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toFeeStructureResponse(fs))
}

// List handles GET /fee-structures
func (h *FeeStructureHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var q FeeStructureListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	classID, err := parseOptionalUUID(q.ClassID)
	if err != nil {
		h.BadRequest(c, "Invalid class_id format")
		return
	}

	page, err := h.service.List(c.Request.Context(), p, fee.StructureFilter{Filter: q.ToFilter(), ClassID: classID})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, mapSlice(page.Items, toFeeStructureResponse), page.Total, page.Page, page.PageSize)
}

// Update handles PUT /fee-structures/:id
func (h *FeeStructureHandler) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	req, ok := h.toRequest(c)
	if !ok {
		return
	}

	fs, err := h.service.Update(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toFeeStructureResponse(fs))
}

// Delete handles DELETE /fee-structures/:id
func (h *FeeStructureHandler) Delete(c *gin.Context) {
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

// RegisterRoutes registers all fee structure routes
func (h *FeeStructureHandler) RegisterRoutes(rg *gin.RouterGroup) {
	structures := rg.Group("/fee-structures")
	{
		structures.GET("", h.List)
		structures.POST("", h.Create)
		structures.GET("/:id", h.Get)
		structures.PUT("/:id", h.Update)
		structures.DELETE("/:id", h.Delete)
	}
}
