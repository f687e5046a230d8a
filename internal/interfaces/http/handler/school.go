package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	schoolapp "github.com/schoolfee/backend/internal/application/school"
	"github.com/schoolfee/backend/internal/domain/identity"
	"github.com/schoolfee/backend/internal/domain/school"
	"github.com/schoolfee/backend/internal/domain/shared"
	"github.com/schoolfee/backend/internal/interfaces/http/dto"
)

// SchoolService is the subset of the subscription service used over HTTP
type SchoolService interface {
	Get(ctx context.Context, p identity.Principal) (*schoolapp.SchoolView, error)
	GetByID(ctx context.Context, p identity.Principal, id uuid.UUID) (*schoolapp.SchoolView, error)
	List(ctx context.Context, p identity.Principal, filter shared.Filter) (shared.Paginated[schoolapp.SchoolView], error)
	Create(ctx context.Context, p identity.Principal, req schoolapp.CreateSchoolRequest) (*schoolapp.SchoolView, error)
	UpdateProfile(ctx context.Context, p identity.Principal, profile school.Profile) (*schoolapp.SchoolView, error)
	UpdateSubscription(ctx context.Context, p identity.Principal, id uuid.UUID, amount decimal.Decimal, start time.Time) (*schoolapp.SchoolView, error)
	Renew(ctx context.Context, p identity.Principal, id uuid.UUID) (*schoolapp.SchoolView, error)
}

// LogoUploader stores school logo images
type LogoUploader interface {
	UploadLogo(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// maxLogoBytes caps the size of an uploaded logo image
const maxLogoBytes = 2 << 20

var logoExtensions = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/svg+xml": ".svg",
	"image/webp":    ".webp",
}

// SchoolProfileRequest is the body of a school profile update
type SchoolProfileRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=200"`
	LogoKey       string `json:"logo_key" binding:"max=500"`
	PrincipalName string `json:"principal_name" binding:"max=200"`
	Address       string `json:"address" binding:"max=500"`
	Phone         string `json:"phone" binding:"max=50"`
	Email         string `json:"email" binding:"omitempty,email,max=200"`
}

func (r SchoolProfileRequest) profile() school.Profile {
	return school.Profile{
		Name:          r.Name,
		LogoKey:       r.LogoKey,
		PrincipalName: r.PrincipalName,
		Address:       r.Address,
		Phone:         r.Phone,
		Email:         r.Email,
	}
}

// SubscriptionRequest sets the monthly platform fee of a school
type SubscriptionRequest struct {
	SubscriptionAmount decimal.Decimal `json:"subscription_amount" binding:"money"`
	StartDate          string          `json:"start_date" binding:"required,datetime=2006-01-02"`
}

// CreateSchoolRequest onboards a school onto the platform
type CreateSchoolRequest struct {
	SchoolProfileRequest
	SubscriptionRequest
}

// SchoolResponse represents a school and its subscription in API responses
type SchoolResponse struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	LogoKey               string  `json:"logo_key,omitempty"`
	PrincipalName         string  `json:"principal_name,omitempty"`
	Address               string  `json:"address,omitempty"`
	Phone                 string  `json:"phone,omitempty"`
	Email                 string  `json:"email,omitempty"`
	SubscriptionAmount    string  `json:"subscription_amount"`
	SubscriptionStartDate string  `json:"subscription_start_date"`
	NextBillingDate       *string `json:"next_billing_date"`
	SubscriptionStatus    string  `json:"subscription_status"`
	RemainingDays         *int    `json:"remaining_days"`
}

func toSchoolResponse(v *schoolapp.SchoolView) SchoolResponse {
	resp := SchoolResponse{
		ID:                    v.ID.String(),
		Name:                  v.Name,
		LogoKey:               v.LogoKey,
		PrincipalName:         v.PrincipalName,
		Address:               v.Address,
		Phone:                 v.Phone,
		Email:                 v.Email,
		SubscriptionAmount:    money(v.SubscriptionAmount),
		SubscriptionStartDate: v.SubscriptionStartDate.UTC().Format(dateLayout),
		SubscriptionStatus:    v.SubscriptionStatus.String(),
		RemainingDays:         v.RemainingDays,
	}
	if v.NextBillingDate != nil {
		next := v.NextBillingDate.UTC().Format(dateLayout)
		resp.NextBillingDate = &next
	}
	return resp
}

// SchoolHandler serves the caller's own school. The platform routes manage
// every school's subscription and require a platform administrator.
type SchoolHandler struct {
	BaseHandler
	service SchoolService
	logos   LogoUploader
}

// NewSchoolHandler creates a new SchoolHandler. logos may be nil when object
// storage is disabled, in which case logo uploads answer 503.
func NewSchoolHandler(service SchoolService, logos LogoUploader) *SchoolHandler {
	return &SchoolHandler{service: service, logos: logos}
}

// GetOwn handles GET /school
func (h *SchoolHandler) GetOwn(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	view, err := h.service.Get(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSchoolResponse(view))
}

// UpdateOwn handles PUT /school
func (h *SchoolHandler) UpdateOwn(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req SchoolProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	view, err := h.service.UpdateProfile(c.Request.Context(), p, req.profile())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSchoolResponse(view))
}

// UploadLogo handles POST /school/logo. The multipart "file" part is stored
// under logos/<school id>/ and the profile's logo key is pointed at it.
func (h *SchoolHandler) UploadLogo(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	if h.logos == nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "Logo storage is not configured")
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing logo file")
		return
	}
	if file.Size > maxLogoBytes {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Logo must not exceed 2 MiB")
		return
	}
	contentType := strings.ToLower(file.Header.Get("Content-Type"))
	ext, ok := logoExtensions[contentType]
	if !ok {
		h.BadRequest(c, "Logo must be a PNG, JPEG, SVG or WebP image")
		return
	}

	ctx := c.Request.Context()
	current, err := h.service.Get(ctx, p)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	f, err := file.Open()
	if err != nil {
		h.BadRequest(c, "Unreadable logo file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxLogoBytes))
	if err != nil {
		h.BadRequest(c, "Unreadable logo file")
		return
	}

	key := path.Join("logos", p.TenantID.String(), fmt.Sprintf("%s%s", uuid.NewString(), ext))
	if key, err = h.logos.UploadLogo(ctx, key, data, contentType); err != nil {
		h.HandleError(c, err)
		return
	}

	profile := current.Profile()
	profile.LogoKey = key
	view, err := h.service.UpdateProfile(ctx, p, profile)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSchoolResponse(view))
}

// List handles GET /platform/schools
func (h *SchoolHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var q dto.ListRequest
	if !h.bindQuery(c, &q) {
		return
	}

	page, err := h.service.List(c.Request.Context(), p, q.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, mapSlice(page.Items, toSchoolResponse), page.Total, page.Page, page.PageSize)
}

// Create handles POST /platform/schools
func (h *SchoolHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req CreateSchoolRequest
	if !h.bindJSON(c, &req) {
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		h.BadRequest(c, "Invalid start_date format, expected YYYY-MM-DD")
		return
	}

	view, err := h.service.Create(c.Request.Context(), p, schoolapp.CreateSchoolRequest{
		Profile:   req.profile(),
		Amount:    req.SubscriptionAmount,
		StartDate: start,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toSchoolResponse(view))
}

// Get handles GET /platform/schools/:id
func (h *SchoolHandler) Get(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	view, err := h.service.GetByID(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSchoolResponse(view))
}

// UpdateSubscription handles PUT /platform/schools/:id/subscription
func (h *SchoolHandler) UpdateSubscription(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req SubscriptionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		h.BadRequest(c, "Invalid start_date format, expected YYYY-MM-DD")
		return
	}

	view, err := h.service.UpdateSubscription(c.Request.Context(), p, id, req.SubscriptionAmount, start)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSchoolResponse(view))
}

// Renew handles POST /platform/schools/:id/renew
func (h *SchoolHandler) Renew(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	view, err := h.service.Renew(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSchoolResponse(view))
}

// RegisterRoutes registers the own-school and platform school routes
func (h *SchoolHandler) RegisterRoutes(rg *gin.RouterGroup) {
	own := rg.Group("/school")
	{
		own.GET("", h.GetOwn)
		own.PUT("", h.UpdateOwn)
		own.POST("/logo", h.UploadLogo)
	}

	schools := rg.Group("/platform/schools")
	{
		schools.GET("", h.List)
		schools.POST("", h.Create)
		schools.GET("/:id", h.Get)
		schools.PUT("/:id/subscription", h.UpdateSubscription)
		schools.POST("/:id/renew", h.Renew)
	}
}
