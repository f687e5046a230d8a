package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	schoolapp "github.com/schoolfee/backend/internal/application/school"
	"github.com/schoolfee/backend/internal/domain/identity"
	"github.com/schoolfee/backend/internal/domain/school"
	"github.com/schoolfee/backend/internal/domain/shared"
	"github.com/schoolfee/backend/internal/interfaces/http/dto"
)

func sampleSchoolView(t *testing.T) *schoolapp.SchoolView {
	t.Helper()
	now := time.Date(2025, 1, 25, 12, 0, 0, 0, time.UTC)
	sch, err := school.NewSchool(school.Profile{Name: "Sunrise Public School", PrincipalName: "R. Iyer"},
		decimal.RequireFromString("1500"), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)
	sch.ID = testTenantID
	days := school.DaysUntil(*sch.NextBillingDate, now)
	return &schoolapp.SchoolView{School: sch, RemainingDays: &days}
}

func platformAdmin() identity.Principal {
	return identity.Principal{UserID: testUserID, Role: identity.RoleAdmin, PlatformAdmin: true}
}

func TestSchoolHandler_GetOwn(t *testing.T) {
	p := staffPrincipal(identity.RoleAdmin)
	view := sampleSchoolView(t)
	svc := new(MockSchoolService)
	svc.On("Get", mock.Anything, p).Return(view, nil)

	w, resp := doJSON(t, newTestRouter(NewSchoolHandler(svc, nil), &p), http.MethodGet, "/api/v1/school", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, resp)
	assert.Equal(t, "Sunrise Public School", data["name"])
	assert.Equal(t, "2025-02-01", data["next_billing_date"])
	assert.Equal(t, "DUE_SOON", data["subscription_status"])
	assert.Equal(t, float64(6), data["remaining_days"])
	assert.Equal(t, "1500.00", data["subscription_amount"])
}

func TestSchoolHandler_UpdateOwn(t *testing.T) {
	p := staffPrincipal(identity.RolePrincipal)
	view := sampleSchoolView(t)
	svc := new(MockSchoolService)
	svc.On("UpdateProfile", mock.Anything, p, school.Profile{
		Name:    "Sunrise Public School",
		Address: "12 Lake Road",
		Email:   "office@sunrise.example",
	}).Return(view, nil)

	w, _ := doJSON(t, newTestRouter(NewSchoolHandler(svc, nil), &p), http.MethodPut, "/api/v1/school", map[string]any{
		"name":    "Sunrise Public School",
		"address": "12 Lake Road",
		"email":   "office@sunrise.example",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)

	w, resp := doJSON(t, newTestRouter(NewSchoolHandler(svc, nil), &p), http.MethodPut, "/api/v1/school", `{"name":"X","email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
}

func logoRequest(t *testing.T, contentType string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="logo.png"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/school/logo", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestSchoolHandler_UploadLogo(t *testing.T) {
	p := staffPrincipal(identity.RoleAdmin)

	t.Run("stores and points the profile at the key", func(t *testing.T) {
		view := sampleSchoolView(t)
		svc := new(MockSchoolService)
		logos := new(MockLogoUploader)
		prefix := "logos/" + testTenantID.String() + "/"

		svc.On("Get", mock.Anything, p).Return(view, nil)
		logos.On("UploadLogo", mock.Anything, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, prefix) && strings.HasSuffix(key, ".png")
		}), []byte("png-bytes"), "image/png").Return(prefix+"stored.png", nil)
		svc.On("UpdateProfile", mock.Anything, p, mock.MatchedBy(func(pr school.Profile) bool {
			return pr.LogoKey == prefix+"stored.png" && pr.Name == "Sunrise Public School"
		})).Return(view, nil)

		w := httptest.NewRecorder()
		newTestRouter(NewSchoolHandler(svc, logos), &p).ServeHTTP(w, logoRequest(t, "image/png", []byte("png-bytes")))

		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		svc.AssertExpectations(t)
		logos.AssertExpectations(t)
	})

	t.Run("unsupported type", func(t *testing.T) {
		svc := new(MockSchoolService)
		w := httptest.NewRecorder()
		newTestRouter(NewSchoolHandler(svc, new(MockLogoUploader)), &p).ServeHTTP(w, logoRequest(t, "application/pdf", []byte("x")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("storage disabled", func(t *testing.T) {
		w := httptest.NewRecorder()
		newTestRouter(NewSchoolHandler(new(MockSchoolService), nil), &p).ServeHTTP(w, logoRequest(t, "image/png", []byte("x")))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeUnavailable, resp.Error.Code)
	})
}

func TestSchoolHandler_Platform(t *testing.T) {
	admin := platformAdmin()
	view := sampleSchoolView(t)

	t.Run("create", func(t *testing.T) {
		svc := new(MockSchoolService)
		svc.On("Create", mock.Anything, admin, mock.MatchedBy(func(req schoolapp.CreateSchoolRequest) bool {
			return req.Profile.Name == "Sunrise Public School" &&
				req.Amount.Equal(decimal.RequireFromString("1500")) &&
				req.StartDate.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
		})).Return(view, nil)

		w, _ := doJSON(t, newTestRouter(NewSchoolHandler(svc, nil), &admin), http.MethodPost, "/api/v1/platform/schools", map[string]any{
			"name":                "Sunrise Public School",
			"subscription_amount": "1500",
			"start_date":          "2025-01-01",
		})
		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("list requires platform admin", func(t *testing.T) {
		p := staffPrincipal(identity.RoleAdmin)
		svc := new(MockSchoolService)
		svc.On("List", mock.Anything, p, mock.Anything).
			Return(shared.Paginated[schoolapp.SchoolView]{}, shared.NewForbiddenError("Platform administrator access required"))

		w, _ := doJSON(t, newTestRouter(NewSchoolHandler(svc, nil), &p), http.MethodGet, "/api/v1/platform/schools", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("list", func(t *testing.T) {
		svc := new(MockSchoolService)
		svc.On("List", mock.Anything, admin, mock.MatchedBy(func(f shared.Filter) bool {
			return f.Search == "sunrise" && f.Page == 1
		})).Return(shared.NewPaginated([]schoolapp.SchoolView{*view}, 1, 1, 20), nil)

		w, resp := doJSON(t, newTestRouter(NewSchoolHandler(svc, nil), &admin), http.MethodGet, "/api/v1/platform/schools?search=sunrise", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, resp.Data, 1)
	})

	t.Run("update subscription", func(t *testing.T) {
		svc := new(MockSchoolService)
		svc.On("UpdateSubscription", mock.Anything, admin, view.ID,
			mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.RequireFromString("2000")) }),
			mock.MatchedBy(func(start time.Time) bool { return start.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) })).
			Return(view, nil)

		w, _ := doJSON(t, newTestRouter(NewSchoolHandler(svc, nil), &admin), http.MethodPut,
			"/api/v1/platform/schools/"+view.ID.String()+"/subscription", `{"subscription_amount":"2000","start_date":"2025-03-01"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("renew unknown school", func(t *testing.T) {
		id := uuid.New()
		svc := new(MockSchoolService)
		svc.On("Renew", mock.Anything, admin, id).Return(nil, shared.NewNotFoundError("School"))

		w, _ := doJSON(t, newTestRouter(NewSchoolHandler(svc, nil), &admin), http.MethodPost, "/api/v1/platform/schools/"+id.String()+"/renew", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
