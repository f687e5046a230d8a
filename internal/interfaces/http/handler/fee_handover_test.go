package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	feeapp "github.com/schoolfee/backend/internal/application/fee"
	"github.com/schoolfee/backend/internal/domain/fee"
	"github.com/schoolfee/backend/internal/domain/identity"
	"github.com/schoolfee/backend/internal/domain/shared"
)

func TestFeeHandoverHandler_Summary(t *testing.T) {
	p := staffPrincipal(identity.RoleAccountant)
	svc := new(MockHandoverService)
	svc.On("Summary", mock.Anything, p).Return(fee.CashPosition{
		TotalCollected:  decimal.RequireFromString("50000"),
		TotalHandedOver: decimal.RequireFromString("30000"),
	}, nil)

	w, resp := doJSON(t, newTestRouter(NewFeeHandoverHandler(svc), &p), http.MethodGet, "/api/v1/fee-handovers/summary", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, resp)
	assert.Equal(t, "50000.00", data["total_collected"])
	assert.Equal(t, "30000.00", data["total_handed_over"])
	assert.Equal(t, "20000.00", data["available"])
}

func TestFeeHandoverHandler_Create(t *testing.T) {
	p := staffPrincipal(identity.RoleCashier)
	position := fee.CashPosition{TotalCollected: decimal.RequireFromString("50000"), TotalHandedOver: decimal.Zero}

	t.Run("accepted", func(t *testing.T) {
		handover, err := fee.NewFeeHandover(testTenantID, testUserID, decimal.RequireFromString("30000"), "Evening deposit", position, time.Now())
		require.NoError(t, err)

		svc := new(MockHandoverService)
		svc.On("Create", mock.Anything, p, mock.MatchedBy(func(req feeapp.SubmitHandoverRequest) bool {
			return req.Amount.Equal(decimal.RequireFromString("30000")) && req.Remarks == "Evening deposit"
		})).Return(handover, nil)

		w, resp := doJSON(t, newTestRouter(NewFeeHandoverHandler(svc), &p), http.MethodPost, "/api/v1/fee-handovers",
			`{"amount_submitted":"30000","remarks":"Evening deposit"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "30000.00", dataMap(t, resp)["amount_submitted"])
		svc.AssertExpectations(t)
	})

	t.Run("zero amount reaches the service", func(t *testing.T) {
		handover, err := fee.NewFeeHandover(testTenantID, testUserID, decimal.Zero, "", position, time.Now())
		require.NoError(t, err)

		svc := new(MockHandoverService)
		svc.On("Create", mock.Anything, p, mock.Anything).Return(handover, nil)

		w, _ := doJSON(t, newTestRouter(NewFeeHandoverHandler(svc), &p), http.MethodPost, "/api/v1/fee-handovers", `{"amount_submitted":0}`)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		svc := new(MockHandoverService)
		w, _ := doJSON(t, newTestRouter(NewFeeHandoverHandler(svc), &p), http.MethodPost, "/api/v1/fee-handovers", `{"amount_submitted":"-1"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Create")
	})

	t.Run("exceeds available", func(t *testing.T) {
		svc := new(MockHandoverService)
		svc.On("Create", mock.Anything, p, mock.Anything).Return(nil, position.Accept(decimal.RequireFromString("60000")))

		w, resp := doJSON(t, newTestRouter(NewFeeHandoverHandler(svc), &p), http.MethodPost, "/api/v1/fee-handovers", `{"amount_submitted":"60000"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "ERR_INSUFFICIENT_BALANCE", resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "50000.00")
	})
}

func TestFeeHandoverHandler_List(t *testing.T) {
	p := staffPrincipal(identity.RoleAdmin)
	svc := new(MockHandoverService)
	by := uuid.New()

	svc.On("List", mock.Anything, p, mock.MatchedBy(func(f fee.HandoverFilter) bool {
		return f.SubmittedBy != nil && *f.SubmittedBy == by && f.From == nil && f.To != nil
	})).Return(shared.NewPaginated([]fee.FeeHandover{}, 0, 1, 20), nil)

	w, _ := doJSON(t, newTestRouter(NewFeeHandoverHandler(svc), &p), http.MethodGet,
		"/api/v1/fee-handovers?submitted_by="+by.String()+"&to=2025-06-30", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)

	w, _ = doJSON(t, newTestRouter(NewFeeHandoverHandler(svc), &p), http.MethodGet, "/api/v1/fee-handovers?from=June", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
