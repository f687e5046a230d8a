package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolfee/backend/internal/domain/shared"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeInsufficientBalance, http.StatusConflict},
		{ErrCodeUnavailable, http.StatusServiceUnavailable},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode("NOT_FOUND"))
	assert.Equal(t, "ERR_INVALID_AMOUNT", NormalizeErrorCode("invalid_amount"))
	assert.Equal(t, ErrCodeValidation, NormalizeErrorCode(ErrCodeValidation))
	assert.Equal(t, ErrCodeInternal, NormalizeErrorCode(""))
}

func TestErrorFromDomain(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			err:        fmt.Errorf("load invoice: %w", shared.NewNotFoundError("Invoice")),
			wantStatus: http.StatusNotFound,
			wantCode:   ErrCodeNotFound,
		},
		{
			name:       "validation",
			err:        shared.NewValidationError("INVALID_AMOUNT", "Amount must be positive"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "ERR_INVALID_AMOUNT",
		},
		{
			name:       "state conflict",
			err:        shared.ErrInsufficientBalance,
			wantStatus: http.StatusConflict,
			wantCode:   ErrCodeInsufficientBalance,
		},
		{
			name:       "forbidden",
			err:        shared.NewForbiddenError("no"),
			wantStatus: http.StatusForbidden,
			wantCode:   ErrCodeForbidden,
		},
		{
			name:       "printing disabled",
			err:        shared.NewDomainError(shared.KindInternal, "PRINTING_DISABLED", "Receipt printing is not configured"),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   ErrCodePrintingDisabled,
		},
		{
			name:       "plain error hides message",
			err:        errors.New("pq: connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrCodeInternal,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, info := ErrorFromDomain(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, info.Code)
			assert.NotContains(t, info.Message, "pq:")
		})
	}
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID("NOT_FOUND", "Invoice not found", "req-123")

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded Response
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.False(t, decoded.Success)
	require.NotNil(t, decoded.Error)
	assert.Equal(t, ErrCodeNotFound, decoded.Error.Code)
	assert.Equal(t, "req-123", decoded.Error.RequestID)
	assert.Nil(t, decoded.Meta)
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-789", []ValidationDetail{
		{Field: "amount", Message: "This field is required"},
	})

	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "amount", resp.Error.Details[0].Field)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 41, 2, 20)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	empty := NewSuccessResponseWithMeta(nil, 0, 1, 0)
	assert.Equal(t, 0, empty.Meta.TotalPages)
}

func TestListRequest_ToFilter(t *testing.T) {
	f := ListRequest{Page: 2, PageSize: 50, OrderDir: "ASC", Search: "  fee "}.ToFilter()
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 50, f.PageSize)
	assert.Equal(t, "asc", f.OrderDir)
	assert.Equal(t, "fee", f.Search)

	d := ListRequest{}.ToFilter()
	assert.Equal(t, 1, d.Page)
	assert.Equal(t, 20, d.PageSize)
	assert.Equal(t, "desc", d.OrderDir)
}
