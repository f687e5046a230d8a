package fee

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/schoolfee/backend/internal/domain/academic"
	"github.com/schoolfee/backend/internal/domain/fee"
	"github.com/schoolfee/backend/internal/domain/identity"
)

var testNow = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func fixedClock() Option {
	return WithClock(func() time.Time { return testNow })
}

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func principal(t *testing.T, tenantID uuid.UUID, role identity.Role) identity.Principal {
	t.Helper()
	p, err := identity.NewPrincipal(tenantID, uuid.New(), role)
	require.NoError(t, err)
	return p
}

func newStudent(tenantID uuid.UUID, classID *uuid.UUID) *academic.Student {
	return &academic.Student{
		ID:         uuid.New(),
		TenantID:   tenantID,
		ClassID:    classID,
		Name:       "Asha Verma",
		RollNumber: "12",
		Phone:      "+91-9800000000",
	}
}

func newInvoice(t *testing.T, tenantID, studentID uuid.UUID, amount int64, due time.Time) *fee.FeeInvoice {
	t.Helper()
	inv, err := fee.NewFeeInvoice(tenantID, studentID, uuid.New(), d(amount), due, "", testNow.Add(-24*time.Hour))
	require.NoError(t, err)
	return inv
}
