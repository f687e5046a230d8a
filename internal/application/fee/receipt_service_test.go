package fee

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/schoolfee/backend/internal/domain/academic"
	"github.com/schoolfee/backend/internal/domain/fee"
	"github.com/schoolfee/backend/internal/domain/identity"
	"github.com/schoolfee/backend/internal/domain/school"
	"github.com/schoolfee/backend/internal/domain/shared"
)

type stubLogos struct {
	url string
	err error
}

func (s stubLogos) ResolveLogoURL(context.Context, string) (string, error) {
	return s.url, s.err
}

type stubRenderer struct {
	got *fee.ReceiptPayload
}

func (r *stubRenderer) RenderReceipt(_ context.Context, payload *fee.ReceiptPayload) ([]byte, error) {
	r.got = payload
	return []byte("%PDF-1.7"), nil
}

type receiptFixture struct {
	src      ReceiptSources
	payments *MockPaymentRepository
	invoices *MockInvoiceRepository
	structs  *MockStructureRepository
	students *MockStudentReader
	classes  *MockClassReader
	schools  *MockSchoolRepository
}

func newReceiptFixture() *receiptFixture {
	f := &receiptFixture{
		payments: new(MockPaymentRepository),
		invoices: new(MockInvoiceRepository),
		structs:  new(MockStructureRepository),
		students: new(MockStudentReader),
		classes:  new(MockClassReader),
		schools:  new(MockSchoolRepository),
	}
	f.src = ReceiptSources{
		Payments:   f.payments,
		Invoices:   f.invoices,
		Structures: f.structs,
		Students:   f.students,
		Classes:    f.classes,
		Schools:    f.schools,
	}
	return f
}

func newTestSchool(t *testing.T, tenantID uuid.UUID) *school.School {
	t.Helper()
	sch, err := school.NewSchool(school.Profile{
		Name:          "Green Valley Public School",
		LogoKey:       "logos/green-valley.png",
		PrincipalName: "R. Iyer",
		Address:       "12 Lake Road",
		Phone:         "0471-220000",
		Email:         "office@greenvalley.edu",
	}, d(1500), testNow, testNow)
	require.NoError(t, err)
	sch.ID = tenantID
	return sch
}

func TestReceiptService_Payload(t *testing.T) {
	tenantID := uuid.New()
	classID := uuid.New()
	p := principal(t, tenantID, identity.RoleAccountant)
	student := newStudent(tenantID, &classID)

	paymentID := uuid.MustParse("3fa85f64-5717-4562-b3fc-2c963f66afa6")
	paidAt := time.Date(2026, 4, 7, 9, 30, 0, 0, time.UTC)

	t.Run("linked to an invoice", func(t *testing.T) {
		f := newReceiptFixture()
		structure := newStructure(t, tenantID, &classID, 5000)
		inv := newInvoice(t, tenantID, student.ID, 5000, testNow)
		inv.FeeStructureID = structure.ID
		invoiceID := inv.ID
		payment := &fee.FeePayment{
			BaseEntity: shared.BaseEntity{ID: paymentID},
			TenantID:   tenantID, StudentID: student.ID, InvoiceID: &invoiceID,
			AmountPaid: d(2000), Method: fee.PaymentMethodBankTransfer, TransactionID: "NEFT-77", PaidAt: paidAt,
		}

		f.payments.On("FindByID", mock.Anything, tenantID, paymentID).Return(payment, nil)
		f.students.On("FindByID", mock.Anything, tenantID, student.ID).Return(student, nil)
		f.schools.On("FindByID", mock.Anything, tenantID).Return(newTestSchool(t, tenantID), nil)
		f.invoices.On("FindByID", mock.Anything, tenantID, invoiceID).Return(inv, nil)
		f.structs.On("FindByIDIncludeDeleted", mock.Anything, tenantID, structure.ID).Return(structure, nil)
		f.classes.On("FindByID", mock.Anything, tenantID, classID).Return(&academic.Class{ID: classID, Name: "Grade 5", Section: "B"}, nil)

		svc := NewReceiptService(f.src, stubLogos{url: "https://cdn.example.org/logo.png"}, nil, nil)
		first, err := svc.Payload(context.Background(), p, paymentID)
		require.NoError(t, err)
		assert.Equal(t, "RCPT-20260407-3FA85F64", first.Payment.ReceiptNumber)
		assert.Equal(t, "Tuition", first.Payment.FeeType)
		assert.Equal(t, "Grade 5 - B", first.Student.ClassName)
		assert.Equal(t, "https://cdn.example.org/logo.png", first.School.LogoURL)
		assert.Equal(t, "NEFT-77", first.Payment.TransactionID)

		second, err := svc.Payload(context.Background(), p, paymentID)
		require.NoError(t, err)
		assert.Equal(t, first.Payment.ReceiptNumber, second.Payment.ReceiptNumber)
	})

	t.Run("unassociated payment", func(t *testing.T) {
		f := newReceiptFixture()
		noClass := newStudent(tenantID, nil)
		payment := &fee.FeePayment{
			BaseEntity: shared.BaseEntity{ID: paymentID},
			TenantID:   tenantID, StudentID: noClass.ID,
			AmountPaid: d(300), Method: fee.PaymentMethodCash, PaidAt: paidAt,
		}
		f.payments.On("FindByID", mock.Anything, tenantID, paymentID).Return(payment, nil)
		f.students.On("FindByID", mock.Anything, tenantID, noClass.ID).Return(noClass, nil)
		f.schools.On("FindByID", mock.Anything, tenantID).Return(newTestSchool(t, tenantID), nil)

		svc := NewReceiptService(f.src, stubLogos{err: errors.New("no credentials")}, nil, nil)
		payload, err := svc.Payload(context.Background(), p, paymentID)
		require.NoError(t, err)
		assert.Equal(t, fee.GeneralFeeLabel, payload.Payment.FeeType)
		assert.Empty(t, payload.Student.ClassName)
		assert.Empty(t, payload.School.LogoURL)
		f.invoices.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("payment of another tenant", func(t *testing.T) {
		f := newReceiptFixture()
		f.payments.On("FindByID", mock.Anything, tenantID, paymentID).Return(nil, shared.NewNotFoundError("Payment"))

		svc := NewReceiptService(f.src, nil, nil, nil)
		_, err := svc.Payload(context.Background(), p, paymentID)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("students and parents are forbidden", func(t *testing.T) {
		f := newReceiptFixture()
		svc := NewReceiptService(f.src, nil, &stubRenderer{}, nil)
		for _, role := range []identity.Role{identity.RoleStudent, identity.RoleParent, identity.RoleTeacher} {
			_, err := svc.Payload(context.Background(), principal(t, tenantID, role), paymentID)
			assert.Equal(t, shared.KindForbidden, shared.KindOf(err), role)
			_, err = svc.RenderPDF(context.Background(), principal(t, tenantID, role), paymentID)
			assert.Equal(t, shared.KindForbidden, shared.KindOf(err), role)
		}
		f.payments.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestReceiptService_RenderPDF(t *testing.T) {
	tenantID := uuid.New()
	p := principal(t, tenantID, identity.RoleCashier)
	student := newStudent(tenantID, nil)
	payment := &fee.FeePayment{
		BaseEntity: shared.BaseEntity{ID: uuid.New()},
		TenantID:   tenantID, StudentID: student.ID,
		AmountPaid: d(300), Method: fee.PaymentMethodCash, PaidAt: testNow,
	}

	f := newReceiptFixture()
	f.payments.On("FindByID", mock.Anything, tenantID, payment.ID).Return(payment, nil)
	f.students.On("FindByID", mock.Anything, tenantID, student.ID).Return(student, nil)
	f.schools.On("FindByID", mock.Anything, tenantID).Return(newTestSchool(t, tenantID), nil)

	renderer := &stubRenderer{}
	svc := NewReceiptService(f.src, nil, renderer, nil)
	pdf, err := svc.RenderPDF(context.Background(), p, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7"), pdf)
	require.NotNil(t, renderer.got)
	assert.Equal(t, student.Name, renderer.got.Student.Name)

	_, err = NewReceiptService(f.src, nil, nil, nil).RenderPDF(context.Background(), p, payment.ID)
	assert.Equal(t, shared.KindInternal, shared.KindOf(err))
}
