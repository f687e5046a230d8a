package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	feeapp "github.com/schoolfee/backend/internal/application/fee"
	schoolapp "github.com/schoolfee/backend/internal/application/school"
	"github.com/schoolfee/backend/internal/domain/fee"
	"github.com/schoolfee/backend/internal/domain/identity"
	"github.com/schoolfee/backend/internal/domain/school"
	"github.com/schoolfee/backend/internal/domain/shared"
)

type MockStructureService struct {
	mock.Mock
}

func (m *MockStructureService) Create(ctx context.Context, p identity.Principal, req feeapp.StructureRequest) (*fee.FeeStructure, error) {
	args := m.Called(ctx, p, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fee.FeeStructure), args.Error(1)
}

func (m *MockStructureService) Get(ctx context.Context, p identity.Principal, id uuid.UUID) (*fee.FeeStructure, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fee.FeeStructure), args.Error(1)
}

func (m *MockStructureService) List(ctx context.Context, p identity.Principal, filter fee.StructureFilter) (shared.Paginated[fee.FeeStructure], error) {
	args := m.Called(ctx, p, filter)
	return args.Get(0).(shared.Paginated[fee.FeeStructure]), args.Error(1)
}

func (m *MockStructureService) Update(ctx context.Context, p identity.Principal, id uuid.UUID, req feeapp.StructureRequest) (*fee.FeeStructure, error) {
	args := m.Called(ctx, p, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fee.FeeStructure), args.Error(1)
}

func (m *MockStructureService) Delete(ctx context.Context, p identity.Principal, id uuid.UUID) error {
	return m.Called(ctx, p, id).Error(0)
}

type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Create(ctx context.Context, p identity.Principal, req feeapp.CreateInvoiceRequest) (*fee.FeeInvoice, error) {
	args := m.Called(ctx, p, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fee.FeeInvoice), args.Error(1)
}

func (m *MockInvoiceService) Get(ctx context.Context, p identity.Principal, id uuid.UUID) (*fee.FeeInvoice, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fee.FeeInvoice), args.Error(1)
}

func (m *MockInvoiceService) List(ctx context.Context, p identity.Principal, filter fee.InvoiceFilter) (shared.Paginated[fee.FeeInvoice], error) {
	args := m.Called(ctx, p, filter)
	return args.Get(0).(shared.Paginated[fee.FeeInvoice]), args.Error(1)
}

func (m *MockInvoiceService) Update(ctx context.Context, p identity.Principal, id uuid.UUID, req feeapp.UpdateInvoiceRequest) (*fee.FeeInvoice, error) {
	args := m.Called(ctx, p, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fee.FeeInvoice), args.Error(1)
}

func (m *MockInvoiceService) Delete(ctx context.Context, p identity.Principal, id uuid.UUID) error {
	return m.Called(ctx, p, id).Error(0)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) Create(ctx context.Context, p identity.Principal, req feeapp.RecordPaymentRequest) (*fee.FeePayment, error) {
	args := m.Called(ctx, p, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fee.FeePayment), args.Error(1)
}

func (m *MockPaymentService) Get(ctx context.Context, p identity.Principal, id uuid.UUID) (*fee.FeePayment, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fee.FeePayment), args.Error(1)
}

func (m *MockPaymentService) List(ctx context.Context, p identity.Principal, filter fee.PaymentFilter) (shared.Paginated[fee.FeePayment], error) {
	args := m.Called(ctx, p, filter)
	return args.Get(0).(shared.Paginated[fee.FeePayment]), args.Error(1)
}

func (m *MockPaymentService) StudentSummary(ctx context.Context, p identity.Principal, studentID uuid.UUID) (*fee.StudentFeeSummary, error) {
	args := m.Called(ctx, p, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fee.StudentFeeSummary), args.Error(1)
}

type MockReceiptProvider struct {
	mock.Mock
}

func (m *MockReceiptProvider) Payload(ctx context.Context, p identity.Principal, paymentID uuid.UUID) (*fee.ReceiptPayload, error) {
	args := m.Called(ctx, p, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fee.ReceiptPayload), args.Error(1)
}

func (m *MockReceiptProvider) RenderPDF(ctx context.Context, p identity.Principal, paymentID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, p, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockHandoverService struct {
	mock.Mock
}

func (m *MockHandoverService) Summary(ctx context.Context, p identity.Principal) (fee.CashPosition, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(fee.CashPosition), args.Error(1)
}

func (m *MockHandoverService) Create(ctx context.Context, p identity.Principal, req feeapp.SubmitHandoverRequest) (*fee.FeeHandover, error) {
	args := m.Called(ctx, p, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fee.FeeHandover), args.Error(1)
}

func (m *MockHandoverService) List(ctx context.Context, p identity.Principal, filter fee.HandoverFilter) (shared.Paginated[fee.FeeHandover], error) {
	args := m.Called(ctx, p, filter)
	return args.Get(0).(shared.Paginated[fee.FeeHandover]), args.Error(1)
}

func (m *MockHandoverService) Get(ctx context.Context, p identity.Principal, id uuid.UUID) (*fee.FeeHandover, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fee.FeeHandover), args.Error(1)
}

type MockSchoolService struct {
	mock.Mock
}

func (m *MockSchoolService) view(args mock.Arguments) (*schoolapp.SchoolView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schoolapp.SchoolView), args.Error(1)
}

func (m *MockSchoolService) Get(ctx context.Context, p identity.Principal) (*schoolapp.SchoolView, error) {
	return m.view(m.Called(ctx, p))
}

func (m *MockSchoolService) GetByID(ctx context.Context, p identity.Principal, id uuid.UUID) (*schoolapp.SchoolView, error) {
	return m.view(m.Called(ctx, p, id))
}

func (m *MockSchoolService) List(ctx context.Context, p identity.Principal, filter shared.Filter) (shared.Paginated[schoolapp.SchoolView], error) {
	args := m.Called(ctx, p, filter)
	return args.Get(0).(shared.Paginated[schoolapp.SchoolView]), args.Error(1)
}

func (m *MockSchoolService) Create(ctx context.Context, p identity.Principal, req schoolapp.CreateSchoolRequest) (*schoolapp.SchoolView, error) {
	return m.view(m.Called(ctx, p, req))
}

func (m *MockSchoolService) UpdateProfile(ctx context.Context, p identity.Principal, profile school.Profile) (*schoolapp.SchoolView, error) {
	return m.view(m.Called(ctx, p, profile))
}

func (m *MockSchoolService) UpdateSubscription(ctx context.Context, p identity.Principal, id uuid.UUID, amount decimal.Decimal, start time.Time) (*schoolapp.SchoolView, error) {
	return m.view(m.Called(ctx, p, id, amount, start))
}

func (m *MockSchoolService) Renew(ctx context.Context, p identity.Principal, id uuid.UUID) (*schoolapp.SchoolView, error) {
	return m.view(m.Called(ctx, p, id))
}

type MockLogoUploader struct {
	mock.Mock
}

func (m *MockLogoUploader) UploadLogo(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}
