package fee

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/schoolfee/backend/internal/domain/academic"
	"github.com/schoolfee/backend/internal/domain/fee"
	"github.com/schoolfee/backend/internal/domain/school"
	"github.com/schoolfee/backend/internal/domain/shared"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockStructureRepository struct {
	mock.Mock
}

func (m *MockStructureRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*fee.FeeStructure, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fee.FeeStructure), args.Error(1)
}

func (m *MockStructureRepository) FindByIDIncludeDeleted(ctx context.Context, tenantID, id uuid.UUID) (*fee.FeeStructure, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fee.FeeStructure), args.Error(1)
}

func (m *MockStructureRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter fee.StructureFilter) ([]fee.FeeStructure, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]fee.FeeStructure), args.Get(1).(int64), args.Error(2)
}

func (m *MockStructureRepository) Create(ctx context.Context, fs *fee.FeeStructure) error {
	return m.Called(ctx, fs).Error(0)
}

func (m *MockStructureRepository) SaveWithLock(ctx context.Context, fs *fee.FeeStructure) error {
	return m.Called(ctx, fs).Error(0)
}

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*fee.FeeInvoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fee.FeeInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*fee.FeeInvoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fee.FeeInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter fee.InvoiceFilter) ([]fee.FeeInvoice, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]fee.FeeInvoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) FindByStudent(ctx context.Context, tenantID, studentID uuid.UUID) ([]fee.FeeInvoice, error) {
	args := m.Called(ctx, tenantID, studentID)
	return args.Get(0).([]fee.FeeInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) CountByStructure(ctx context.Context, tenantID, structureID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, structureID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) Create(ctx context.Context, inv *fee.FeeInvoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, inv *fee.FeeInvoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvoiceRepository) UpdateStatus(ctx context.Context, inv *fee.FeeInvoice) (bool, error) {
	args := m.Called(ctx, inv)
	return args.Bool(0), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*fee.FeePayment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fee.FeePayment), args.Error(1)
}

func (m *MockPaymentRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter fee.PaymentFilter) ([]fee.FeePayment, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]fee.FeePayment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *fee.FeePayment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPaymentRepository) CountByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) SumByStudent(ctx context.Context, tenantID, studentID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, studentID)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockPaymentRepository) SumCollected(ctx context.Context, tenantID uuid.UUID, methods []fee.PaymentMethod) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, methods)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockHandoverRepository struct {
	mock.Mock
}

func (m *MockHandoverRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*fee.FeeHandover, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fee.FeeHandover), args.Error(1)
}

func (m *MockHandoverRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter fee.HandoverFilter) ([]fee.FeeHandover, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]fee.FeeHandover), args.Get(1).(int64), args.Error(2)
}

func (m *MockHandoverRepository) Create(ctx context.Context, h *fee.FeeHandover) error {
	return m.Called(ctx, h).Error(0)
}

func (m *MockHandoverRepository) SumSubmitted(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockStudentReader struct {
	mock.Mock
}

func (m *MockStudentReader) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*academic.Student, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academic.Student), args.Error(1)
}

type MockClassReader struct {
	mock.Mock
}

func (m *MockClassReader) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*academic.Class, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academic.Class), args.Error(1)
}

type MockSchoolRepository struct {
	mock.Mock
}

func (m *MockSchoolRepository) FindByID(ctx context.Context, id uuid.UUID) (*school.School, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*school.School), args.Error(1)
}

func (m *MockSchoolRepository) FindAll(ctx context.Context, filter shared.Filter) ([]school.School, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]school.School), args.Get(1).(int64), args.Error(2)
}

func (m *MockSchoolRepository) Create(ctx context.Context, s *school.School) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSchoolRepository) SaveWithLock(ctx context.Context, s *school.School) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSchoolRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status school.SubscriptionStatus) (bool, error) {
	args := m.Called(ctx, id, status)
	return args.Bool(0), args.Error(1)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) PaymentRecorded(ctx context.Context, method string, amount decimal.Decimal) {
	m.Called(ctx, method, amount)
}

func (m *MockMetrics) InvoiceStatusChanged(ctx context.Context, status string) {
	m.Called(ctx, status)
}

func (m *MockMetrics) HandoverAccepted(ctx context.Context, amount decimal.Decimal) {
	m.Called(ctx, amount)
}

func (m *MockMetrics) HandoverRejected(ctx context.Context, reason string) {
	m.Called(ctx, reason)
}

// =============================================================================
// Unit of work double
// =============================================================================

// stubUnitOfWork runs the callback against the mocks directly. It does not roll
// anything back; tests assert on which writes were attempted.
type stubUnitOfWork struct {
	students  *MockStudentReader
	invoices  *MockInvoiceRepository
	payments  *MockPaymentRepository
	handovers *MockHandoverRepository
	lockErr   error
	locked    int
}

func (u *stubUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos fee.TxRepositories) error) error {
	return fn(ctx, u)
}

func (u *stubUnitOfWork) Students() academic.StudentReader  { return u.students }
func (u *stubUnitOfWork) Invoices() fee.InvoiceRepository   { return u.invoices }
func (u *stubUnitOfWork) Payments() fee.PaymentRepository   { return u.payments }
func (u *stubUnitOfWork) Handovers() fee.HandoverRepository { return u.handovers }
func (u *stubUnitOfWork) LockTenant(context.Context, uuid.UUID) error {
	u.locked++
	return u.lockErr
}
