package contract

import (
	"context"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/billing"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/contract"
	"github.com/scg/portal/internal/domain/customer"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindByIDForCustomer(ctx context.Context, customerID, id uuid.UUID) (*contract.Contract, error) {
	args := m.Called(ctx, customerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindAllForCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]contract.Contract, error) {
	args := m.Called(ctx, customerID, filter)
	return args.Get(0).([]contract.Contract), args.Error(1)
}

func (m *MockContractRepository) CountForCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, customerID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContractRepository) FindByStatuses(ctx context.Context, customerID uuid.UUID, statuses []contract.Status) ([]contract.Contract, error) {
	args := m.Called(ctx, customerID, statuses)
	return args.Get(0).([]contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindByService(ctx context.Context, customerID, serviceID uuid.UUID) ([]contract.Contract, error) {
	args := m.Called(ctx, customerID, serviceID)
	return args.Get(0).([]contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindIDsWithService(ctx context.Context, serviceID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, serviceID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockContractRepository) FindLine(ctx context.Context, lineID uuid.UUID) (*contract.ContractService, error) {
	args := m.Called(ctx, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.ContractService), args.Error(1)
}

func (m *MockContractRepository) Save(ctx context.Context, c *contract.Contract) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockContractRepository) SaveTotals(ctx context.Context, c *contract.Contract) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockContractRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	args := m.Called(ctx, number)
	return args.Bool(0), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByContract(ctx context.Context, contractID uuid.UUID) ([]billing.Payment, error) {
	args := m.Called(ctx, contractID)
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SumByContract(ctx context.Context, contractID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, contractID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, p *billing.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPaymentRepository) ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	args := m.Called(ctx, invoiceNumber)
	return args.Bool(0), args.Error(1)
}

type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Service), args.Error(1)
}

func (m *MockServiceRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Service, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Service), args.Error(1)
}

func (m *MockServiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Service, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Service), args.Error(1)
}

func (m *MockServiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockServiceRepository) Save(ctx context.Context, s *catalog.Service) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockServiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockServiceRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]customer.Customer, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]customer.Customer, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCustomerRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}
