package engagement

import (
	"context"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/contract"
	"github.com/scg/portal/internal/domain/engagement"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockEngagementRepository struct {
	mock.Mock
}

func (m *MockEngagementRepository) HighestNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockEngagementRepository) FindByIDForCustomer(ctx context.Context, customerID, id uuid.UUID) (*engagement.Engagement, error) {
	args := m.Called(ctx, customerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engagement.Engagement), args.Error(1)
}

func (m *MockEngagementRepository) FindAllForCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]engagement.Engagement, int64, error) {
	args := m.Called(ctx, customerID, filter)
	return args.Get(0).([]engagement.Engagement), args.Get(1).(int64), args.Error(2)
}

func (m *MockEngagementRepository) FindByContractService(ctx context.Context, contractServiceID uuid.UUID, sort engagement.SupportSort) ([]engagement.EngagementWithHours, error) {
	args := m.Called(ctx, contractServiceID, sort)
	return args.Get(0).([]engagement.EngagementWithHours), args.Error(1)
}

func (m *MockEngagementRepository) Save(ctx context.Context, e *engagement.Engagement) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockEngagementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockEngagementRepository) ServiceHours(ctx context.Context, contractServiceID uuid.UUID, excludeEntryID *uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, contractServiceID, excludeEntryID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockEngagementRepository) EngagementHours(ctx context.Context, engagementID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, engagementID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockEngagementRepository) CountByContractService(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[uuid.UUID]int64), args.Error(1)
}

func (m *MockEngagementRepository) HoursByContractService(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[uuid.UUID]decimal.Decimal), args.Error(1)
}

func (m *MockEngagementRepository) StatusCounts(ctx context.Context, contractServiceID uuid.UUID) (map[engagement.Status]int64, error) {
	args := m.Called(ctx, contractServiceID)
	return args.Get(0).(map[engagement.Status]int64), args.Error(1)
}

func (m *MockEngagementRepository) DailyHours(ctx context.Context, contractServiceID uuid.UUID) ([]engagement.DailyHours, error) {
	args := m.Called(ctx, contractServiceID)
	return args.Get(0).([]engagement.DailyHours), args.Error(1)
}

func (m *MockEngagementRepository) TimeEntries(ctx context.Context, engagementID uuid.UUID) ([]engagement.TimeEntry, error) {
	args := m.Called(ctx, engagementID)
	return args.Get(0).([]engagement.TimeEntry), args.Error(1)
}

func (m *MockEngagementRepository) FindTimeEntry(ctx context.Context, id uuid.UUID) (*engagement.TimeEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engagement.TimeEntry), args.Error(1)
}

func (m *MockEngagementRepository) SaveTimeEntry(ctx context.Context, entry *engagement.TimeEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockEngagementRepository) DeleteTimeEntry(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

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
