package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

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

type MockReportTypeRepository struct {
	mock.Mock
}

func (m *MockReportTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ReportType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ReportType), args.Error(1)
}

func (m *MockReportTypeRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.ReportType, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.ReportType), args.Error(1)
}

func (m *MockReportTypeRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportTypeRepository) Save(ctx context.Context, rt *catalog.ReportType) error {
	return m.Called(ctx, rt).Error(0)
}

func (m *MockReportTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockReportTypeRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}
