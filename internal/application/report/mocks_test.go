package report

import (
	"context"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/contract"
	"github.com/scg/portal/internal/domain/report"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/scg/portal/internal/domain/signature"
	"github.com/stretchr/testify/mock"
)

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) FindByIDForService(ctx context.Context, customerID, serviceID, id uuid.UUID) (*report.Report, error) {
	args := m.Called(ctx, customerID, serviceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Report), args.Error(1)
}

func (m *MockReportRepository) FindByService(ctx context.Context, customerID, serviceID uuid.UUID, filter shared.Filter) ([]report.Report, int64, error) {
	args := m.Called(ctx, customerID, serviceID, filter)
	return args.Get(0).([]report.Report), args.Get(1).(int64), args.Error(2)
}

func (m *MockReportRepository) CountByServices(ctx context.Context, customerID uuid.UUID, serviceIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	args := m.Called(ctx, customerID, serviceIDs)
	return args.Get(0).(map[uuid.UUID]int64), args.Error(1)
}

func (m *MockReportRepository) CreateNessus(ctx context.Context, r *report.Report, findings []report.NessusFinding) error {
	return m.Called(ctx, r, findings).Error(0)
}

func (m *MockReportRepository) CreateBurp(ctx context.Context, r *report.Report, findings []report.BurpFinding) error {
	return m.Called(ctx, r, findings).Error(0)
}

func (m *MockReportRepository) UpdateSourceKey(ctx context.Context, id uuid.UUID, key string) error {
	return m.Called(ctx, id, key).Error(0)
}

func (m *MockReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockReportRepository) NessusFindings(ctx context.Context, reportID uuid.UUID) ([]report.NessusFinding, error) {
	args := m.Called(ctx, reportID)
	return args.Get(0).([]report.NessusFinding), args.Error(1)
}

func (m *MockReportRepository) BurpFindings(ctx context.Context, reportID uuid.UUID) ([]report.BurpFinding, error) {
	args := m.Called(ctx, reportID)
	return args.Get(0).([]report.BurpFinding), args.Error(1)
}

func (m *MockReportRepository) StatusCounts(ctx context.Context, r *report.Report) (map[report.FindingStatus]int64, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(map[report.FindingStatus]int64), args.Error(1)
}

func (m *MockReportRepository) SelectNessusFindings(ctx context.Context, reportID uuid.UUID, sel report.BulkSelection) ([]report.NessusFinding, error) {
	args := m.Called(ctx, reportID, sel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.NessusFinding), args.Error(1)
}

func (m *MockReportRepository) SelectBurpFindings(ctx context.Context, reportID uuid.UUID, sel report.BulkSelection) ([]report.BurpFinding, error) {
	args := m.Called(ctx, reportID, sel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.BurpFinding), args.Error(1)
}

func (m *MockReportRepository) SaveNessusStatuses(ctx context.Context, findings []report.NessusFinding) error {
	return m.Called(ctx, findings).Error(0)
}

func (m *MockReportRepository) SaveBurpStatuses(ctx context.Context, findings []report.BurpFinding) error {
	return m.Called(ctx, findings).Error(0)
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

type MockNessusSignatureRepository struct {
	mock.Mock
}

func (m *MockNessusSignatureRepository) FindByID(ctx context.Context, id int) (*signature.NessusSignature, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*signature.NessusSignature), args.Error(1)
}

func (m *MockNessusSignatureRepository) FindByIDs(ctx context.Context, ids []int) (map[int]*signature.NessusSignature, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[int]*signature.NessusSignature), args.Error(1)
}

func (m *MockNessusSignatureRepository) FindAll(ctx context.Context, filter shared.Filter) ([]signature.NessusSignature, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]signature.NessusSignature), args.Error(1)
}

func (m *MockNessusSignatureRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNessusSignatureRepository) Create(ctx context.Context, sig *signature.NessusSignature) error {
	return m.Called(ctx, sig).Error(0)
}

func (m *MockNessusSignatureRepository) Update(ctx context.Context, sig *signature.NessusSignature) error {
	return m.Called(ctx, sig).Error(0)
}

func (m *MockNessusSignatureRepository) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockNessusSignatureRepository) Upsert(ctx context.Context, sigs []signature.NessusSignature) (int, int, error) {
	args := m.Called(ctx, sigs)
	return args.Int(0), args.Int(1), args.Error(2)
}

type MockBurpSignatureRepository struct {
	mock.Mock
}

func (m *MockBurpSignatureRepository) FindByID(ctx context.Context, id int) (*signature.BurpSuiteSignature, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*signature.BurpSuiteSignature), args.Error(1)
}

func (m *MockBurpSignatureRepository) FindByIDs(ctx context.Context, ids []int) (map[int]*signature.BurpSuiteSignature, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[int]*signature.BurpSuiteSignature), args.Error(1)
}

func (m *MockBurpSignatureRepository) FindAll(ctx context.Context, filter shared.Filter) ([]signature.BurpSuiteSignature, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]signature.BurpSuiteSignature), args.Error(1)
}

func (m *MockBurpSignatureRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBurpSignatureRepository) Create(ctx context.Context, sig *signature.BurpSuiteSignature) error {
	return m.Called(ctx, sig).Error(0)
}

func (m *MockBurpSignatureRepository) Update(ctx context.Context, sig *signature.BurpSuiteSignature) error {
	return m.Called(ctx, sig).Error(0)
}

func (m *MockBurpSignatureRepository) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBurpSignatureRepository) Upsert(ctx context.Context, sigs []signature.BurpSuiteSignature) (int, int, error) {
	args := m.Called(ctx, sigs)
	return args.Int(0), args.Int(1), args.Error(2)
}

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) EmailsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[uuid.UUID]string), args.Error(1)
}

type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	return m.Called(ctx, key, data, contentType).Error(0)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type MockReportPrinter struct {
	mock.Mock
}

func (m *MockReportPrinter) PrintReport(ctx context.Context, doc *ReportDocument) ([]byte, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}
