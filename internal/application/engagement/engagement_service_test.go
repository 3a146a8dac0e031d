package engagement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/contract"
	"github.com/scg/portal/internal/domain/engagement"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type engagementFixture struct {
	engagements *MockEngagementRepository
	contracts   *MockContractRepository
	services    *MockServiceRepository
	svc         *EngagementService
	support     *SupportReportService

	customerID  uuid.UUID
	userID      uuid.UUID
	supportSvc  *catalog.Service
	scanSvc     *catalog.Service
	contract    *contract.Contract
	supportLine *contract.ContractService
}

func newCatalogService(t *testing.T, code, reportType string) *catalog.Service {
	t.Helper()
	s, err := catalog.NewService(code, code+" hours", decimal.NewFromInt(100))
	require.NoError(t, err)
	rt, err := catalog.NewReportType(reportType, "")
	require.NoError(t, err)
	s.SetReportType(rt)
	return s
}

func newEngagementFixture(t *testing.T) *engagementFixture {
	t.Helper()
	f := &engagementFixture{
		engagements: new(MockEngagementRepository),
		contracts:   new(MockContractRepository),
		services:    new(MockServiceRepository),
		customerID:  uuid.New(),
		userID:      uuid.New(),
		supportSvc:  newCatalogService(t, "SUP", "Support"),
		scanSvc:     newCatalogService(t, "VS", "Nessus"),
	}
	c, err := contract.NewContract(f.customerID, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), "C-20240101-000000",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), nil, nil, "")
	require.NoError(t, err)
	_, err = c.AddLine(f.scanSvc.ID, f.scanSvc.Name, f.scanSvc.Price, 1, nil)
	require.NoError(t, err)
	_, err = c.AddLine(f.supportSvc.ID, f.supportSvc.Name, f.supportSvc.Price, 10, nil)
	require.NoError(t, err)
	require.NoError(t, c.ChangeStatus(contract.StatusActive))
	f.contract = c
	f.supportLine = c.LineForService(f.supportSvc.ID)

	f.svc = NewEngagementService(f.engagements, f.contracts, f.services, zap.NewNop())
	f.support = NewSupportReportService(f.engagements, f.contracts)
	return f
}

func (f *engagementFixture) newEngagement(t *testing.T) *engagement.Engagement {
	t.Helper()
	e, err := engagement.NewEngagement(f.customerID, "EFF-0001", f.contract, f.supportLine.ID, catalog.ReportKindSupport,
		"Firewall review", engagement.PriorityHigh, "Review the edge firewall rules", "", f.userID)
	require.NoError(t, err)
	return e
}

func TestEngagementService_CreateOptions(t *testing.T) {
	f := newEngagementFixture(t)
	f.contracts.On("FindByStatuses", mock.Anything, f.customerID, contract.EngagementStatuses).
		Return([]contract.Contract{*f.contract}, nil)
	f.services.On("FindByIDs", mock.Anything, []uuid.UUID{f.scanSvc.ID, f.supportSvc.ID}).
		Return([]catalog.Service{*f.scanSvc, *f.supportSvc}, nil)

	opts, err := f.svc.CreateOptions(context.Background(), f.customerID)

	require.NoError(t, err)
	require.Len(t, opts, 1)
	require.Len(t, opts[0].Services, 1, "only support lines are offered")
	assert.Equal(t, f.supportLine.ID, opts[0].Services[0].ContractServiceID)
	assert.Equal(t, 10, opts[0].Services[0].ContractedHours)
}

func TestEngagementService_CreateOptionsNone(t *testing.T) {
	f := newEngagementFixture(t)
	f.contracts.On("FindByStatuses", mock.Anything, f.customerID, contract.EngagementStatuses).Return([]contract.Contract{}, nil)

	_, err := f.svc.CreateOptions(context.Background(), f.customerID)

	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.EqualError(t, err, "No active contracts found for this customer")
}

func TestEngagementService_Create(t *testing.T) {
	f := newEngagementFixture(t)
	f.contracts.On("FindLine", mock.Anything, f.supportLine.ID).Return(f.supportLine, nil)
	f.contracts.On("FindByID", mock.Anything, f.contract.ID).Return(f.contract, nil)
	f.services.On("FindByID", mock.Anything, f.supportSvc.ID).Return(f.supportSvc, nil)
	f.engagements.On("HighestNumber", mock.Anything).Return("EFF-0041", nil)
	f.engagements.On("Save", mock.Anything, mock.AnythingOfType("*engagement.Engagement")).Return(nil)

	resp, err := f.svc.Create(context.Background(), f.customerID, f.userID, CreateEngagementRequest{
		ContractServiceID: f.supportLine.ID,
		Name:              "Firewall review",
		ClientDescription: "Review the edge firewall rules",
	})

	require.NoError(t, err)
	assert.Equal(t, "EFF-0042", resp.EngagementNumber)
	assert.Equal(t, engagement.PriorityMedium, resp.Priority)
	assert.Equal(t, engagement.StatusOpen, resp.Status)
	assert.Equal(t, f.contract.ID, resp.ContractID)
	assert.Equal(t, f.userID, *resp.CreatedBy)
}

func TestEngagementService_CreateRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("first engagement is numbered 1", func(t *testing.T) {
		f := newEngagementFixture(t)
		f.contracts.On("FindLine", mock.Anything, f.supportLine.ID).Return(f.supportLine, nil)
		f.contracts.On("FindByID", mock.Anything, f.contract.ID).Return(f.contract, nil)
		f.services.On("FindByID", mock.Anything, f.supportSvc.ID).Return(f.supportSvc, nil)
		f.engagements.On("HighestNumber", mock.Anything).Return("", nil)
		f.engagements.On("Save", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.svc.Create(ctx, f.customerID, f.userID, CreateEngagementRequest{
			ContractServiceID: f.supportLine.ID, Name: "n", ClientDescription: "d",
		})
		require.NoError(t, err)
		assert.Equal(t, "EFF-0001", resp.EngagementNumber)
	})

	t.Run("inactive contract", func(t *testing.T) {
		f := newEngagementFixture(t)
		require.NoError(t, f.contract.ChangeStatus(contract.StatusTrial))
		f.contracts.On("FindLine", mock.Anything, f.supportLine.ID).Return(f.supportLine, nil)
		f.contracts.On("FindByID", mock.Anything, f.contract.ID).Return(f.contract, nil)
		f.services.On("FindByID", mock.Anything, f.supportSvc.ID).Return(f.supportSvc, nil)
		f.engagements.On("HighestNumber", mock.Anything).Return("", nil)

		_, err := f.svc.Create(ctx, f.customerID, f.userID, CreateEngagementRequest{
			ContractServiceID: f.supportLine.ID, Name: "n", ClientDescription: "d",
		})
		assert.EqualError(t, err, "Engagements can only be created for active contracts.")
	})

	t.Run("contract of another customer", func(t *testing.T) {
		f := newEngagementFixture(t)
		f.contracts.On("FindLine", mock.Anything, f.supportLine.ID).Return(f.supportLine, nil)
		f.contracts.On("FindByID", mock.Anything, f.contract.ID).Return(f.contract, nil)
		f.services.On("FindByID", mock.Anything, f.supportSvc.ID).Return(f.supportSvc, nil)
		f.engagements.On("HighestNumber", mock.Anything).Return("", nil)

		_, err := f.svc.Create(ctx, uuid.New(), f.userID, CreateEngagementRequest{
			ContractServiceID: f.supportLine.ID, Name: "n", ClientDescription: "d",
		})
		assert.EqualError(t, err, "Contract must belong to the selected customer.")
	})

	t.Run("not a support service", func(t *testing.T) {
		f := newEngagementFixture(t)
		scanLine := f.contract.LineForService(f.scanSvc.ID)
		f.contracts.On("FindLine", mock.Anything, scanLine.ID).Return(scanLine, nil)
		f.contracts.On("FindByID", mock.Anything, f.contract.ID).Return(f.contract, nil)
		f.services.On("FindByID", mock.Anything, f.scanSvc.ID).Return(f.scanSvc, nil)
		f.engagements.On("HighestNumber", mock.Anything).Return("", nil)

		_, err := f.svc.Create(ctx, f.customerID, f.userID, CreateEngagementRequest{
			ContractServiceID: scanLine.ID, Name: "n", ClientDescription: "d",
		})
		assert.EqualError(t, err, "Selected service is not a support service.")
	})
}

func TestEngagementService_List(t *testing.T) {
	f := newEngagementFixture(t)
	e := f.newEngagement(t)
	f.engagements.On("FindAllForCustomer", mock.Anything, f.customerID, shared.Filter{
		Page:     1,
		PageSize: 20,
		Filters:  map[string]interface{}{"contract_id": f.contract.ID, "status": "OPEN"},
	}).Return([]engagement.Engagement{*e}, int64(1), nil)

	items, total, err := f.svc.List(context.Background(), f.customerID, EngagementListFilter{
		ContractID: f.contract.ID.String(), Status: "OPEN",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Open", items[0].StatusLabel)
}

func TestEngagementService_Get(t *testing.T) {
	f := newEngagementFixture(t)
	e := f.newEngagement(t)
	entry, err := engagement.NewTimeEntry(e.ID, "Reviewed rules", "", decimal.RequireFromString("2.5"),
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), f.userID)
	require.NoError(t, err)

	f.engagements.On("FindByIDForCustomer", mock.Anything, f.customerID, e.ID).Return(e, nil)
	f.engagements.On("TimeEntries", mock.Anything, e.ID).Return([]engagement.TimeEntry{*entry}, nil)
	f.contracts.On("FindLine", mock.Anything, f.supportLine.ID).Return(f.supportLine, nil)
	f.engagements.On("ServiceHours", mock.Anything, f.supportLine.ID, (*uuid.UUID)(nil)).Return(decimal.RequireFromString("4"), nil)
	f.engagements.On("EngagementHours", mock.Anything, e.ID).Return(decimal.RequireFromString("2.5"), nil)

	detail, err := f.svc.Get(context.Background(), f.customerID, e.ID)

	require.NoError(t, err)
	require.Len(t, detail.TimeEntries, 1)
	assert.Equal(t, "2024-03-04", detail.TimeEntries[0].Date)
	assert.Equal(t, "10", detail.Hours.Contracted.String())
	assert.Equal(t, "6", detail.Hours.Remaining.String())
	assert.Equal(t, "40", detail.Hours.PercentageUsed.String())
	assert.Equal(t, "25", detail.Hours.EngagementPercentage.String())
}

func TestEngagementService_UpdateAndStatus(t *testing.T) {
	f := newEngagementFixture(t)
	e := f.newEngagement(t)
	f.engagements.On("FindByIDForCustomer", mock.Anything, f.customerID, e.ID).Return(e, nil)
	f.engagements.On("Save", mock.Anything, e).Return(nil)

	resp, err := f.svc.Update(context.Background(), f.customerID, e.ID, UpdateEngagementRequest{
		Name: "Firewall audit", Priority: "URGENT", ClientDescription: "Audit", Status: "IN_PROGRESS",
	})
	require.NoError(t, err)
	assert.Equal(t, "Firewall audit", resp.Name)
	assert.Equal(t, engagement.StatusInProgress, resp.Status)

	resp, err = f.svc.ChangeStatus(context.Background(), f.customerID, e.ID, ChangeStatusRequest{Status: "RESOLVED"})
	require.NoError(t, err)
	assert.Equal(t, "Resolved", resp.StatusLabel)

	_, err = f.svc.ChangeStatus(context.Background(), f.customerID, e.ID, ChangeStatusRequest{Status: "DONE"})
	assert.EqualError(t, err, "Invalid status")
}

func TestEngagementService_DeleteOtherCustomer(t *testing.T) {
	f := newEngagementFixture(t)
	id := uuid.New()
	f.engagements.On("FindByIDForCustomer", mock.Anything, f.customerID, id).Return(nil, shared.ErrNotFound)

	err := f.svc.Delete(context.Background(), f.customerID, id)

	assert.ErrorIs(t, err, shared.ErrNotFound)
	f.engagements.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestEngagementService_AddTimeEntry(t *testing.T) {
	t.Run("within contracted hours", func(t *testing.T) {
		f := newEngagementFixture(t)
		e := f.newEngagement(t)
		f.engagements.On("FindByIDForCustomer", mock.Anything, f.customerID, e.ID).Return(e, nil)
		f.contracts.On("FindLine", mock.Anything, f.supportLine.ID).Return(f.supportLine, nil)
		f.engagements.On("ServiceHours", mock.Anything, f.supportLine.ID, (*uuid.UUID)(nil)).Return(decimal.RequireFromString("8"), nil)
		f.engagements.On("SaveTimeEntry", mock.Anything, mock.AnythingOfType("*engagement.TimeEntry")).Return(nil)

		res, err := f.svc.AddTimeEntry(context.Background(), f.customerID, e.ID, f.userID, TimeEntryRequest{
			ClientComment: "Call", HoursSpent: decimal.RequireFromString("2"), Date: "2024-03-05",
		})

		require.NoError(t, err)
		assert.Empty(t, res.Warning)
		assert.Equal(t, "2024-03-05", res.Entry.Date)
		assert.Equal(t, f.userID, res.Entry.CreatedBy)
	})

	t.Run("overrun is saved with a warning", func(t *testing.T) {
		f := newEngagementFixture(t)
		e := f.newEngagement(t)
		f.engagements.On("FindByIDForCustomer", mock.Anything, f.customerID, e.ID).Return(e, nil)
		f.contracts.On("FindLine", mock.Anything, f.supportLine.ID).Return(f.supportLine, nil)
		f.engagements.On("ServiceHours", mock.Anything, f.supportLine.ID, (*uuid.UUID)(nil)).Return(decimal.RequireFromString("9.5"), nil)
		f.engagements.On("SaveTimeEntry", mock.Anything, mock.Anything).Return(nil)

		res, err := f.svc.AddTimeEntry(context.Background(), f.customerID, e.ID, f.userID, TimeEntryRequest{
			ClientComment: "Incident", HoursSpent: decimal.RequireFromString("1.5"),
		})

		require.NoError(t, err)
		assert.Equal(t, "This entry will exceed the contracted hours. Contracted: 10h, Total used: 9.50h, This entry: 1.50h", res.Warning)
		f.engagements.AssertCalled(t, "SaveTimeEntry", mock.Anything, mock.Anything)
	})

	t.Run("rejects quarter hours", func(t *testing.T) {
		f := newEngagementFixture(t)
		e := f.newEngagement(t)
		f.engagements.On("FindByIDForCustomer", mock.Anything, f.customerID, e.ID).Return(e, nil)

		_, err := f.svc.AddTimeEntry(context.Background(), f.customerID, e.ID, f.userID, TimeEntryRequest{
			ClientComment: "x", HoursSpent: decimal.RequireFromString("0.75"),
		})
		assert.EqualError(t, err, "Hours spent must be in increments of 0.5.")
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		f := newEngagementFixture(t)
		e := f.newEngagement(t)
		f.engagements.On("FindByIDForCustomer", mock.Anything, f.customerID, e.ID).Return(e, nil)

		_, err := f.svc.AddTimeEntry(context.Background(), f.customerID, e.ID, f.userID, TimeEntryRequest{
			ClientComment: "x", HoursSpent: decimal.NewFromInt(1), Date: "05/03/2024",
		})
		assert.EqualError(t, err, "Date must be YYYY-MM-DD")
	})
}

func TestEngagementService_UpdateTimeEntryExcludesItself(t *testing.T) {
	f := newEngagementFixture(t)
	e := f.newEngagement(t)
	entry, err := engagement.NewTimeEntry(e.ID, "Call", "", decimal.NewFromInt(4), time.Time{}, f.userID)
	require.NoError(t, err)

	f.engagements.On("FindTimeEntry", mock.Anything, entry.ID).Return(entry, nil)
	f.engagements.On("FindByIDForCustomer", mock.Anything, f.customerID, e.ID).Return(e, nil)
	f.contracts.On("FindLine", mock.Anything, f.supportLine.ID).Return(f.supportLine, nil)
	f.engagements.On("ServiceHours", mock.Anything, f.supportLine.ID, &entry.ID).Return(decimal.NewFromInt(6), nil)
	f.engagements.On("SaveTimeEntry", mock.Anything, entry).Return(nil)

	res, err := f.svc.UpdateTimeEntry(context.Background(), f.customerID, entry.ID, TimeEntryRequest{
		ClientComment: "Long call", HoursSpent: decimal.NewFromInt(4),
	})

	require.NoError(t, err)
	assert.Empty(t, res.Warning, "6h of other entries plus 4h fits 10h")
	assert.Equal(t, "Long call", res.Entry.ClientComment)
}

func TestEngagementService_DeleteTimeEntryScopedToCustomer(t *testing.T) {
	f := newEngagementFixture(t)
	entry, err := engagement.NewTimeEntry(uuid.New(), "Call", "", decimal.NewFromInt(1), time.Time{}, f.userID)
	require.NoError(t, err)
	other := uuid.New()
	f.engagements.On("FindTimeEntry", mock.Anything, entry.ID).Return(entry, nil)
	f.engagements.On("FindByIDForCustomer", mock.Anything, other, entry.EngagementID).Return(nil, shared.ErrNotFound)

	err = f.svc.DeleteTimeEntry(context.Background(), other, entry.ID)

	assert.True(t, errors.Is(err, shared.ErrNotFound))
	f.engagements.AssertNotCalled(t, "DeleteTimeEntry", mock.Anything, mock.Anything)
}
