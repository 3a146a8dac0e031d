package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/contract"
	"github.com/scg/portal/internal/domain/report"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/scg/portal/internal/domain/signature"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type reportFixture struct {
	reports   *MockReportRepository
	contracts *MockContractRepository
	services  *MockServiceRepository
	nessus    *MockNessusSignatureRepository
	burp      *MockBurpSignatureRepository
	users     *MockUserDirectory
	storage   *MockObjectStorage
	printer   *MockReportPrinter
	publisher *MockEventPublisher
	svc       *ReportService

	customerID uuid.UUID
	userID     uuid.UUID
	nessusSvc  *catalog.Service
	burpSvc    *catalog.Service
	supportSvc *catalog.Service
	contract   *contract.Contract
	now        time.Time
}

func newService(t *testing.T, code, reportType string) *catalog.Service {
	t.Helper()
	s, err := catalog.NewService(code, code+" service", decimal.NewFromInt(1000))
	require.NoError(t, err)
	if reportType != "" {
		rt, err := catalog.NewReportType(reportType, "")
		require.NoError(t, err)
		s.SetReportType(rt)
	}
	s.ClearDomainEvents()
	return s
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	f := &reportFixture{
		reports:    new(MockReportRepository),
		contracts:  new(MockContractRepository),
		services:   new(MockServiceRepository),
		nessus:     new(MockNessusSignatureRepository),
		burp:       new(MockBurpSignatureRepository),
		users:      new(MockUserDirectory),
		storage:    new(MockObjectStorage),
		printer:    new(MockReportPrinter),
		publisher:  new(MockEventPublisher),
		customerID: uuid.New(),
		userID:     uuid.New(),
		nessusSvc:  newService(t, "VS", "Nessus"),
		burpSvc:    newService(t, "WAS", "BurpSuite"),
		supportSvc: newService(t, "SUP", "Support"),
		now:        time.Date(2024, 5, 6, 14, 30, 0, 0, time.UTC),
	}

	c, err := contract.NewContract(f.customerID, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), "C-20240101-000000",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), nil, nil, "")
	require.NoError(t, err)
	_, err = c.AddLine(f.nessusSvc.ID, f.nessusSvc.Name, f.nessusSvc.Price, 1, nil)
	require.NoError(t, err)
	_, err = c.AddLine(f.burpSvc.ID, f.burpSvc.Name, f.burpSvc.Price, 1, nil)
	require.NoError(t, err)
	require.NoError(t, c.ChangeStatus(contract.StatusActive))
	c.ClearDomainEvents()
	f.contract = c

	for _, s := range []*catalog.Service{f.nessusSvc, f.burpSvc, f.supportSvc} {
		f.services.On("FindByID", mock.Anything, s.ID).Return(s, nil).Maybe()
	}
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	f.svc = NewReportService(f.reports, f.contracts, f.services, f.nessus, f.burp, f.users, f.publisher, zap.NewNop(),
		WithStorage(f.storage), WithPrinter(f.printer))
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *reportFixture) nessusReport(t *testing.T) *report.Report {
	t.Helper()
	r, err := report.NewReport(f.customerID, &f.contract.ID, f.nessusSvc.ID, "Q2 scan",
		time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC), catalog.ReportKindNessus, []string{"10.0.0.0/24"})
	require.NoError(t, err)
	return r
}

func (f *reportFixture) burpReport(t *testing.T) *report.Report {
	t.Helper()
	r, err := report.NewReport(f.customerID, &f.contract.ID, f.burpSvc.ID, "Portal test",
		time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC), catalog.ReportKindBurpSuite, nil)
	require.NoError(t, err)
	return r
}

func publishedEventTypes(p *MockEventPublisher) []string {
	var types []string
	for _, call := range p.Calls {
		for _, e := range call.Arguments.Get(1).([]shared.DomainEvent) {
			types = append(types, e.EventType())
		}
	}
	return types
}

func TestReportService_Dispatch(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	_, kind, err := f.svc.Dispatch(ctx, f.nessusSvc.ID, ViewUpload)
	require.NoError(t, err)
	assert.Equal(t, catalog.ReportKindNessus, kind)

	_, kind, err = f.svc.Dispatch(ctx, f.supportSvc.ID, ViewList)
	require.NoError(t, err)
	assert.Equal(t, catalog.ReportKindSupport, kind)

	_, _, err = f.svc.Dispatch(ctx, f.supportSvc.ID, ViewUpload)
	require.Error(t, err)
	assert.Equal(t, "Unsupported report type or view type: Support - upload", err.(*shared.DomainError).Message)

	plain := newService(t, "PT", "")
	f.services.On("FindByID", mock.Anything, plain.ID).Return(plain, nil)
	_, _, err = f.svc.Dispatch(ctx, plain.ID, ViewList)
	assert.EqualError(t, err, "Unsupported report type or view type: None - list")
}

func TestReportService_List(t *testing.T) {
	f := newReportFixture(t)
	r := f.nessusReport(t)
	f.reports.On("FindByService", mock.Anything, f.customerID, f.nessusSvc.ID, shared.Filter{
		Page: 1, PageSize: DefaultPageSize, OrderBy: "date", OrderDir: "desc",
	}).Return([]report.Report{*r}, int64(1), nil)

	items, total, err := f.svc.List(context.Background(), f.customerID, f.nessusSvc.ID, ReportListFilter{})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "2024-04-30", items[0].Date)
	assert.Equal(t, []string{"10.0.0.0/24"}, items[0].Inventory)
}

func TestReportService_UploadNessus(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	data := []byte(`{
		"date": "2024-04-30",
		"inventory": ["10.0.0.1", "10.0.0.2"],
		"alert_report": [
			{"plugin_id": 19506, "target_affected": "10.0.0.1", "os": "Linux"},
			{"plugin_id": 19506, "target_affected": "10.0.0.2", "os": ""},
			{"plugin_id": 99999, "target_affected": "10.0.0.1", "os": "Linux"},
			{"plugin_id": 99999, "target_affected": "10.0.0.2", "os": "Linux"}
		]
	}`)

	f.contracts.On("FindByIDForCustomer", mock.Anything, f.customerID, f.contract.ID).Return(f.contract, nil)
	f.nessus.On("FindByIDs", mock.Anything, []int{19506, 99999}).
		Return(map[int]*signature.NessusSignature{19506: {ID: 19506, Name: "Scan Info", RiskFactor: signature.RiskInformational}}, nil)

	var stored []report.NessusFinding
	f.reports.On("CreateNessus", mock.Anything, mock.AnythingOfType("*report.Report"), mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(2).([]report.NessusFinding) }).
		Return(nil)
	f.storage.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
		return len(key) > 0 && key[len(key)-len("/scan.json"):] == "/scan.json"
	}), data, "application/json").Return(nil)
	f.reports.On("UpdateSourceKey", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.Upload(ctx, f.customerID, f.nessusSvc.ID, UploadInput{
		ContractID: f.contract.ID, Name: "Q2 scan", Filename: "scan.json", Data: data, UploadedBy: f.userID,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, resp.FindingCount)
	assert.Equal(t, []string{"Signature with ID 99999 not found.", "Signature with ID 99999 not found."}, resp.Warnings,
		"one warning per skipped alert")
	assert.True(t, resp.Report.Archived)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, resp.Report.Inventory)
	require.Len(t, stored, 2)
	assert.Equal(t, "N/A", stored[1].OperatingSystem)
	assert.Equal(t, report.StatusNotStarted, stored[0].Status)
	assert.Equal(t, []string{report.EventTypeReportUploaded}, publishedEventTypes(f.publisher))
}

func TestReportService_UploadBurpCreatesUnknownSignatures(t *testing.T) {
	f := newReportFixture(t)
	data := []byte(`{
		"exportTime": "2024-04-30",
		"issues": [
			{"type": "5245344", "name": "Frameable response", "host": "https://app.example.com",
			 "instances": [{"path": "/", "location": "/", "severity": "Information", "confidence": "Firm", "issueDetail": null, "requests": ["GET /"]}]},
			{"type": 2097920, "name": "Cross-site scripting (reflected)", "host": "https://app.example.com",
			 "instances": [
				{"path": "/search", "location": "q", "severity": "High", "confidence": "Certain", "issueDetail": "payload echoed"},
				{"path": "/find", "location": "term", "severity": "High", "confidence": "Firm"}
			 ]}
		]
	}`)

	f.contracts.On("FindByIDForCustomer", mock.Anything, f.customerID, f.contract.ID).Return(f.contract, nil)
	f.burp.On("FindByIDs", mock.Anything, []int{5245344, 2097920}).
		Return(map[int]*signature.BurpSuiteSignature{2097920: {ID: 2097920, Name: "Cross-site scripting (reflected)"}}, nil)
	f.burp.On("Create", mock.Anything, mock.MatchedBy(func(s *signature.BurpSuiteSignature) bool {
		return s.ID == 5245344 && s.Name == "Frameable response"
	})).Return(nil).Once()

	var stored []report.BurpFinding
	f.reports.On("CreateBurp", mock.Anything, mock.AnythingOfType("*report.Report"), mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(2).([]report.BurpFinding) }).
		Return(nil)
	f.storage.On("Upload", mock.Anything, mock.Anything, data, "application/json").Return(errors.New("bucket offline"))

	resp, err := f.svc.Upload(context.Background(), f.customerID, f.burpSvc.ID, UploadInput{
		ContractID: f.contract.ID, Name: "Portal test", Filename: "burp.json", Data: data,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, resp.FindingCount)
	assert.Empty(t, resp.Warnings)
	assert.False(t, resp.Report.Archived, "archive failure does not fail the upload")
	require.Len(t, stored, 3)
	assert.Equal(t, "N/A", stored[0].IssueDetail)
	assert.Equal(t, []string{}, stored[2].Requests)
	f.burp.AssertExpectations(t)
	f.reports.AssertNotCalled(t, "UpdateSourceKey", mock.Anything, mock.Anything, mock.Anything)
}

// stagingScope hands out transaction-bound mocks and records whether fn failed
type stagingScope struct {
	reports    *MockReportRepository
	burp       *MockBurpSignatureRepository
	rolledBack bool
}

func (s *stagingScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	err := fn(NewNoOpTransactionScope(s.reports, s.burp))
	s.rolledBack = err != nil
	return err
}

func TestReportService_UploadBurpSignaturesShareTransaction(t *testing.T) {
	f := newReportFixture(t)
	tx := &stagingScope{reports: new(MockReportRepository), burp: new(MockBurpSignatureRepository)}
	svc := NewReportService(f.reports, f.contracts, f.services, f.nessus, f.burp, f.users, f.publisher, zap.NewNop(),
		WithStorage(f.storage), WithTransactionScope(tx))
	data := []byte(`{
		"exportTime": "2024-04-30",
		"issues": [
			{"type": "5245344", "name": "Frameable response", "host": "https://app.example.com",
			 "instances": [{"path": "/", "location": "/", "severity": "Information", "confidence": "Firm"}]}
		]
	}`)

	f.contracts.On("FindByIDForCustomer", mock.Anything, f.customerID, f.contract.ID).Return(f.contract, nil)
	tx.burp.On("FindByIDs", mock.Anything, []int{5245344}).Return(map[int]*signature.BurpSuiteSignature{}, nil)
	tx.burp.On("Create", mock.Anything, mock.AnythingOfType("*signature.BurpSuiteSignature")).Return(nil).Once()
	tx.reports.On("CreateBurp", mock.Anything, mock.AnythingOfType("*report.Report"), mock.Anything).
		Return(errors.New("insert failed"))

	_, err := svc.Upload(context.Background(), f.customerID, f.burpSvc.ID, UploadInput{
		ContractID: f.contract.ID, Name: "Portal test", Filename: "burp.json", Data: data,
	})

	require.Error(t, err)
	assert.True(t, tx.rolledBack, "signature creation and report insert fail together")
	tx.burp.AssertExpectations(t)
	f.burp.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.reports.AssertNotCalled(t, "CreateBurp", mock.Anything, mock.Anything, mock.Anything)
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReportService_UploadRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("contract of another customer", func(t *testing.T) {
		f := newReportFixture(t)
		f.contracts.On("FindByIDForCustomer", mock.Anything, f.customerID, f.contract.ID).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Upload(ctx, f.customerID, f.nessusSvc.ID, UploadInput{ContractID: f.contract.ID, Name: "x", Data: []byte(`{}`)})
		assert.ErrorIs(t, err, ErrContractNotForCustomer)
	})

	t.Run("completed contract", func(t *testing.T) {
		f := newReportFixture(t)
		require.NoError(t, f.contract.ChangeStatus(contract.StatusCompleted))
		f.contracts.On("FindByIDForCustomer", mock.Anything, f.customerID, f.contract.ID).Return(f.contract, nil)

		_, err := f.svc.Upload(ctx, f.customerID, f.nessusSvc.ID, UploadInput{ContractID: f.contract.ID, Name: "x", Data: []byte(`{}`)})
		assert.ErrorIs(t, err, ErrContractNotUploadable)
	})

	t.Run("service not on contract", func(t *testing.T) {
		f := newReportFixture(t)
		other := newService(t, "VS2", "Nessus")
		f.services.On("FindByID", mock.Anything, other.ID).Return(other, nil)
		f.contracts.On("FindByIDForCustomer", mock.Anything, f.customerID, f.contract.ID).Return(f.contract, nil)

		_, err := f.svc.Upload(ctx, f.customerID, other.ID, UploadInput{ContractID: f.contract.ID, Name: "x", Data: []byte(`{}`)})
		assert.ErrorIs(t, err, ErrServiceNotInContract)
	})

	t.Run("invalid json", func(t *testing.T) {
		f := newReportFixture(t)
		f.contracts.On("FindByIDForCustomer", mock.Anything, f.customerID, f.contract.ID).Return(f.contract, nil)

		_, err := f.svc.Upload(ctx, f.customerID, f.nessusSvc.ID, UploadInput{ContractID: f.contract.ID, Name: "x", Data: []byte(`{not json`)})
		assert.ErrorIs(t, err, report.ErrInvalidJSON)
	})

	t.Run("burp instance missing fields", func(t *testing.T) {
		f := newReportFixture(t)
		f.contracts.On("FindByIDForCustomer", mock.Anything, f.customerID, f.contract.ID).Return(f.contract, nil)
		data := []byte(`{"exportTime":"2024-04-30","issues":[{"type":"1","name":"n","host":"h","instances":[{"path":"/","location":null}]}]}`)

		_, err := f.svc.Upload(ctx, f.customerID, f.burpSvc.ID, UploadInput{ContractID: f.contract.ID, Name: "x", Data: data})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Required fields location, severity, confidence are missing or null in the JSON data")
		f.reports.AssertNotCalled(t, "CreateBurp", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestReportService_GetNessus(t *testing.T) {
	f := newReportFixture(t)
	r := f.nessusReport(t)
	changedAt := time.Date(2024, 5, 1, 15, 4, 5, 0, time.UTC)

	high := report.NewNessusFinding(r.ID, 1, "10.0.0.1", "Linux")
	info := report.NewNessusFinding(r.ID, 2, "10.0.0.1", "Linux")
	high2 := report.NewNessusFinding(r.ID, 1, "10.0.0.2", "Windows")
	high2.Apply(report.StatusFixed, f.userID, changedAt)

	f.reports.On("FindByIDForService", mock.Anything, f.customerID, f.nessusSvc.ID, r.ID).Return(r, nil)
	f.reports.On("StatusCounts", mock.Anything, r).Return(map[report.FindingStatus]int64{
		report.StatusNotStarted: 2, report.StatusFixed: 1,
	}, nil)
	f.reports.On("NessusFindings", mock.Anything, r.ID).Return([]report.NessusFinding{info, high, high2}, nil)
	f.nessus.On("FindByIDs", mock.Anything, []int{2, 1}).Return(map[int]*signature.NessusSignature{
		1: {ID: 1, Name: "OpenSSL", RiskFactor: signature.RiskHigh, CVE: `["CVE-2024-0001"]`},
		2: {ID: 2, Name: "Host info", RiskFactor: signature.RiskInformational},
	}, nil)
	f.users.On("EmailsByIDs", mock.Anything, []uuid.UUID{f.userID}).Return(map[uuid.UUID]string{f.userID: "analyst@scg.example"}, nil)

	detail, err := f.svc.Get(context.Background(), f.customerID, f.nessusSvc.ID, r.ID)

	require.NoError(t, err)
	require.Len(t, detail.RiskGroups, 2)
	assert.Equal(t, signature.RiskHigh, detail.RiskGroups[0].RiskFactor)
	assert.Equal(t, 2, detail.RiskGroups[0].Count)
	vuln := detail.RiskGroups[0].Vulnerabilities[0]
	assert.Equal(t, []string{"CVE-2024-0001"}, vuln.CVE)
	require.Len(t, vuln.Targets, 2)
	assert.Equal(t, "N/A", vuln.Targets[0].ChangedBy)
	assert.Equal(t, "analyst@scg.example", vuln.Targets[1].ChangedBy)
	assert.Equal(t, "May 01, 2024, 03:04:05 PM", vuln.Targets[1].ChangedAt)
	assert.Equal(t, "Fixed", vuln.Targets[1].StatusLabel)
	assert.Equal(t, report.StatusCount{Label: "Not Started", Count: 2}, detail.StatusSummary[report.StatusNotStarted])
	assert.Nil(t, detail.Issues)
}

func TestReportService_StatusSummaryAndCounts(t *testing.T) {
	f := newReportFixture(t)
	r := f.burpReport(t)
	f.reports.On("FindByIDForService", mock.Anything, f.customerID, f.burpSvc.ID, r.ID).Return(r, nil)
	f.reports.On("StatusCounts", mock.Anything, r).Return(map[report.FindingStatus]int64{
		report.StatusInReview: 3, report.StatusMitigated: 0,
	}, nil)

	summary, err := f.svc.StatusSummary(context.Background(), f.customerID, f.burpSvc.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, map[report.FindingStatus]report.StatusCount{
		report.StatusInReview: {Label: "In Review", Count: 3},
	}, summary)

	counts, err := f.svc.StatusCounts(context.Background(), f.customerID, f.burpSvc.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, map[report.FindingStatus]int64{report.StatusInReview: 3}, counts)
}

func TestReportService_BulkUpdateStatusNessus(t *testing.T) {
	f := newReportFixture(t)
	r := f.nessusReport(t)
	a := report.NewNessusFinding(r.ID, 1, "10.0.0.1", "Linux")
	b := report.NewNessusFinding(r.ID, 1, "10.0.0.2", "Linux")
	b.Status = report.StatusFixed

	sel := report.BulkSelection{Type: report.BulkVulnerability, FindingID: a.ID}
	f.reports.On("FindByIDForService", mock.Anything, f.customerID, f.nessusSvc.ID, r.ID).Return(r, nil)
	f.reports.On("SelectNessusFindings", mock.Anything, r.ID, sel).Return([]report.NessusFinding{a, b}, nil)
	f.reports.On("SaveNessusStatuses", mock.Anything, mock.MatchedBy(func(fs []report.NessusFinding) bool {
		return len(fs) == 1 && fs[0].ID == a.ID && fs[0].Status == report.StatusFixed && *fs[0].ChangedBy == f.userID
	})).Return(nil)
	f.users.On("EmailsByIDs", mock.Anything, []uuid.UUID{f.userID}).Return(map[uuid.UUID]string{f.userID: "analyst@scg.example"}, nil)

	resp, err := f.svc.BulkUpdateStatus(context.Background(), f.customerID, f.nessusSvc.ID, r.ID, f.userID, BulkStatusRequest{
		FindingID: a.ID.String(), Status: "fixed", BulkType: "vulnerability",
	})

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, report.StatusFixed, resp.NewStatus)
	assert.Equal(t, 1, resp.UpdatedCount)
	assert.Equal(t, report.UpdatedFinding{
		ID: a.ID, TargetAffected: "10.0.0.1", Status: report.StatusFixed,
		ChangedBy: "analyst@scg.example", ChangedAt: "May 06, 2024, 02:30:00 PM",
	}, resp.UpdatedFindings[0])
	assert.Equal(t, []string{report.EventTypeFindingStatusChanged}, publishedEventTypes(f.publisher))
}

func TestReportService_BulkUpdateStatusBurpNoChange(t *testing.T) {
	f := newReportFixture(t)
	r := f.burpReport(t)
	fnd := report.NewBurpFinding(r.ID, 7, "h", report.BurpInstance{})
	fnd.Status = report.StatusMonitoring

	sel := report.BulkSelection{Type: report.BulkSeverity, Severity: "High"}
	f.reports.On("FindByIDForService", mock.Anything, f.customerID, f.burpSvc.ID, r.ID).Return(r, nil)
	f.reports.On("SelectBurpFindings", mock.Anything, r.ID, sel).Return([]report.BurpFinding{fnd}, nil)

	resp, err := f.svc.BulkUpdateStatus(context.Background(), f.customerID, f.burpSvc.ID, r.ID, f.userID, BulkStatusRequest{
		Status: "monitoring", BulkType: "severity", Severity: "High",
	})

	require.NoError(t, err)
	assert.Equal(t, 0, resp.UpdatedCount)
	assert.Equal(t, []report.UpdatedFinding{}, resp.UpdatedFindings)
	f.reports.AssertNotCalled(t, "SaveBurpStatuses", mock.Anything, mock.Anything)
	assert.Empty(t, publishedEventTypes(f.publisher))
}

func TestReportService_BulkUpdateStatusValidation(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := f.svc.BulkUpdateStatus(ctx, f.customerID, f.nessusSvc.ID, id, f.userID, BulkStatusRequest{Status: "closed"})
	assert.ErrorIs(t, err, report.ErrInvalidStatus)

	_, err = f.svc.BulkUpdateStatus(ctx, f.customerID, f.nessusSvc.ID, id, f.userID, BulkStatusRequest{Status: "fixed", BulkType: "severity"})
	assert.EqualError(t, err, "Invalid bulk type: severity")

	_, err = f.svc.BulkUpdateStatus(ctx, f.customerID, f.nessusSvc.ID, id, f.userID, BulkStatusRequest{Status: "fixed", BulkType: "risk_factor"})
	assert.EqualError(t, err, "risk_factor is required")

	_, err = f.svc.BulkUpdateStatus(ctx, f.customerID, f.nessusSvc.ID, id, f.userID, BulkStatusRequest{Status: "fixed", FindingID: "nope"})
	assert.EqualError(t, err, "Invalid finding_id")
}

func TestReportService_Delete(t *testing.T) {
	f := newReportFixture(t)
	r := f.nessusReport(t)
	r.SourceKey = r.ArchiveKey("scan.json")
	f.reports.On("FindByIDForService", mock.Anything, f.customerID, f.nessusSvc.ID, r.ID).Return(r, nil)
	f.reports.On("Delete", mock.Anything, r.ID).Return(nil)
	f.storage.On("DeleteObject", mock.Anything, r.SourceKey).Return(nil)

	require.NoError(t, f.svc.Delete(context.Background(), f.customerID, f.nessusSvc.ID, r.ID))
	f.storage.AssertExpectations(t)
}

func TestReportService_Selection(t *testing.T) {
	f := newReportFixture(t)
	f.contracts.On("FindByStatuses", mock.Anything, f.customerID, contract.ReportingStatuses).
		Return([]contract.Contract{*f.contract}, nil)
	ids := []uuid.UUID{f.nessusSvc.ID, f.burpSvc.ID}
	f.services.On("FindByIDs", mock.Anything, ids).Return([]catalog.Service{*f.nessusSvc, *f.burpSvc}, nil)
	f.reports.On("CountByServices", mock.Anything, f.customerID, ids).Return(map[uuid.UUID]int64{f.nessusSvc.ID: 4}, nil)

	sel, err := f.svc.Selection(context.Background(), f.customerID)

	require.NoError(t, err)
	require.Len(t, sel.Contracts, 1)
	assert.Equal(t, "Active", sel.Contracts[0].StatusLabel)
	require.Len(t, sel.ReportTypes, 2)
	assert.Equal(t, "BurpSuite", sel.ReportTypes[0].ReportType)
	assert.Equal(t, int64(0), sel.ReportTypes[0].Services[0].ReportCount)
	assert.Equal(t, "Nessus", sel.ReportTypes[1].ReportType)
	assert.Equal(t, int64(4), sel.ReportTypes[1].Services[0].ReportCount)
}

func TestReportService_SelectionWithoutContracts(t *testing.T) {
	f := newReportFixture(t)
	f.contracts.On("FindByStatuses", mock.Anything, f.customerID, contract.ReportingStatuses).Return([]contract.Contract{}, nil)

	sel, err := f.svc.Selection(context.Background(), f.customerID)

	require.NoError(t, err)
	assert.Empty(t, sel.Contracts)
	assert.Empty(t, sel.ReportTypes)
	f.services.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
}

func TestReportService_Export(t *testing.T) {
	f := newReportFixture(t)
	r := f.burpReport(t)
	f.reports.On("FindByIDForService", mock.Anything, f.customerID, f.burpSvc.ID, r.ID).Return(r, nil)
	f.reports.On("StatusCounts", mock.Anything, r).Return(map[report.FindingStatus]int64{report.StatusNotStarted: 1}, nil)
	f.reports.On("BurpFindings", mock.Anything, r.ID).Return([]report.BurpFinding{}, nil)
	f.burp.On("FindByIDs", mock.Anything, []int{}).Return(map[int]*signature.BurpSuiteSignature{}, nil)
	f.printer.On("PrintReport", mock.Anything, mock.MatchedBy(func(doc *ReportDocument) bool {
		return doc.Title == "Portal test" && doc.ServiceCode == "WAS" && len(doc.Summary) == 1
	})).Return([]byte("%PDF-1.4"), nil)

	out, err := f.svc.Export(context.Background(), f.customerID, f.burpSvc.ID, r.ID)

	require.NoError(t, err)
	assert.Equal(t, "portal-test-2024-04-30.pdf", out.Filename)
	assert.Equal(t, "application/pdf", out.ContentType)
	assert.Equal(t, []byte("%PDF-1.4"), out.Data)
}

func TestReportService_ExportDisabled(t *testing.T) {
	f := newReportFixture(t)
	svc := NewReportService(f.reports, f.contracts, f.services, f.nessus, f.burp, f.users, f.publisher, zap.NewNop())

	_, err := svc.Export(context.Background(), f.customerID, f.nessusSvc.ID, uuid.New())
	assert.ErrorIs(t, err, ErrPrintingDisabled)
}
