package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	appevent "github.com/scg/portal/internal/application/event"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/contract"
	"github.com/scg/portal/internal/domain/report"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/scg/portal/internal/domain/signature"
	"go.uber.org/zap"
)

// DefaultPageSize is the report list page size
const DefaultPageSize = 10

// View names used in report type dispatch
const (
	ViewList   = "list"
	ViewDetail = "detail"
	ViewUpload = "upload"
	ViewDelete = "delete"
	ViewExport = "export"
	ViewStatus = "status"
)

var viewsByKind = map[catalog.ReportKind][]string{
	catalog.ReportKindNessus:    {ViewList, ViewDetail, ViewUpload, ViewDelete, ViewExport, ViewStatus},
	catalog.ReportKindBurpSuite: {ViewList, ViewDetail, ViewUpload, ViewDelete, ViewExport, ViewStatus},
	catalog.ReportKindSupport:   {ViewList, ViewDetail},
}

// Errors returned by the report service
var (
	ErrContractNotForCustomer = shared.NewDomainError("INVALID_CONTRACT", "Contract must belong to the selected customer.")
	ErrContractNotUploadable  = shared.NewDomainError("CONTRACT_NOT_UPLOADABLE", "Reports can only be uploaded for trial or active contracts.")
	ErrServiceNotInContract   = shared.NewDomainError("INVALID_SERVICE", "Selected service is not part of the selected contract.")
	ErrPrintingDisabled       = shared.NewDomainError("SERVICE_UNAVAILABLE", "PDF export is not enabled.")
)

// UnsupportedViewError is returned when a report type has no handler for a view
func UnsupportedViewError(reportType, view string) error {
	return shared.NewDomainError("UNSUPPORTED_REPORT_TYPE",
		fmt.Sprintf("Unsupported report type or view type: %s - %s", reportType, view))
}

// UserDirectory resolves user e-mails for display
type UserDirectory interface {
	EmailsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// Option configures a ReportService
type Option func(*ReportService)

// WithStorage archives raw uploads in object storage
func WithStorage(storage ObjectStorage) Option {
	return func(s *ReportService) {
		s.storage = storage
	}
}

// WithPrinter enables PDF export
func WithPrinter(printer ReportPrinter) Option {
	return func(s *ReportService) {
		s.printer = printer
	}
}

// WithLocation sets the time zone used for display timestamps
func WithLocation(loc *time.Location) Option {
	return func(s *ReportService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithTransactionScope makes uploads and bulk status updates atomic
func WithTransactionScope(tx TransactionScope) Option {
	return func(s *ReportService) {
		s.tx = tx
	}
}

// ReportService handles scanner report use cases
type ReportService struct {
	reportRepo     report.ReportRepository
	contractRepo   contract.ContractRepository
	serviceRepo    catalog.ServiceRepository
	nessusRepo     signature.NessusSignatureRepository
	burpRepo       signature.BurpSuiteSignatureRepository
	users          UserDirectory
	storage        ObjectStorage
	printer        ReportPrinter
	tx             TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	location       *time.Location
	now            func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(
	reportRepo report.ReportRepository,
	contractRepo contract.ContractRepository,
	serviceRepo catalog.ServiceRepository,
	nessusRepo signature.NessusSignatureRepository,
	burpRepo signature.BurpSuiteSignatureRepository,
	users UserDirectory,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
	opts ...Option,
) *ReportService {
	s := &ReportService{
		reportRepo:     reportRepo,
		contractRepo:   contractRepo,
		serviceRepo:    serviceRepo,
		nessusRepo:     nessusRepo,
		burpRepo:       burpRepo,
		users:          users,
		eventPublisher: eventPublisher,
		logger:         logger,
		location:       time.UTC,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = NewNoOpTransactionScope(reportRepo, burpRepo)
	}
	return s
}

// Dispatch resolves the report kind of a service and checks that it supports the view
func (s *ReportService) Dispatch(ctx context.Context, serviceID uuid.UUID, view string) (*catalog.Service, catalog.ReportKind, error) {
	svc, err := s.serviceRepo.FindByID(ctx, serviceID)
	if err != nil {
		return nil, "", err
	}
	kind := svc.ReportKind()
	for _, v := range viewsByKind[kind] {
		if v == view {
			return svc, kind, nil
		}
	}
	name := "None"
	if svc.ReportType != nil {
		name = svc.ReportType.Name
	}
	return nil, "", UnsupportedViewError(name, view)
}

// List returns a customer's reports for a service, newest first
func (s *ReportService) List(ctx context.Context, customerID, serviceID uuid.UUID, filter ReportListFilter) ([]ReportResponse, int64, error) {
	if _, _, err := s.Dispatch(ctx, serviceID, ViewList); err != nil {
		return nil, 0, err
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = DefaultPageSize
	}

	reports, total, err := s.reportRepo.FindByService(ctx, customerID, serviceID, shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "date",
		OrderDir: "desc",
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]ReportResponse, len(reports))
	for i := range reports {
		out[i] = ToReportResponse(&reports[i])
	}
	return out, total, nil
}

// Upload parses a scanner export, stores the report with its findings and archives the raw file
func (s *ReportService) Upload(ctx context.Context, customerID, serviceID uuid.UUID, in UploadInput) (*UploadResponse, error) {
	_, kind, err := s.Dispatch(ctx, serviceID, ViewUpload)
	if err != nil {
		return nil, err
	}
	if err := s.checkContract(ctx, customerID, serviceID, in.ContractID); err != nil {
		return nil, err
	}

	var (
		r        *report.Report
		count    int
		warnings []string
	)
	switch kind {
	case catalog.ReportKindNessus:
		r, count, warnings, err = s.ingestNessus(ctx, customerID, serviceID, in)
	case catalog.ReportKindBurpSuite:
		r, count, err = s.ingestBurp(ctx, customerID, serviceID, in)
	}
	if err != nil {
		return nil, err
	}

	s.archive(ctx, r, in)

	r.MarkUploaded(count, len(warnings))
	appevent.PublishPending(ctx, s.eventPublisher, s.logger, r)

	s.logger.Info("Report uploaded",
		zap.String("report_id", r.ID.String()),
		zap.String("kind", string(kind)),
		zap.Int("findings", count),
		zap.Int("warnings", len(warnings)))

	if warnings == nil {
		warnings = []string{}
	}
	return &UploadResponse{Report: ToReportResponse(r), FindingCount: count, Warnings: warnings}, nil
}

func (s *ReportService) checkContract(ctx context.Context, customerID, serviceID, contractID uuid.UUID) error {
	c, err := s.contractRepo.FindByIDForCustomer(ctx, customerID, contractID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrContractNotForCustomer
		}
		return err
	}
	if !c.AcceptsUploads() {
		return ErrContractNotUploadable
	}
	if !c.HasService(serviceID) {
		return ErrServiceNotInContract
	}
	return nil
}

func (s *ReportService) ingestNessus(ctx context.Context, customerID, serviceID uuid.UUID, in UploadInput) (*report.Report, int, []string, error) {
	upload, err := report.DecodeNessusUpload(in.Data)
	if err != nil {
		return nil, 0, nil, err
	}
	date, err := upload.ReportDate()
	if err != nil {
		return nil, 0, nil, err
	}
	sigs, err := s.nessusRepo.FindByIDs(ctx, upload.PluginIDs())
	if err != nil {
		return nil, 0, nil, err
	}

	r, err := newReport(customerID, serviceID, in, date, catalog.ReportKindNessus, upload.Inventory)
	if err != nil {
		return nil, 0, nil, err
	}

	var warnings []string
	findings := make([]report.NessusFinding, 0, len(upload.AlertReport))
	for _, alert := range upload.AlertReport {
		if _, ok := sigs[alert.PluginID]; !ok {
			warnings = append(warnings, fmt.Sprintf("Signature with ID %d not found.", alert.PluginID))
			continue
		}
		findings = append(findings, report.NewNessusFinding(r.ID, alert.PluginID, alert.TargetAffected, alert.OS))
	}

	if err := s.reportRepo.CreateNessus(ctx, r, findings); err != nil {
		return nil, 0, nil, err
	}
	return r, len(findings), warnings, nil
}

func (s *ReportService) ingestBurp(ctx context.Context, customerID, serviceID uuid.UUID, in UploadInput) (*report.Report, int, error) {
	upload, err := report.DecodeBurpUpload(in.Data)
	if err != nil {
		return nil, 0, err
	}
	date, err := upload.ReportDate()
	if err != nil {
		return nil, 0, err
	}

	names := make(map[int]string)
	ids := make([]int, 0, len(upload.Issues))
	for _, issue := range upload.Issues {
		id, _ := issue.SignatureID()
		if _, ok := names[id]; !ok {
			names[id] = issue.Name
			ids = append(ids, id)
		}
	}

	r, err := newReport(customerID, serviceID, in, date, catalog.ReportKindBurpSuite, nil)
	if err != nil {
		return nil, 0, err
	}

	var findings []report.BurpFinding
	for _, issue := range upload.Issues {
		id, _ := issue.SignatureID()
		for _, inst := range issue.Instances {
			findings = append(findings, report.NewBurpFinding(r.ID, id, issue.Host, inst))
		}
	}

	var created []int
	err = s.tx.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		created, err = ensureBurpSignatures(ctx, repos.BurpSignatureRepo(), ids, names)
		if err != nil {
			return err
		}
		return repos.ReportRepo().CreateBurp(ctx, r, findings)
	})
	if err != nil {
		return nil, 0, err
	}
	for _, id := range created {
		s.logger.Info("Created Burp signature from report", zap.Int("signature_id", id))
	}
	return r, len(findings), nil
}

func newReport(customerID, serviceID uuid.UUID, in UploadInput, date time.Time, kind catalog.ReportKind, inventory []string) (*report.Report, error) {
	contractID := in.ContractID
	r, err := report.NewReport(customerID, &contractID, serviceID, in.Name, date, kind, inventory)
	if err != nil {
		return nil, err
	}
	if in.UploadedBy != uuid.Nil {
		r.SetCreatedBy(in.UploadedBy)
	}
	return r, nil
}

// ensureBurpSignatures creates the issue types a report names but the catalog lacks
// and returns their IDs
func ensureBurpSignatures(ctx context.Context, repo signature.BurpSuiteSignatureRepository, ids []int, names map[int]string) ([]int, error) {
	known, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	var created []int
	for _, id := range ids {
		if _, ok := known[id]; ok {
			continue
		}
		sig, err := signature.NewBurpSuiteSignature(id, names[id])
		if err != nil {
			return nil, err
		}
		if err := repo.Create(ctx, sig); err != nil {
			return nil, err
		}
		created = append(created, id)
	}
	return created, nil
}

// archive stores the raw upload. The report is already committed, so failures are only logged.
func (s *ReportService) archive(ctx context.Context, r *report.Report, in UploadInput) {
	if s.storage == nil {
		return
	}
	key := r.ArchiveKey(in.Filename)
	if err := s.storage.Upload(ctx, key, in.Data, "application/json"); err != nil {
		s.logger.Warn("Failed to archive report upload", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.reportRepo.UpdateSourceKey(ctx, r.ID, key); err != nil {
		s.logger.Warn("Failed to record archive key", zap.String("key", key), zap.Error(err))
		return
	}
	r.SourceKey = key
}

// Get returns a report with its grouped findings
func (s *ReportService) Get(ctx context.Context, customerID, serviceID, reportID uuid.UUID) (*ReportDetailResponse, error) {
	if _, _, err := s.Dispatch(ctx, serviceID, ViewDetail); err != nil {
		return nil, err
	}
	r, err := s.reportRepo.FindByIDForService(ctx, customerID, serviceID, reportID)
	if err != nil {
		return nil, err
	}
	counts, err := s.reportRepo.StatusCounts(ctx, r)
	if err != nil {
		return nil, err
	}

	resp := &ReportDetailResponse{
		Report:        ToReportResponse(r),
		StatusSummary: report.StatusSummary(counts),
	}
	switch r.Kind {
	case catalog.ReportKindNessus:
		groups, err := s.nessusGroups(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		resp.RiskGroups = toNessusGroups(groups)
	case catalog.ReportKindBurpSuite:
		issues, err := s.burpGroups(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		resp.Issues = issues
	}
	return resp, nil
}

func (s *ReportService) nessusGroups(ctx context.Context, reportID uuid.UUID) ([]report.NessusRiskGroup, error) {
	findings, err := s.reportRepo.NessusFindings(ctx, reportID)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(findings))
	changers := make([]uuid.UUID, 0)
	for _, f := range findings {
		ids = append(ids, f.SignatureID)
		if f.ChangedBy != nil {
			changers = append(changers, *f.ChangedBy)
		}
	}
	sigs, err := s.nessusRepo.FindByIDs(ctx, distinctInts(ids))
	if err != nil {
		return nil, err
	}
	emails, err := s.emails(ctx, changers)
	if err != nil {
		return nil, err
	}
	return report.GroupNessusFindings(findings, sigs, emails, s.location), nil
}

func (s *ReportService) burpGroups(ctx context.Context, reportID uuid.UUID) ([]report.BurpIssueGroup, error) {
	findings, err := s.reportRepo.BurpFindings(ctx, reportID)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(findings))
	changers := make([]uuid.UUID, 0)
	for _, f := range findings {
		ids = append(ids, f.SignatureID)
		if f.ChangedBy != nil {
			changers = append(changers, *f.ChangedBy)
		}
	}
	sigs, err := s.burpRepo.FindByIDs(ctx, distinctInts(ids))
	if err != nil {
		return nil, err
	}
	emails, err := s.emails(ctx, changers)
	if err != nil {
		return nil, err
	}
	return report.GroupBurpFindings(findings, sigs, emails, s.location), nil
}

// StatusSummary returns the labelled status counts of a report
func (s *ReportService) StatusSummary(ctx context.Context, customerID, serviceID, reportID uuid.UUID) (map[report.FindingStatus]report.StatusCount, error) {
	counts, err := s.statusCounts(ctx, customerID, serviceID, reportID)
	if err != nil {
		return nil, err
	}
	return report.StatusSummary(counts), nil
}

// StatusCounts returns the bare status counts of a report
func (s *ReportService) StatusCounts(ctx context.Context, customerID, serviceID, reportID uuid.UUID) (map[report.FindingStatus]int64, error) {
	counts, err := s.statusCounts(ctx, customerID, serviceID, reportID)
	if err != nil {
		return nil, err
	}
	return report.StatusCounts(counts), nil
}

func (s *ReportService) statusCounts(ctx context.Context, customerID, serviceID, reportID uuid.UUID) (map[report.FindingStatus]int64, error) {
	if _, _, err := s.Dispatch(ctx, serviceID, ViewStatus); err != nil {
		return nil, err
	}
	r, err := s.reportRepo.FindByIDForService(ctx, customerID, serviceID, reportID)
	if err != nil {
		return nil, err
	}
	return s.reportRepo.StatusCounts(ctx, r)
}

// BulkUpdateStatus changes the status of the selected findings of a report.
// Findings already in the new status are left untouched.
func (s *ReportService) BulkUpdateStatus(ctx context.Context, customerID, serviceID, reportID, userID uuid.UUID, req BulkStatusRequest) (*BulkStatusResponse, error) {
	_, kind, err := s.Dispatch(ctx, serviceID, ViewStatus)
	if err != nil {
		return nil, err
	}
	status, err := report.ParseFindingStatus(req.Status)
	if err != nil {
		return nil, err
	}
	bulkType, err := report.ParseBulkType(kind, req.BulkType)
	if err != nil {
		return nil, err
	}
	sel := report.BulkSelection{
		Type:       bulkType,
		RiskFactor: strings.TrimSpace(req.RiskFactor),
		Severity:   strings.TrimSpace(req.Severity),
	}
	if req.FindingID != "" {
		id, err := uuid.Parse(req.FindingID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_FINDING", "Invalid finding_id")
		}
		sel.FindingID = id
	}
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	r, err := s.reportRepo.FindByIDForService(ctx, customerID, serviceID, reportID)
	if err != nil {
		return nil, err
	}

	at := s.now()
	var updated []report.UpdatedFinding
	err = s.tx.Execute(ctx, func(repos TransactionalRepositories) error {
		repo := repos.ReportRepo()
		switch kind {
		case catalog.ReportKindNessus:
			findings, err := repo.SelectNessusFindings(ctx, r.ID, sel)
			if err != nil {
				return err
			}
			changed := report.ApplyNessusStatus(findings, status, userID, at)
			if len(changed) == 0 {
				return nil
			}
			if err := repo.SaveNessusStatuses(ctx, changed); err != nil {
				return err
			}
			for _, f := range changed {
				updated = append(updated, report.UpdatedFinding{ID: f.ID, TargetAffected: f.TargetAffected, Status: f.Status})
			}
		case catalog.ReportKindBurpSuite:
			findings, err := repo.SelectBurpFindings(ctx, r.ID, sel)
			if err != nil {
				return err
			}
			changed := report.ApplyBurpStatus(findings, status, userID, at)
			if len(changed) == 0 {
				return nil
			}
			if err := repo.SaveBurpStatuses(ctx, changed); err != nil {
				return err
			}
			for _, f := range changed {
				updated = append(updated, report.UpdatedFinding{ID: f.ID, Host: f.Host, Status: f.Status})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(updated) > 0 {
		emails, err := s.emails(ctx, []uuid.UUID{userID})
		if err != nil {
			s.logger.Warn("Failed to resolve user e-mail", zap.Error(err))
		}
		changedBy := report.FormatChangedBy(&userID, emails)
		changedAt := report.FormatChangedAt(&at, s.location)
		for i := range updated {
			updated[i].ChangedBy = changedBy
			updated[i].ChangedAt = changedAt
		}
		r.AddDomainEvent(report.NewFindingStatusChangedEvent(r, bulkType, status, len(updated), userID))
		appevent.PublishPending(ctx, s.eventPublisher, s.logger, r)
	} else {
		updated = []report.UpdatedFinding{}
	}

	return &BulkStatusResponse{
		Success:         true,
		NewStatus:       status,
		UpdatedCount:    len(updated),
		UpdatedFindings: updated,
	}, nil
}

// Delete removes a report of a customer and service along with its archived upload
func (s *ReportService) Delete(ctx context.Context, customerID, serviceID, reportID uuid.UUID) error {
	if _, _, err := s.Dispatch(ctx, serviceID, ViewDelete); err != nil {
		return err
	}
	r, err := s.reportRepo.FindByIDForService(ctx, customerID, serviceID, reportID)
	if err != nil {
		return err
	}
	if err := s.reportRepo.Delete(ctx, r.ID); err != nil {
		return err
	}
	if r.SourceKey != "" && s.storage != nil {
		if err := s.storage.DeleteObject(ctx, r.SourceKey); err != nil {
			s.logger.Warn("Failed to delete archived upload", zap.String("key", r.SourceKey), zap.Error(err))
		}
	}
	s.logger.Info("Report deleted", zap.String("report_id", r.ID.String()))
	return nil
}

// Selection lists the customer's reporting contracts and the services they cover
func (s *ReportService) Selection(ctx context.Context, customerID uuid.UUID) (*SelectionResponse, error) {
	contracts, err := s.contractRepo.FindByStatuses(ctx, customerID, contract.ReportingStatuses)
	if err != nil {
		return nil, err
	}

	resp := &SelectionResponse{
		Contracts:   make([]SelectableContract, 0, len(contracts)),
		ReportTypes: []report.ReportTypeGroup{},
	}
	seen := make(map[uuid.UUID]bool)
	var serviceIDs []uuid.UUID
	for _, c := range contracts {
		resp.Contracts = append(resp.Contracts, SelectableContract{
			ID:             c.ID,
			ContractNumber: c.ContractNumber,
			Status:         c.Status,
			StatusLabel:    c.Status.Label(),
			StartDate:      c.StartDate.Format("2006-01-02"),
			EndDate:        c.EndDate.Format("2006-01-02"),
		})
		for _, line := range c.Lines {
			if !seen[line.ServiceID] {
				seen[line.ServiceID] = true
				serviceIDs = append(serviceIDs, line.ServiceID)
			}
		}
	}
	if len(serviceIDs) == 0 {
		return resp, nil
	}

	services, err := s.serviceRepo.FindByIDs(ctx, serviceIDs)
	if err != nil {
		return nil, err
	}
	counts, err := s.reportRepo.CountByServices(ctx, customerID, serviceIDs)
	if err != nil {
		return nil, err
	}
	resp.ReportTypes = report.BuildSelection(services, counts)
	return resp, nil
}

// Export renders the report summary to PDF
func (s *ReportService) Export(ctx context.Context, customerID, serviceID, reportID uuid.UUID) (*ExportResult, error) {
	svc, _, err := s.Dispatch(ctx, serviceID, ViewExport)
	if err != nil {
		return nil, err
	}
	if s.printer == nil {
		return nil, ErrPrintingDisabled
	}
	detail, err := s.Get(ctx, customerID, serviceID, reportID)
	if err != nil {
		return nil, err
	}

	doc := &ReportDocument{
		Title:       detail.Report.Name,
		ServiceName: svc.Name,
		ServiceCode: svc.ServiceCode,
		Report:      detail.Report,
		GeneratedAt: s.now().In(s.location),
		RiskGroups:  detail.RiskGroups,
		Issues:      detail.Issues,
	}
	for _, st := range report.FindingStatuses {
		if c, ok := detail.StatusSummary[st]; ok {
			doc.Summary = append(doc.Summary, c)
		}
	}

	data, err := s.printer.PrintReport(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to print report: %w", err)
	}
	return &ExportResult{
		Filename:    exportFilename(detail.Report),
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}

func exportFilename(r ReportResponse) string {
	var b strings.Builder
	for _, c := range strings.ToLower(r.Name) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteRune(c)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteByte('-')
		}
	}
	name := strings.TrimSuffix(b.String(), "-")
	if name == "" {
		name = "report"
	}
	return fmt.Sprintf("%s-%s.pdf", name, r.Date)
}

func (s *ReportService) emails(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if len(ids) == 0 || s.users == nil {
		return map[uuid.UUID]string{}, nil
	}
	seen := make(map[uuid.UUID]bool, len(ids))
	distinct := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			distinct = append(distinct, id)
		}
	}
	return s.users.EmailsByIDs(ctx, distinct)
}

func distinctInts(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
