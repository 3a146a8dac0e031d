package engagement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/contract"
	"github.com/scg/portal/internal/domain/engagement"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrNoActiveContracts is returned when a customer has no contract to open engagements on
var ErrNoActiveContracts = shared.NewDomainError("NOT_FOUND", "No active contracts found for this customer")

// EngagementService handles support engagement and time entry use cases
type EngagementService struct {
	engagementRepo engagement.EngagementRepository
	contractRepo   contract.ContractRepository
	serviceRepo    catalog.ServiceRepository
	logger         *zap.Logger
}

// NewEngagementService creates a new EngagementService
func NewEngagementService(
	engagementRepo engagement.EngagementRepository,
	contractRepo contract.ContractRepository,
	serviceRepo catalog.ServiceRepository,
	logger *zap.Logger,
) *EngagementService {
	return &EngagementService{
		engagementRepo: engagementRepo,
		contractRepo:   contractRepo,
		serviceRepo:    serviceRepo,
		logger:         logger,
	}
}

// CreateOptions lists the active or trial contracts of a customer with their support lines
func (s *EngagementService) CreateOptions(ctx context.Context, customerID uuid.UUID) ([]ContractOption, error) {
	contracts, err := s.contractRepo.FindByStatuses(ctx, customerID, contract.EngagementStatuses)
	if err != nil {
		return nil, err
	}

	var serviceIDs []uuid.UUID
	for _, c := range contracts {
		for _, line := range c.Lines {
			serviceIDs = append(serviceIDs, line.ServiceID)
		}
	}
	if len(serviceIDs) == 0 {
		return nil, ErrNoActiveContracts
	}
	services, err := s.serviceRepo.FindByIDs(ctx, serviceIDs)
	if err != nil {
		return nil, err
	}
	support := make(map[uuid.UUID]bool)
	for _, svc := range services {
		if svc.ReportKind() == catalog.ReportKindSupport {
			support[svc.ID] = true
		}
	}

	options := make([]ContractOption, 0, len(contracts))
	for _, c := range contracts {
		opt := ContractOption{ContractID: c.ID, ContractNumber: c.ContractNumber, Status: c.Status}
		for _, line := range c.Lines {
			if !support[line.ServiceID] {
				continue
			}
			opt.Services = append(opt.Services, SupportLineOption{
				ContractServiceID: line.ID,
				ServiceID:         line.ServiceID,
				ServiceName:       line.ServiceName,
				ContractedHours:   line.Quantity,
			})
		}
		if len(opt.Services) > 0 {
			options = append(options, opt)
		}
	}
	if len(options) == 0 {
		return nil, ErrNoActiveContracts
	}
	return options, nil
}

// List returns a customer's engagements, newest first
func (s *EngagementService) List(ctx context.Context, customerID uuid.UUID, filter EngagementListFilter) ([]EngagementResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Filters:  make(map[string]interface{}),
	}
	if filter.ContractID != "" {
		id, err := uuid.Parse(filter.ContractID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_CONTRACT", "Invalid contract_id")
		}
		f.Filters["contract_id"] = id
	}
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	if filter.Priority != "" {
		f.Filters["priority"] = filter.Priority
	}

	items, total, err := s.engagementRepo.FindAllForCustomer(ctx, customerID, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]EngagementResponse, len(items))
	for i := range items {
		out[i] = ToEngagementResponse(&items[i])
	}
	return out, total, nil
}

// Create opens an engagement on a support line of the customer
func (s *EngagementService) Create(ctx context.Context, customerID, userID uuid.UUID, req CreateEngagementRequest) (*EngagementResponse, error) {
	line, err := s.contractRepo.FindLine(ctx, req.ContractServiceID)
	if err != nil {
		return nil, err
	}
	c, err := s.contractRepo.FindByID(ctx, line.ContractID)
	if err != nil {
		return nil, err
	}
	svc, err := s.serviceRepo.FindByID(ctx, line.ServiceID)
	if err != nil {
		return nil, err
	}
	highest, err := s.engagementRepo.HighestNumber(ctx)
	if err != nil {
		return nil, err
	}

	e, err := engagement.NewEngagement(customerID, engagement.NextNumber(highest), c, line.ID, svc.ReportKind(),
		req.Name, engagement.Priority(req.Priority), req.ClientDescription, req.InternalNotes, userID)
	if err != nil {
		return nil, err
	}
	if err := s.engagementRepo.Save(ctx, e); err != nil {
		return nil, err
	}

	s.logger.Info("Engagement created",
		zap.String("engagement_id", e.ID.String()),
		zap.String("number", e.EngagementNumber))
	resp := ToEngagementResponse(e)
	return &resp, nil
}

// Get returns an engagement with its time entries and hour usage
func (s *EngagementService) Get(ctx context.Context, customerID, id uuid.UUID) (*EngagementDetailResponse, error) {
	e, err := s.engagementRepo.FindByIDForCustomer(ctx, customerID, id)
	if err != nil {
		return nil, err
	}
	entries, err := s.engagementRepo.TimeEntries(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	hours, err := s.hours(ctx, e)
	if err != nil {
		return nil, err
	}

	resp := &EngagementDetailResponse{
		Engagement:  ToEngagementResponse(e),
		TimeEntries: make([]TimeEntryResponse, len(entries)),
		Hours:       hours,
	}
	for i := range entries {
		resp.TimeEntries[i] = ToTimeEntryResponse(&entries[i])
	}
	return resp, nil
}

func (s *EngagementService) hours(ctx context.Context, e *engagement.Engagement) (engagement.Hours, error) {
	line, err := s.contractRepo.FindLine(ctx, e.ContractServiceID)
	if err != nil {
		return engagement.Hours{}, err
	}
	total, err := s.engagementRepo.ServiceHours(ctx, line.ID, nil)
	if err != nil {
		return engagement.Hours{}, err
	}
	own, err := s.engagementRepo.EngagementHours(ctx, e.ID)
	if err != nil {
		return engagement.Hours{}, err
	}
	return engagement.ComputeHours(line.Quantity, total, own), nil
}

// Update replaces the editable fields of an engagement
func (s *EngagementService) Update(ctx context.Context, customerID, id uuid.UUID, req UpdateEngagementRequest) (*EngagementResponse, error) {
	e, err := s.engagementRepo.FindByIDForCustomer(ctx, customerID, id)
	if err != nil {
		return nil, err
	}
	if err := e.Update(req.Name, engagement.Priority(req.Priority), req.ClientDescription, req.InternalNotes, engagement.Status(req.Status)); err != nil {
		return nil, err
	}
	if err := s.engagementRepo.Save(ctx, e); err != nil {
		return nil, err
	}
	resp := ToEngagementResponse(e)
	return &resp, nil
}

// ChangeStatus moves an engagement to another status
func (s *EngagementService) ChangeStatus(ctx context.Context, customerID, id uuid.UUID, req ChangeStatusRequest) (*EngagementResponse, error) {
	e, err := s.engagementRepo.FindByIDForCustomer(ctx, customerID, id)
	if err != nil {
		return nil, err
	}
	if err := e.ChangeStatus(engagement.Status(req.Status)); err != nil {
		return nil, err
	}
	if err := s.engagementRepo.Save(ctx, e); err != nil {
		return nil, err
	}
	resp := ToEngagementResponse(e)
	return &resp, nil
}

// Delete removes an engagement and its time entries
func (s *EngagementService) Delete(ctx context.Context, customerID, id uuid.UUID) error {
	e, err := s.engagementRepo.FindByIDForCustomer(ctx, customerID, id)
	if err != nil {
		return err
	}
	if err := s.engagementRepo.Delete(ctx, e.ID); err != nil {
		return err
	}
	s.logger.Info("Engagement deleted", zap.String("engagement_id", e.ID.String()))
	return nil
}

// AddTimeEntry logs work on an engagement.
// Exceeding the contracted hours is allowed and reported as a warning.
func (s *EngagementService) AddTimeEntry(ctx context.Context, customerID, engagementID, userID uuid.UUID, req TimeEntryRequest) (*TimeEntryResult, error) {
	e, err := s.engagementRepo.FindByIDForCustomer(ctx, customerID, engagementID)
	if err != nil {
		return nil, err
	}
	date, err := parseEntryDate(req.Date)
	if err != nil {
		return nil, err
	}
	entry, err := engagement.NewTimeEntry(e.ID, req.ClientComment, req.InternalNotes, req.HoursSpent, date, userID)
	if err != nil {
		return nil, err
	}
	warning, err := s.overrun(ctx, e, req.HoursSpent, nil)
	if err != nil {
		return nil, err
	}
	if err := s.engagementRepo.SaveTimeEntry(ctx, entry); err != nil {
		return nil, err
	}
	return &TimeEntryResult{Entry: ToTimeEntryResponse(entry), Warning: warning}, nil
}

// UpdateTimeEntry edits logged work
func (s *EngagementService) UpdateTimeEntry(ctx context.Context, customerID, entryID uuid.UUID, req TimeEntryRequest) (*TimeEntryResult, error) {
	entry, e, err := s.findEntry(ctx, customerID, entryID)
	if err != nil {
		return nil, err
	}
	date, err := parseEntryDate(req.Date)
	if err != nil {
		return nil, err
	}
	if err := entry.Update(req.ClientComment, req.InternalNotes, req.HoursSpent, date); err != nil {
		return nil, err
	}
	warning, err := s.overrun(ctx, e, req.HoursSpent, &entry.ID)
	if err != nil {
		return nil, err
	}
	if err := s.engagementRepo.SaveTimeEntry(ctx, entry); err != nil {
		return nil, err
	}
	return &TimeEntryResult{Entry: ToTimeEntryResponse(entry), Warning: warning}, nil
}

// DeleteTimeEntry removes logged work
func (s *EngagementService) DeleteTimeEntry(ctx context.Context, customerID, entryID uuid.UUID) error {
	entry, _, err := s.findEntry(ctx, customerID, entryID)
	if err != nil {
		return err
	}
	return s.engagementRepo.DeleteTimeEntry(ctx, entry.ID)
}

// findEntry loads an entry whose engagement belongs to the customer
func (s *EngagementService) findEntry(ctx context.Context, customerID, entryID uuid.UUID) (*engagement.TimeEntry, *engagement.Engagement, error) {
	entry, err := s.engagementRepo.FindTimeEntry(ctx, entryID)
	if err != nil {
		return nil, nil, err
	}
	e, err := s.engagementRepo.FindByIDForCustomer(ctx, customerID, entry.EngagementID)
	if err != nil {
		return nil, nil, err
	}
	return entry, e, nil
}

func (s *EngagementService) overrun(ctx context.Context, e *engagement.Engagement, hours decimal.Decimal, exclude *uuid.UUID) (string, error) {
	line, err := s.contractRepo.FindLine(ctx, e.ContractServiceID)
	if err != nil {
		return "", err
	}
	used, err := s.engagementRepo.ServiceHours(ctx, line.ID, exclude)
	if err != nil {
		return "", err
	}
	warning := engagement.OverrunWarning(line.Quantity, used, hours)
	if warning != "" {
		s.logger.Warn("Time entry exceeds contracted hours",
			zap.String("engagement_id", e.ID.String()),
			zap.Int("contracted", line.Quantity),
			zap.String("used", used.String()),
			zap.String("entry", hours.String()))
	}
	return warning, nil
}

func parseEntryDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, shared.NewDomainError("INVALID_DATE", "Date must be YYYY-MM-DD")
	}
	return d, nil
}
