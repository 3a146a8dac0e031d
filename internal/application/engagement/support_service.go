package engagement

import (
	"context"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/contract"
	"github.com/scg/portal/internal/domain/engagement"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SupportReportService builds the virtual support report: contracted hours
// of a support service and the engagements booked against them
type SupportReportService struct {
	engagementRepo engagement.EngagementRepository
	contractRepo   contract.ContractRepository
}

// NewSupportReportService creates a new SupportReportService
func NewSupportReportService(engagementRepo engagement.EngagementRepository, contractRepo contract.ContractRepository) *SupportReportService {
	return &SupportReportService{engagementRepo: engagementRepo, contractRepo: contractRepo}
}

// List returns the customer's contracts that include the support service, with hour usage
func (s *SupportReportService) List(ctx context.Context, customerID, serviceID uuid.UUID) ([]engagement.SupportLine, error) {
	contracts, err := s.contractRepo.FindByService(ctx, customerID, serviceID)
	if err != nil {
		return nil, err
	}

	lineIDs := make([]uuid.UUID, 0, len(contracts))
	for i := range contracts {
		if line := contracts[i].LineForService(serviceID); line != nil {
			lineIDs = append(lineIDs, line.ID)
		}
	}
	if len(lineIDs) == 0 {
		return []engagement.SupportLine{}, nil
	}
	counts, err := s.engagementRepo.CountByContractService(ctx, lineIDs)
	if err != nil {
		return nil, err
	}
	hours, err := s.engagementRepo.HoursByContractService(ctx, lineIDs)
	if err != nil {
		return nil, err
	}

	out := make([]engagement.SupportLine, 0, len(lineIDs))
	for i := range contracts {
		line := contracts[i].LineForService(serviceID)
		if line == nil {
			continue
		}
		used, ok := hours[line.ID]
		if !ok {
			used = decimal.Zero
		}
		out = append(out, supportLine(&contracts[i], line, used, counts[line.ID]))
	}
	return out, nil
}

// Detail returns the engagements, daily histogram and status stats of one contract's support line.
// sort accepts -created_at (default), created_at, hours_used, -hours_used, name and -name.
func (s *SupportReportService) Detail(ctx context.Context, customerID, serviceID, contractID uuid.UUID, sort string) (*SupportDetailResponse, error) {
	c, err := s.contractRepo.FindByIDForCustomer(ctx, customerID, contractID)
	if err != nil {
		return nil, err
	}
	line := c.LineForService(serviceID)
	if line == nil {
		return nil, shared.ErrNotFound
	}

	items, err := s.engagementRepo.FindByContractService(ctx, line.ID, engagement.ParseSupportSort(sort))
	if err != nil {
		return nil, err
	}
	histogram, err := s.engagementRepo.DailyHours(ctx, line.ID)
	if err != nil {
		return nil, err
	}
	counts, err := s.engagementRepo.StatusCounts(ctx, line.ID)
	if err != nil {
		return nil, err
	}
	total, err := s.engagementRepo.ServiceHours(ctx, line.ID, nil)
	if err != nil {
		return nil, err
	}

	resp := &SupportDetailResponse{
		Line:        supportLine(c, line, total, int64(len(items))),
		Engagements: make([]SupportEngagement, len(items)),
		Histogram:   histogram,
		Stats:       engagement.NewStats(counts, total),
	}
	if resp.Histogram == nil {
		resp.Histogram = []engagement.DailyHours{}
	}
	for i := range items {
		resp.Engagements[i] = SupportEngagement{
			EngagementResponse: ToEngagementResponse(&items[i].Engagement),
			TotalHours:         items[i].TotalHours,
		}
	}
	return resp, nil
}

func supportLine(c *contract.Contract, line *contract.ContractService, used decimal.Decimal, count int64) engagement.SupportLine {
	contracted := decimal.NewFromInt(int64(line.Quantity))
	return engagement.SupportLine{
		ContractID:        c.ID,
		ContractNumber:    c.ContractNumber,
		ContractStatus:    string(c.Status),
		ContractServiceID: line.ID,
		StartDate:         c.StartDate,
		EndDate:           c.EndDate,
		ContractedHours:   contracted,
		TotalHours:        used,
		RemainingHours:    contracted.Sub(used),
		EngagementCount:   count,
	}
}
