package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrDuplicateReportType is returned when a report type name is already used
var ErrDuplicateReportType = shared.NewDomainError("ALREADY_EXISTS", "Report type with this name already exists")

// ReportTypeService manages report types
type ReportTypeService struct {
	reportTypeRepo catalog.ReportTypeRepository
	logger         *zap.Logger
}

// NewReportTypeService creates a new ReportTypeService
func NewReportTypeService(reportTypeRepo catalog.ReportTypeRepository, logger *zap.Logger) *ReportTypeService {
	return &ReportTypeService{reportTypeRepo: reportTypeRepo, logger: logger}
}

// Create creates a report type
func (s *ReportTypeService) Create(ctx context.Context, req CreateReportTypeRequest) (*ReportTypeResponse, error) {
	exists, err := s.reportTypeRepo.ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateReportType
	}

	rt, err := catalog.NewReportType(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if rt.Kind() == catalog.ReportKindUnknown {
		s.logger.Info("Report type has no dedicated report views",
			zap.String("name", rt.Name))
	}
	if err := s.reportTypeRepo.Save(ctx, rt); err != nil {
		return nil, err
	}
	resp := ToReportTypeResponse(rt)
	return &resp, nil
}

// Update changes a report type
func (s *ReportTypeService) Update(ctx context.Context, id uuid.UUID, req UpdateReportTypeRequest) (*ReportTypeResponse, error) {
	rt, err := s.reportTypeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(req.Name), rt.Name) {
		exists, err := s.reportTypeRepo.ExistsByName(ctx, req.Name)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDuplicateReportType
		}
	}

	active := rt.IsActive
	if req.IsActive != nil {
		active = *req.IsActive
	}
	if err := rt.Update(req.Name, req.Description, active); err != nil {
		return nil, err
	}
	if err := s.reportTypeRepo.Save(ctx, rt); err != nil {
		return nil, err
	}
	resp := ToReportTypeResponse(rt)
	return &resp, nil
}

// Delete removes a report type. Services pointing at it keep a null report type.
func (s *ReportTypeService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.reportTypeRepo.Delete(ctx, id)
}

// GetByID returns a report type
func (s *ReportTypeService) GetByID(ctx context.Context, id uuid.UUID) (*ReportTypeResponse, error) {
	rt, err := s.reportTypeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToReportTypeResponse(rt)
	return &resp, nil
}

// List returns every report type ordered by name
func (s *ReportTypeService) List(ctx context.Context, search string) ([]ReportTypeResponse, int64, error) {
	filter := shared.Filter{Search: search, OrderBy: "name", OrderDir: "asc"}
	types, err := s.reportTypeRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.reportTypeRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToReportTypeResponses(types), total, nil
}
