package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	appevent "github.com/scg/portal/internal/application/event"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrDuplicateServiceCode is returned when a service code is already used
var ErrDuplicateServiceCode = shared.NewDomainError("ALREADY_EXISTS", "Service with this code already exists")

// ServiceCatalogService manages the billable services
type ServiceCatalogService struct {
	serviceRepo    catalog.ServiceRepository
	reportTypeRepo catalog.ReportTypeRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewServiceCatalogService creates a new ServiceCatalogService
func NewServiceCatalogService(
	serviceRepo catalog.ServiceRepository,
	reportTypeRepo catalog.ReportTypeRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *ServiceCatalogService {
	return &ServiceCatalogService{
		serviceRepo:    serviceRepo,
		reportTypeRepo: reportTypeRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Create adds a service to the catalog
func (s *ServiceCatalogService) Create(ctx context.Context, req CreateServiceRequest) (*ServiceResponse, error) {
	exists, err := s.serviceRepo.ExistsByCode(ctx, strings.TrimSpace(req.ServiceCode))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateServiceCode
	}

	svc, err := catalog.NewService(req.ServiceCode, req.Name, req.Price)
	if err != nil {
		return nil, err
	}
	svc.Description = req.Description
	if err := s.linkReportType(ctx, svc, req.ReportTypeID); err != nil {
		return nil, err
	}

	if err := s.serviceRepo.Save(ctx, svc); err != nil {
		return nil, err
	}
	appevent.PublishPending(ctx, s.eventPublisher, s.logger, svc)

	resp := ToServiceResponse(svc)
	return &resp, nil
}

// Update changes a service. A price change publishes ServicePriceChanged,
// which refreshes the totals of the contracts that carry the service.
func (s *ServiceCatalogService) Update(ctx context.Context, id uuid.UUID, req UpdateServiceRequest) (*ServiceResponse, error) {
	svc, err := s.serviceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ServiceCode != nil && strings.TrimSpace(*req.ServiceCode) != svc.ServiceCode {
		exists, err := s.serviceRepo.ExistsByCode(ctx, strings.TrimSpace(*req.ServiceCode))
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDuplicateServiceCode
		}
		if err := svc.UpdateCode(*req.ServiceCode); err != nil {
			return nil, err
		}
	}
	if err := svc.Update(req.Name, req.Description, req.Price); err != nil {
		return nil, err
	}
	if err := s.linkReportType(ctx, svc, req.ReportTypeID); err != nil {
		return nil, err
	}

	if err := s.serviceRepo.Save(ctx, svc); err != nil {
		return nil, err
	}
	appevent.PublishPending(ctx, s.eventPublisher, s.logger, svc)

	resp := ToServiceResponse(svc)
	return &resp, nil
}

// Delete removes a service from the catalog
func (s *ServiceCatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.serviceRepo.Delete(ctx, id)
}

// GetByID returns a service with its report type
func (s *ServiceCatalogService) GetByID(ctx context.Context, id uuid.UUID) (*ServiceResponse, error) {
	svc, err := s.serviceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToServiceResponse(svc)
	return &resp, nil
}

// List returns a page of services
func (s *ServiceCatalogService) List(ctx context.Context, filter ServiceListFilter) ([]ServiceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.IsActive != nil {
		domainFilter.Filters["is_active"] = *filter.IsActive
	}
	if filter.ReportTypeID != "" {
		rtID, err := uuid.Parse(filter.ReportTypeID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_ID", "Invalid report type ID")
		}
		domainFilter.Filters["report_type_id"] = rtID
	}

	services, err := s.serviceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.serviceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToServiceResponses(services), total, nil
}

// Activate makes a service available for new contracts
func (s *ServiceCatalogService) Activate(ctx context.Context, id uuid.UUID) (*ServiceResponse, error) {
	return s.toggle(ctx, id, (*catalog.Service).Activate)
}

// Deactivate withdraws a service from new contracts
func (s *ServiceCatalogService) Deactivate(ctx context.Context, id uuid.UUID) (*ServiceResponse, error) {
	return s.toggle(ctx, id, (*catalog.Service).Deactivate)
}

func (s *ServiceCatalogService) toggle(ctx context.Context, id uuid.UUID, apply func(*catalog.Service) error) (*ServiceResponse, error) {
	svc, err := s.serviceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(svc); err != nil {
		return nil, err
	}
	if err := s.serviceRepo.Save(ctx, svc); err != nil {
		return nil, err
	}
	resp := ToServiceResponse(svc)
	return &resp, nil
}

func (s *ServiceCatalogService) linkReportType(ctx context.Context, svc *catalog.Service, reportTypeID *uuid.UUID) error {
	if reportTypeID == nil || *reportTypeID == uuid.Nil {
		svc.SetReportType(nil)
		return nil
	}
	rt, err := s.reportTypeRepo.FindByID(ctx, *reportTypeID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_REPORT_TYPE", "Report type does not exist")
		}
		return err
	}
	svc.SetReportType(rt)
	return nil
}
