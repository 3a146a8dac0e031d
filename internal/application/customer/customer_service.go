package customer

import (
	"context"
	"strings"

	"github.com/google/uuid"
	appevent "github.com/scg/portal/internal/application/event"
	"github.com/scg/portal/internal/domain/customer"
	"github.com/scg/portal/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrDuplicateName is returned when another customer already uses the name
var ErrDuplicateName = shared.NewDomainError("ALREADY_EXISTS", "Customer with this name already exists")

// CustomerService handles customer use cases
type CustomerService struct {
	customerRepo   customer.CustomerRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo customer.CustomerRepository, eventPublisher shared.EventPublisher, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		customerRepo:   customerRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	exists, err := s.customerRepo.ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateName
	}

	c, err := customer.NewCustomer(req.Name, customer.Type(req.Type))
	if err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	appevent.PublishPending(ctx, s.eventPublisher, s.logger, c)

	resp := ToCustomerResponse(c)
	return &resp, nil
}

// GetByID returns a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(c)
	return &resp, nil
}

// List returns a page of customers
func (s *CustomerService) List(ctx context.Context, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
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
	if filter.Type != "" {
		domainFilter.Filters["type"] = filter.Type
	}

	customers, err := s.customerRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToCustomerResponses(customers), total, nil
}

// ListSelectable returns the customers a user may switch to.
// Staff see every customer, everybody else only the customers they belong to.
func (s *CustomerService) ListSelectable(ctx context.Context, isStaff bool, memberOf []uuid.UUID) ([]CustomerResponse, error) {
	var (
		customers []customer.Customer
		err       error
	)
	if isStaff {
		customers, err = s.customerRepo.FindAll(ctx, shared.Filter{OrderBy: "name", OrderDir: "asc"})
	} else {
		customers, err = s.customerRepo.FindByIDs(ctx, memberOf)
	}
	if err != nil {
		return nil, err
	}
	return ToCustomerResponses(customers), nil
}

// Update changes a customer's name and type
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(req.Name), c.Name) {
		exists, err := s.customerRepo.ExistsByName(ctx, req.Name)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDuplicateName
		}
	}

	if err := c.Update(req.Name, customer.Type(req.Type)); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	appevent.PublishPending(ctx, s.eventPublisher, s.logger, c)

	resp := ToCustomerResponse(c)
	return &resp, nil
}

// Delete removes a customer together with its contracts, reports and engagements
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return err
	}
	c.MarkDeleted()
	appevent.PublishPending(ctx, s.eventPublisher, s.logger, c)

	s.logger.Info("Customer deleted",
		zap.String("customer_id", id.String()),
		zap.String("name", c.Name),
	)
	return nil
}
