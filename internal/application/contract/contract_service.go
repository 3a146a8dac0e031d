package contract

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	appevent "github.com/scg/portal/internal/application/event"
	"github.com/scg/portal/internal/domain/billing"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/contract"
	"github.com/scg/portal/internal/domain/customer"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxNumberAttempts bounds the -N suffix search for a free contract number
const maxNumberAttempts = 100

// ContractService handles contract use cases
type ContractService struct {
	contractRepo   contract.ContractRepository
	paymentRepo    billing.PaymentRepository
	serviceRepo    catalog.ServiceRepository
	customerRepo   customer.CustomerRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewContractService creates a new ContractService
func NewContractService(
	contractRepo contract.ContractRepository,
	paymentRepo billing.PaymentRepository,
	serviceRepo catalog.ServiceRepository,
	customerRepo customer.CustomerRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *ContractService {
	return &ContractService{
		contractRepo:   contractRepo,
		paymentRepo:    paymentRepo,
		serviceRepo:    serviceRepo,
		customerRepo:   customerRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
		now:            time.Now,
	}
}

// Create creates a contract with its lines for a customer
func (s *ContractService) Create(ctx context.Context, customerID uuid.UUID, req CreateContractRequest) (*ContractResponse, error) {
	cust, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	start, end, err := parsePeriod(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	services, err := s.resolveServices(ctx, req.Lines)
	if err != nil {
		return nil, err
	}
	number, err := s.nextNumber(ctx)
	if err != nil {
		return nil, err
	}

	c, err := contract.NewContract(customerID, cust.CreatedOn(), number, start, end, req.Discount, req.Taxes, req.Notes)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		c.SetCreatedBy(*req.CreatedBy)
	}
	if req.Status != "" {
		if err := c.ChangeStatus(contract.Status(req.Status)); err != nil {
			return nil, err
		}
	}
	if err := replaceLines(c, req.Lines, services); err != nil {
		return nil, err
	}
	c.Recalculate(decimal.Zero)

	if err := s.contractRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	appevent.PublishPending(ctx, s.eventPublisher, s.logger, c)

	resp := ToContractResponse(c, true)
	return &resp, nil
}

// Update replaces the header fields and lines of a contract
func (s *ContractService) Update(ctx context.Context, customerID, contractID uuid.UUID, req UpdateContractRequest) (*ContractResponse, error) {
	c, err := s.contractRepo.FindByIDForCustomer(ctx, customerID, contractID)
	if err != nil {
		return nil, err
	}
	cust, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	start, end, err := parsePeriod(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	services, err := s.resolveServices(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	taxes := c.Taxes
	if req.Taxes != nil {
		taxes = *req.Taxes
	}
	if err := c.UpdateTerms(cust.CreatedOn(), start, end, req.Discount, taxes, req.Notes); err != nil {
		return nil, err
	}
	if req.Status != "" {
		if err := c.ChangeStatus(contract.Status(req.Status)); err != nil {
			return nil, err
		}
	}
	if err := replaceLines(c, req.Lines, services); err != nil {
		return nil, err
	}
	if err := s.recalculate(ctx, s.paymentRepo, c); err != nil {
		return nil, err
	}

	if err := s.contractRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	appevent.PublishPending(ctx, s.eventPublisher, s.logger, c)

	resp := ToContractResponse(c, true)
	return &resp, nil
}

// Delete removes a contract; its reports stay with no contract
func (s *ContractService) Delete(ctx context.Context, customerID, contractID uuid.UUID) error {
	c, err := s.contractRepo.FindByIDForCustomer(ctx, customerID, contractID)
	if err != nil {
		return err
	}
	c.MarkDeleted()
	if err := s.contractRepo.Delete(ctx, c.ID); err != nil {
		return err
	}
	appevent.PublishPending(ctx, s.eventPublisher, s.logger, c)
	return nil
}

// ChangeStatus moves a contract to another status
func (s *ContractService) ChangeStatus(ctx context.Context, customerID, contractID uuid.UUID, req ChangeStatusRequest) (*ContractResponse, error) {
	c, err := s.contractRepo.FindByIDForCustomer(ctx, customerID, contractID)
	if err != nil {
		return nil, err
	}
	if err := c.ChangeStatus(contract.Status(req.Status)); err != nil {
		return nil, err
	}
	if err := s.contractRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	appevent.PublishPending(ctx, s.eventPublisher, s.logger, c)

	resp := ToContractResponse(c, false)
	return &resp, nil
}

// AddLine places a service on a contract and returns the refreshed totals
func (s *ContractService) AddLine(ctx context.Context, customerID, contractID uuid.UUID, req ContractLineInput) (*ContractTotalsResponse, error) {
	c, err := s.contractRepo.FindByIDForCustomer(ctx, customerID, contractID)
	if err != nil {
		return nil, err
	}
	svc, err := s.serviceRepo.FindByID(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if _, err := c.AddLine(svc.ID, svc.Name, svc.Price, req.Quantity, req.Discount); err != nil {
		return nil, err
	}
	return s.saveWithTotals(ctx, c)
}

// RemoveLine takes a line off a contract and returns the refreshed totals
func (s *ContractService) RemoveLine(ctx context.Context, customerID, contractID, lineID uuid.UUID) (*ContractTotalsResponse, error) {
	c, err := s.contractRepo.FindByIDForCustomer(ctx, customerID, contractID)
	if err != nil {
		return nil, err
	}
	if _, err := c.RemoveLine(lineID); err != nil {
		return nil, err
	}
	return s.saveWithTotals(ctx, c)
}

// Get returns a contract with its line breakdown and payments
func (s *ContractService) Get(ctx context.Context, customerID, contractID uuid.UUID) (*ContractDetailResponse, error) {
	c, err := s.contractRepo.FindByIDForCustomer(ctx, customerID, contractID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindByContract(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return &ContractDetailResponse{
		ContractResponse: ToContractResponse(c, true),
		TotalPaid:        billing.SumAmounts(payments),
		Payments:         ToPaymentResponses(payments),
	}, nil
}

// List returns a page of a customer's contracts
func (s *ContractService) List(ctx context.Context, customerID uuid.UUID, f ContractListFilter) (*shared.Paginated[ContractResponse], error) {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
		filter.OrderDir = f.OrderDir
	}
	if f.Status != "" {
		status := contract.Status(f.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", "Invalid status")
		}
		filter = filter.With("status", string(status))
	}

	contracts, err := s.contractRepo.FindAllForCustomer(ctx, customerID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.contractRepo.CountForCustomer(ctx, customerID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]ContractResponse, len(contracts))
	for i := range contracts {
		items[i] = ToContractResponse(&contracts[i], false)
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Recalculate refreshes prices and totals of a contract, used after catalog price changes
func (s *ContractService) Recalculate(ctx context.Context, contractID uuid.UUID) error {
	c, err := s.contractRepo.FindByID(ctx, contractID)
	if err != nil {
		return err
	}
	if err := s.recalculate(ctx, s.paymentRepo, c); err != nil {
		return err
	}
	if err := s.contractRepo.SaveTotals(ctx, c); err != nil {
		return err
	}
	appevent.PublishPending(ctx, s.eventPublisher, s.logger, c)
	return nil
}

func (s *ContractService) saveWithTotals(ctx context.Context, c *contract.Contract) (*ContractTotalsResponse, error) {
	if err := s.recalculate(ctx, s.paymentRepo, c); err != nil {
		return nil, err
	}
	if err := s.contractRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	appevent.PublishPending(ctx, s.eventPublisher, s.logger, c)

	resp := ToContractTotalsResponse(c)
	return &resp, nil
}

// recalculate refreshes unit prices from the catalog and recomputes totals
// against the payments recorded so far.
func (s *ContractService) recalculate(ctx context.Context, payments billing.PaymentRepository, c *contract.Contract) error {
	if err := refreshPrices(ctx, s.serviceRepo, c); err != nil {
		return err
	}
	paid, err := payments.SumByContract(ctx, c.ID)
	if err != nil {
		return err
	}
	c.Recalculate(paid)
	return nil
}

// nextNumber returns a free contract number, appending -1, -2, ... on collision
func (s *ContractService) nextNumber(ctx context.Context) (string, error) {
	base := contract.GenerateContractNumber(s.now())
	number := base
	for n := 2; n <= maxNumberAttempts+1; n++ {
		exists, err := s.contractRepo.ExistsByNumber(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
		number = fmt.Sprintf("%s-%d", base, n)
	}
	return "", shared.NewDomainError("ALREADY_EXISTS", "Could not allocate a contract number")
}

func (s *ContractService) resolveServices(ctx context.Context, lines []ContractLineInput) (map[uuid.UUID]*catalog.Service, error) {
	services := make(map[uuid.UUID]*catalog.Service, len(lines))
	if len(lines) == 0 {
		return services, nil
	}
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if _, dup := services[l.ServiceID]; dup {
			return nil, shared.NewDomainError("DUPLICATE_SERVICE", "A service may appear only once per contract")
		}
		services[l.ServiceID] = nil
		ids = append(ids, l.ServiceID)
	}
	found, err := s.serviceRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range found {
		services[found[i].ID] = &found[i]
	}
	for id, svc := range services {
		if svc == nil {
			return nil, shared.NewDomainError("INVALID_SERVICE", fmt.Sprintf("Service %s not found", id))
		}
	}
	return services, nil
}

// replaceLines makes the contract lines match the input: lines of services
// already on the contract are updated in place, others are added or removed.
func replaceLines(c *contract.Contract, inputs []ContractLineInput, services map[uuid.UUID]*catalog.Service) error {
	keep := make(map[uuid.UUID]bool, len(inputs))
	for _, in := range inputs {
		keep[in.ServiceID] = true
	}
	for i := len(c.Lines) - 1; i >= 0; i-- {
		if !keep[c.Lines[i].ServiceID] {
			if _, err := c.RemoveLine(c.Lines[i].ID); err != nil {
				return err
			}
		}
	}
	for _, in := range inputs {
		if line := c.LineForService(in.ServiceID); line != nil {
			if err := c.UpdateLine(line.ID, in.Quantity, in.Discount); err != nil {
				return err
			}
			continue
		}
		svc := services[in.ServiceID]
		if _, err := c.AddLine(svc.ID, svc.Name, svc.Price, in.Quantity, in.Discount); err != nil {
			return err
		}
	}
	return nil
}

func refreshPrices(ctx context.Context, serviceRepo catalog.ServiceRepository, c *contract.Contract) error {
	if len(c.Lines) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(c.Lines))
	for i := range c.Lines {
		ids[i] = c.Lines[i].ServiceID
	}
	services, err := serviceRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	prices := make(map[uuid.UUID]decimal.Decimal, len(services))
	for _, svc := range services {
		prices[svc.ID] = svc.Price
	}
	c.RefreshPrices(prices)
	return nil
}

func parsePeriod(startValue, endValue string) (time.Time, time.Time, error) {
	start, err := shared.ParseDate("start date", startValue)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := shared.ParseDate("end date", endValue)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
