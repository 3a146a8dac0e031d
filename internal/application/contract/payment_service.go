package contract

import (
	"context"
	"errors"

	"github.com/google/uuid"
	appevent "github.com/scg/portal/internal/application/event"
	"github.com/scg/portal/internal/domain/billing"
	"github.com/scg/portal/internal/domain/contract"
	"github.com/scg/portal/internal/domain/shared"
	"go.uber.org/zap"
)

var (
	// ErrForeignContract is returned when a payment targets another customer's contract
	ErrForeignContract = shared.NewDomainError("FORBIDDEN", "Invalid contract for this customer.")
	// ErrForeignPayment is returned when a payment of another customer is requested
	ErrForeignPayment = shared.NewDomainError("FORBIDDEN", "You do not have permission to view this payment.")
)

// PaymentService records and reads payments against contracts
type PaymentService struct {
	paymentRepo    billing.PaymentRepository
	contractRepo   contract.ContractRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo billing.PaymentRepository,
	contractRepo contract.ContractRepository,
	txScope TransactionScope,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo:    paymentRepo,
		contractRepo:   contractRepo,
		txScope:        txScope,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Record stores a payment and recomputes the contract balance in the same transaction
func (s *PaymentService) Record(ctx context.Context, customerID uuid.UUID, req RecordPaymentRequest) (*PaymentResponse, error) {
	paidOn, err := shared.ParseDate("payment date", req.PaymentDate)
	if err != nil {
		return nil, err
	}

	var (
		payment *billing.Payment
		c       *contract.Contract
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		c, err = repos.ContractRepo().FindByID(ctx, req.ContractID)
		if errors.Is(err, shared.ErrNotFound) {
			return ErrForeignContract
		}
		if err != nil {
			return err
		}
		if !c.BelongsTo(customerID) {
			return ErrForeignContract
		}

		exists, err := repos.PaymentRepo().ExistsByInvoiceNumber(ctx, req.InvoiceNumber)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError("ALREADY_EXISTS", "Payment with this invoice number already exists")
		}

		payment, err = billing.NewPayment(customerID, c.ID, req.Amount, paidOn, billing.Method(req.Method), req.InvoiceNumber, req.Notes)
		if err != nil {
			return err
		}
		if req.CreatedBy != nil {
			payment.SetCreatedBy(*req.CreatedBy)
		}
		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return err
		}

		if err := refreshPrices(ctx, repos.ServiceRepo(), c); err != nil {
			return err
		}
		paid, err := repos.PaymentRepo().SumByContract(ctx, c.ID)
		if err != nil {
			return err
		}
		c.Recalculate(paid)
		return repos.ContractRepo().SaveTotals(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	appevent.PublishPending(ctx, s.eventPublisher, s.logger, payment, c)

	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// ListByContract returns the payments of one of the customer's contracts
func (s *PaymentService) ListByContract(ctx context.Context, customerID, contractID uuid.UUID) ([]PaymentResponse, error) {
	c, err := s.contractRepo.FindByIDForCustomer(ctx, customerID, contractID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindByContract(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return ToPaymentResponses(payments), nil
}

// Get returns a payment of the customer
func (s *PaymentService) Get(ctx context.Context, customerID, paymentID uuid.UUID) (*PaymentResponse, error) {
	p, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !p.BelongsTo(customerID) {
		return nil, ErrForeignPayment
	}
	resp := ToPaymentResponse(p)
	return &resp, nil
}
