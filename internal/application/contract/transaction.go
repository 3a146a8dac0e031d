package contract

import (
	"context"

	"github.com/scg/portal/internal/domain/billing"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/contract"
)

// TransactionScope runs a function inside one database transaction.
// If the function returns an error, the transaction is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to the repositories bound to the
// current transaction. A payment and the contract totals it changes are
// always written together, priced from the catalog as seen by that transaction.
type TransactionalRepositories interface {
	ContractRepo() contract.ContractRepository
	PaymentRepo() billing.PaymentRepository
	ServiceRepo() catalog.ServiceRepository
}

// NoOpTransactionScope runs the function against plain repositories.
// It is used by tests and by tools that do not need atomic writes.
type NoOpTransactionScope struct {
	contractRepo contract.ContractRepository
	paymentRepo  billing.PaymentRepository
	serviceRepo  catalog.ServiceRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(
	contractRepo contract.ContractRepository,
	paymentRepo billing.PaymentRepository,
	serviceRepo catalog.ServiceRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{contractRepo: contractRepo, paymentRepo: paymentRepo, serviceRepo: serviceRepo}
}

// Execute calls fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ContractRepo returns the contract repository
func (s *NoOpTransactionScope) ContractRepo() contract.ContractRepository {
	return s.contractRepo
}

// PaymentRepo returns the payment repository
func (s *NoOpTransactionScope) PaymentRepo() billing.PaymentRepository {
	return s.paymentRepo
}

// ServiceRepo returns the service catalog repository
func (s *NoOpTransactionScope) ServiceRepo() catalog.ServiceRepository {
	return s.serviceRepo
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
