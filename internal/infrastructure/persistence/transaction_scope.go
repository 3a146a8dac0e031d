package persistence

import (
	"context"

	appcontract "github.com/scg/portal/internal/application/contract"
	appreport "github.com/scg/portal/internal/application/report"
	"github.com/scg/portal/internal/domain/billing"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/contract"
	"github.com/scg/portal/internal/domain/report"
	"github.com/scg/portal/internal/domain/signature"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appcontract.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// ContractRepo returns the contract repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ContractRepo() contract.ContractRepository {
	return NewGormContractRepository(r.tx)
}

// PaymentRepo returns the payment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PaymentRepo() billing.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// ServiceRepo returns the service catalog repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ServiceRepo() catalog.ServiceRepository {
	return NewGormServiceRepository(r.tx)
}

var _ appcontract.TransactionScope = (*GormTransactionScope)(nil)

var _ appcontract.TransactionalRepositories = (*gormTransactionalRepositories)(nil)

// GormReportTransactionScope runs report uploads and finding status changes in one transaction
type GormReportTransactionScope struct {
	db        *gorm.DB
	batchSize int
}

// NewGormReportTransactionScope creates a new GormReportTransactionScope.
// batchSize is passed to WithFindingBatchSize of the scoped report repository.
func NewGormReportTransactionScope(db *gorm.DB, batchSize int) *GormReportTransactionScope {
	return &GormReportTransactionScope{db: db, batchSize: batchSize}
}

// Execute runs fn with report repositories bound to a transaction
func (s *GormReportTransactionScope) Execute(ctx context.Context, fn func(repos appreport.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormReportRepositories{tx: tx, batchSize: s.batchSize})
	})
}

type gormReportRepositories struct {
	tx        *gorm.DB
	batchSize int
}

// ReportRepo returns the report repository scoped to the current transaction.
func (r *gormReportRepositories) ReportRepo() report.ReportRepository {
	return NewGormReportRepository(r.tx).WithFindingBatchSize(r.batchSize)
}

// BurpSignatureRepo returns the Burp issue type repository scoped to the current transaction.
func (r *gormReportRepositories) BurpSignatureRepo() signature.BurpSuiteSignatureRepository {
	return NewGormBurpSuiteSignatureRepository(r.tx)
}

var (
	_ appreport.TransactionScope          = (*GormReportTransactionScope)(nil)
	_ appreport.TransactionalRepositories = (*gormReportRepositories)(nil)
)
