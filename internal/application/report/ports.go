package report

import (
	"context"

	"github.com/scg/portal/internal/domain/report"
	"github.com/scg/portal/internal/domain/signature"
)

// ObjectStorage archives raw uploads
type ObjectStorage interface {
	// Upload stores data under key
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	// DeleteObject removes the object stored under key
	DeleteObject(ctx context.Context, key string) error
}

// ReportPrinter renders a report summary to PDF
type ReportPrinter interface {
	PrintReport(ctx context.Context, doc *ReportDocument) ([]byte, error)
}

// TransactionScope runs a function inside one database transaction.
// If the function returns an error, the transaction is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to the repositories bound to the
// current transaction. Burp issue types created for an upload are committed
// together with the report that references them.
type TransactionalRepositories interface {
	ReportRepo() report.ReportRepository
	BurpSignatureRepo() signature.BurpSuiteSignatureRepository
}

// NoOpTransactionScope runs the function against the plain repositories
type NoOpTransactionScope struct {
	reportRepo report.ReportRepository
	burpRepo   signature.BurpSuiteSignatureRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(reportRepo report.ReportRepository, burpRepo signature.BurpSuiteSignatureRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{reportRepo: reportRepo, burpRepo: burpRepo}
}

// Execute calls fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ReportRepo returns the report repository
func (s *NoOpTransactionScope) ReportRepo() report.ReportRepository {
	return s.reportRepo
}

// BurpSignatureRepo returns the Burp issue type repository
func (s *NoOpTransactionScope) BurpSignatureRepo() signature.BurpSuiteSignatureRepository {
	return s.burpRepo
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
