package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/report"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/scg/portal/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// defaultFindingBatchSize bounds the findings inserted per statement
const defaultFindingBatchSize = 1000

// GormReportRepository implements ReportRepository using GORM
type GormReportRepository struct {
	db        *gorm.DB
	batchSize int
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db, batchSize: defaultFindingBatchSize}
}

// WithFindingBatchSize sets how many findings go into one INSERT
func (r *GormReportRepository) WithFindingBatchSize(n int) *GormReportRepository {
	if n > 0 {
		r.batchSize = n
	}
	return r
}

// FindByIDForService finds a report of a customer and service
func (r *GormReportRepository) FindByIDForService(ctx context.Context, customerID, serviceID, id uuid.UUID) (*report.Report, error) {
	var model models.ReportModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ? AND service_id = ? AND id = ?", customerID, serviceID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByService lists a customer's reports for a service, newest first
func (r *GormReportRepository) FindByService(ctx context.Context, customerID, serviceID uuid.UUID, filter shared.Filter) ([]report.Report, int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&models.ReportModel{}).
		Where("customer_id = ? AND service_id = ?", customerID, serviceID)
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(filter.Search))
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reportModels []models.ReportModel
	query = paginate(query, filter).
		Order(ValidateSortField(filter.OrderBy, ReportSortFields, "created_at") + " " + orderDir(filter, "DESC"))
	if err := query.Find(&reportModels).Error; err != nil {
		return nil, 0, err
	}

	reports := make([]report.Report, len(reportModels))
	for i := range reportModels {
		reports[i] = *reportModels[i].ToDomain()
	}
	return reports, total, nil
}

// CountByServices counts a customer's reports per service
func (r *GormReportRepository) CountByServices(ctx context.Context, customerID uuid.UUID, serviceIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(serviceIDs))
	if len(serviceIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		ServiceID uuid.UUID
		Count     int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ReportModel{}).
		Select("service_id, COUNT(*) AS count").
		Where("customer_id = ? AND service_id IN ?", customerID, serviceIDs).
		Group("service_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ServiceID] = row.Count
	}
	return counts, nil
}

// CreateNessus stores a Nessus report and its findings
func (r *GormReportRepository) CreateNessus(ctx context.Context, rep *report.Report, findings []report.NessusFinding) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.ReportModelFromDomain(rep)).Error; err != nil {
			return err
		}
		if len(findings) == 0 {
			return nil
		}
		rows := make([]models.NessusFindingModel, len(findings))
		for i := range findings {
			rows[i] = models.NessusFindingModelFromDomain(findings[i])
		}
		return tx.CreateInBatches(rows, r.batchSize).Error
	})
}

// CreateBurp stores a Burp report and its findings
func (r *GormReportRepository) CreateBurp(ctx context.Context, rep *report.Report, findings []report.BurpFinding) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.ReportModelFromDomain(rep)).Error; err != nil {
			return err
		}
		if len(findings) == 0 {
			return nil
		}
		rows := make([]models.BurpFindingModel, len(findings))
		for i := range findings {
			rows[i] = models.BurpFindingModelFromDomain(findings[i])
		}
		return tx.CreateInBatches(rows, r.batchSize).Error
	})
}

// UpdateSourceKey records where the raw upload was archived
func (r *GormReportRepository) UpdateSourceKey(ctx context.Context, id uuid.UUID, key string) error {
	result := r.db.WithContext(ctx).Model(&models.ReportModel{}).Where("id = ?", id).Update("source_key", key)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a report and its findings
func (r *GormReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.NessusFindingModel{}, "report_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.BurpFindingModel{}, "report_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ReportModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// NessusFindings lists the findings of a Nessus report
func (r *GormReportRepository) NessusFindings(ctx context.Context, reportID uuid.UUID) ([]report.NessusFinding, error) {
	var rows []models.NessusFindingModel
	if err := r.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("signature_id, target_affected").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toNessusFindings(rows), nil
}

// BurpFindings lists the findings of a Burp report
func (r *GormReportRepository) BurpFindings(ctx context.Context, reportID uuid.UUID) ([]report.BurpFinding, error) {
	var rows []models.BurpFindingModel
	if err := r.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("signature_id, host, path").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toBurpFindings(rows), nil
}

// StatusCounts counts a report's findings per status
func (r *GormReportRepository) StatusCounts(ctx context.Context, rep *report.Report) (map[report.FindingStatus]int64, error) {
	var table interface{}
	switch rep.Kind {
	case catalog.ReportKindNessus:
		table = &models.NessusFindingModel{}
	case catalog.ReportKindBurpSuite:
		table = &models.BurpFindingModel{}
	default:
		return nil, fmt.Errorf("unsupported report kind %q", rep.Kind)
	}

	var rows []struct {
		Status report.FindingStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(table).
		Select("status, COUNT(*) AS count").
		Where("report_id = ?", rep.ID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[report.FindingStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// SelectNessusFindings resolves a bulk selection to findings of the report
func (r *GormReportRepository) SelectNessusFindings(ctx context.Context, reportID uuid.UUID, sel report.BulkSelection) ([]report.NessusFinding, error) {
	query := r.db.WithContext(ctx).Model(&models.NessusFindingModel{}).Where("report_id = ?", reportID)

	switch sel.Type {
	case report.BulkSingle:
		query = query.Where("id = ?", sel.FindingID)
	case report.BulkVulnerability:
		query = query.Where("signature_id = (?)",
			r.db.Model(&models.NessusFindingModel{}).Select("signature_id").Where("id = ? AND report_id = ?", sel.FindingID, reportID))
	case report.BulkRiskFactor:
		query = query.Where("signature_id IN (?)",
			r.db.Table("nessus_signatures").Select("id").Where("risk_factor = ?", sel.RiskFactor))
	default:
		return nil, shared.NewDomainError("INVALID_BULK_TYPE", fmt.Sprintf("Invalid bulk type: %s", sel.Type))
	}

	var rows []models.NessusFindingModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 && sel.Type != report.BulkRiskFactor {
		return nil, shared.ErrNotFound
	}
	return toNessusFindings(rows), nil
}

// SelectBurpFindings resolves a bulk selection to findings of the report
func (r *GormReportRepository) SelectBurpFindings(ctx context.Context, reportID uuid.UUID, sel report.BulkSelection) ([]report.BurpFinding, error) {
	query := r.db.WithContext(ctx).Model(&models.BurpFindingModel{}).Where("report_id = ?", reportID)

	switch sel.Type {
	case report.BulkSingle:
		query = query.Where("id = ?", sel.FindingID)
	case report.BulkSignature:
		query = query.Where("signature_id = (?)",
			r.db.Model(&models.BurpFindingModel{}).Select("signature_id").Where("id = ? AND report_id = ?", sel.FindingID, reportID))
	case report.BulkSeverity:
		query = query.Where("severity = ?", sel.Severity)
	default:
		return nil, shared.NewDomainError("INVALID_BULK_TYPE", fmt.Sprintf("Invalid bulk type: %s", sel.Type))
	}

	var rows []models.BurpFindingModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 && sel.Type != report.BulkSeverity {
		return nil, shared.ErrNotFound
	}
	return toBurpFindings(rows), nil
}

// SaveNessusStatuses writes the status trail of the given findings
func (r *GormReportRepository) SaveNessusStatuses(ctx context.Context, findings []report.NessusFinding) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range findings {
			if err := saveStatusTrail(tx, &models.NessusFindingModel{}, findings[i].ID, findings[i].StatusTrail, findings[i].UpdatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveBurpStatuses writes the status trail of the given findings
func (r *GormReportRepository) SaveBurpStatuses(ctx context.Context, findings []report.BurpFinding) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range findings {
			if err := saveStatusTrail(tx, &models.BurpFindingModel{}, findings[i].ID, findings[i].StatusTrail, findings[i].UpdatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

func saveStatusTrail(tx *gorm.DB, model interface{}, id uuid.UUID, trail report.StatusTrail, updatedAt time.Time) error {
	return tx.Model(model).Where("id = ?", id).Updates(map[string]interface{}{
		"status":            trail.Status,
		"status_changed_at": trail.ChangedAt,
		"status_changed_by": trail.ChangedBy,
		"updated_at":        updatedAt,
	}).Error
}

func toNessusFindings(rows []models.NessusFindingModel) []report.NessusFinding {
	findings := make([]report.NessusFinding, len(rows))
	for i := range rows {
		findings[i] = rows[i].ToDomain()
	}
	return findings
}

func toBurpFindings(rows []models.BurpFindingModel) []report.BurpFinding {
	findings := make([]report.BurpFinding, len(rows))
	for i := range rows {
		findings[i] = rows[i].ToDomain()
	}
	return findings
}

var _ report.ReportRepository = (*GormReportRepository)(nil)
