package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/engagement"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/scg/portal/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormEngagementRepository implements EngagementRepository using GORM
type GormEngagementRepository struct {
	db *gorm.DB
}

// NewGormEngagementRepository creates a new GormEngagementRepository
func NewGormEngagementRepository(db *gorm.DB) *GormEngagementRepository {
	return &GormEngagementRepository{db: db}
}

var supportSortClauses = map[engagement.SupportSort]string{
	engagement.SortCreatedDesc: "engagements.created_at DESC",
	engagement.SortCreatedAsc:  "engagements.created_at ASC",
	engagement.SortHoursAsc:    "total_hours ASC, engagements.created_at DESC",
	engagement.SortHoursDesc:   "total_hours DESC, engagements.created_at DESC",
	engagement.SortNameAsc:     "engagements.name ASC",
	engagement.SortNameDesc:    "engagements.name DESC",
}

// HighestNumber returns the highest engagement number, or "" when none exist
func (r *GormEngagementRepository) HighestNumber(ctx context.Context) (string, error) {
	var numbers []string
	if err := r.db.WithContext(ctx).
		Model(&models.EngagementModel{}).
		Order("LENGTH(engagement_number) DESC, engagement_number DESC").
		Limit(1).
		Pluck("engagement_number", &numbers).Error; err != nil {
		return "", err
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}

// FindByIDForCustomer finds an engagement within a customer
func (r *GormEngagementRepository) FindByIDForCustomer(ctx context.Context, customerID, id uuid.UUID) (*engagement.Engagement, error) {
	var model models.EngagementModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ? AND id = ?", customerID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForCustomer lists a customer's engagements
func (r *GormEngagementRepository) FindAllForCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]engagement.Engagement, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.EngagementModel{}).Where("customer_id = ?", customerID)
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(engagement_number) LIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "contract_id":
			query = query.Where("contract_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "priority":
			query = query.Where("priority = ?", value)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var engagementModels []models.EngagementModel
	query = paginate(query, filter).
		Order(ValidateSortField(filter.OrderBy, EngagementSortFields, "created_at") + " " + orderDir(filter, "DESC"))
	if err := query.Find(&engagementModels).Error; err != nil {
		return nil, 0, err
	}

	engagements := make([]engagement.Engagement, len(engagementModels))
	for i := range engagementModels {
		engagements[i] = *engagementModels[i].ToDomain()
	}
	return engagements, total, nil
}

type engagementHoursRow struct {
	models.EngagementModel
	TotalHours decimal.Decimal
}

// FindByContractService lists the engagements of a support line with their hours
func (r *GormEngagementRepository) FindByContractService(ctx context.Context, contractServiceID uuid.UUID, sort engagement.SupportSort) ([]engagement.EngagementWithHours, error) {
	order, ok := supportSortClauses[sort]
	if !ok {
		order = supportSortClauses[engagement.SortCreatedDesc]
	}

	var rows []engagementHoursRow
	if err := r.db.WithContext(ctx).
		Model(&models.EngagementModel{}).
		Select("engagements.*, COALESCE(SUM(time_entries.hours_spent), 0) AS total_hours").
		Joins("LEFT JOIN time_entries ON time_entries.engagement_id = engagements.id").
		Where("engagements.contract_service_id = ?", contractServiceID).
		Group("engagements.id").
		Order(order).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]engagement.EngagementWithHours, len(rows))
	for i := range rows {
		result[i] = engagement.EngagementWithHours{
			Engagement: *rows[i].EngagementModel.ToDomain(),
			TotalHours: rows[i].TotalHours,
		}
	}
	return result, nil
}

// Save creates or updates an engagement
func (r *GormEngagementRepository) Save(ctx context.Context, e *engagement.Engagement) error {
	return saveAggregate(r.db.WithContext(ctx), models.EngagementModelFromDomain(e), &e.BaseAggregateRoot)
}

// Delete removes an engagement and its time entries
func (r *GormEngagementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.TimeEntryModel{}, "engagement_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.EngagementModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormEngagementRepository) entriesOfService(ctx context.Context, contractServiceIDs ...uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.TimeEntryModel{}).
		Joins("JOIN engagements ON engagements.id = time_entries.engagement_id").
		Where("engagements.contract_service_id IN ?", contractServiceIDs)
}

// ServiceHours sums the hours logged on a support line
func (r *GormEngagementRepository) ServiceHours(ctx context.Context, contractServiceID uuid.UUID, excludeEntryID *uuid.UUID) (decimal.Decimal, error) {
	query := r.entriesOfService(ctx, contractServiceID)
	if excludeEntryID != nil {
		query = query.Where("time_entries.id <> ?", *excludeEntryID)
	}
	var total decimal.NullDecimal
	if err := query.Select("SUM(time_entries.hours_spent)").Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// EngagementHours sums the hours logged on one engagement
func (r *GormEngagementRepository) EngagementHours(ctx context.Context, engagementID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := r.db.WithContext(ctx).
		Model(&models.TimeEntryModel{}).
		Select("SUM(hours_spent)").
		Where("engagement_id = ?", engagementID).
		Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// CountByContractService counts engagements per support line
func (r *GormEngagementRepository) CountByContractService(ctx context.Context, contractServiceIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(contractServiceIDs))
	if len(contractServiceIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		ContractServiceID uuid.UUID
		Count             int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.EngagementModel{}).
		Select("contract_service_id, COUNT(*) AS count").
		Where("contract_service_id IN ?", contractServiceIDs).
		Group("contract_service_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ContractServiceID] = row.Count
	}
	return counts, nil
}

// HoursByContractService sums hours per support line
func (r *GormEngagementRepository) HoursByContractService(ctx context.Context, contractServiceIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	hours := make(map[uuid.UUID]decimal.Decimal, len(contractServiceIDs))
	if len(contractServiceIDs) == 0 {
		return hours, nil
	}
	var rows []struct {
		ContractServiceID uuid.UUID
		Total             decimal.Decimal
	}
	if err := r.entriesOfService(ctx, contractServiceIDs...).
		Select("engagements.contract_service_id, SUM(time_entries.hours_spent) AS total").
		Group("engagements.contract_service_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		hours[row.ContractServiceID] = row.Total
	}
	return hours, nil
}

// StatusCounts counts the engagements of a support line per status
func (r *GormEngagementRepository) StatusCounts(ctx context.Context, contractServiceID uuid.UUID) (map[engagement.Status]int64, error) {
	var rows []struct {
		Status engagement.Status
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.EngagementModel{}).
		Select("status, COUNT(*) AS count").
		Where("contract_service_id = ?", contractServiceID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[engagement.Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// DailyHours returns the hours logged per date on a support line, oldest first
func (r *GormEngagementRepository) DailyHours(ctx context.Context, contractServiceID uuid.UUID) ([]engagement.DailyHours, error) {
	var rows []struct {
		Date  time.Time
		Total decimal.Decimal
	}
	if err := r.entriesOfService(ctx, contractServiceID).
		Select("time_entries.date AS date, SUM(time_entries.hours_spent) AS total").
		Group("time_entries.date").
		Order("time_entries.date ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	days := make([]engagement.DailyHours, len(rows))
	for i, row := range rows {
		days[i] = engagement.DailyHours{Date: row.Date.Format("2006-01-02"), TotalHours: row.Total}
	}
	return days, nil
}

// TimeEntries lists the entries of an engagement, newest date first
func (r *GormEngagementRepository) TimeEntries(ctx context.Context, engagementID uuid.UUID) ([]engagement.TimeEntry, error) {
	var rows []models.TimeEntryModel
	if err := r.db.WithContext(ctx).
		Where("engagement_id = ?", engagementID).
		Order("date DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]engagement.TimeEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}

// FindTimeEntry finds a time entry by ID
func (r *GormEngagementRepository) FindTimeEntry(ctx context.Context, id uuid.UUID) (*engagement.TimeEntry, error) {
	var model models.TimeEntryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SaveTimeEntry creates or updates a time entry
func (r *GormEngagementRepository) SaveTimeEntry(ctx context.Context, entry *engagement.TimeEntry) error {
	return r.db.WithContext(ctx).Save(models.TimeEntryModelFromDomain(entry)).Error
}

// DeleteTimeEntry removes a time entry
func (r *GormEngagementRepository) DeleteTimeEntry(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TimeEntryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ engagement.EngagementRepository = (*GormEngagementRepository)(nil)
