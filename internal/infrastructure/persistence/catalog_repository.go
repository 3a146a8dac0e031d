package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/scg/portal/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormServiceRepository implements ServiceRepository using GORM
type GormServiceRepository struct {
	db *gorm.DB
}

// NewGormServiceRepository creates a new GormServiceRepository
func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

// FindByID finds a service by ID with its report type
func (r *GormServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	var model models.ServiceModel
	if err := r.db.WithContext(ctx).Preload("ReportType").First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds services by IDs with their report types
func (r *GormServiceRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Service, error) {
	if len(ids) == 0 {
		return []catalog.Service{}, nil
	}
	var serviceModels []models.ServiceModel
	if err := r.db.WithContext(ctx).
		Preload("ReportType").
		Where("id IN ?", ids).
		Order("name ASC").
		Find(&serviceModels).Error; err != nil {
		return nil, err
	}
	return toServices(serviceModels), nil
}

// FindAll finds services matching the filter
func (r *GormServiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Service, error) {
	var serviceModels []models.ServiceModel
	query := r.db.WithContext(ctx).Model(&models.ServiceModel{}).Preload("ReportType")
	query = r.applyFilterWithoutPagination(query, filter)
	query = paginate(query, filter)
	query = query.Order(ValidateSortField(filter.OrderBy, ServiceSortFields, "name") + " " + orderDir(filter, "ASC"))

	if err := query.Find(&serviceModels).Error; err != nil {
		return nil, err
	}
	return toServices(serviceModels), nil
}

// Count counts services matching the filter
func (r *GormServiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.ServiceModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a service
func (r *GormServiceRepository) Save(ctx context.Context, service *catalog.Service) error {
	return saveAggregate(r.db.WithContext(ctx), models.ServiceModelFromDomain(service), &service.BaseAggregateRoot)
}

// Delete deletes a service
func (r *GormServiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ServiceModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByCode checks if a service code is taken
func (r *GormServiceRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ServiceModel{}).
		Where("service_code = ?", strings.TrimSpace(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormServiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(service_code) LIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "report_type_id":
			query = query.Where("report_type_id = ?", value)
		}
	}
	return query
}

func toServices(serviceModels []models.ServiceModel) []catalog.Service {
	services := make([]catalog.Service, len(serviceModels))
	for i := range serviceModels {
		services[i] = *serviceModels[i].ToDomain()
	}
	return services
}

// GormReportTypeRepository implements ReportTypeRepository using GORM
type GormReportTypeRepository struct {
	db *gorm.DB
}

// NewGormReportTypeRepository creates a new GormReportTypeRepository
func NewGormReportTypeRepository(db *gorm.DB) *GormReportTypeRepository {
	return &GormReportTypeRepository{db: db}
}

// FindByID finds a report type by ID
func (r *GormReportTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ReportType, error) {
	var model models.ReportTypeModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists report types
func (r *GormReportTypeRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.ReportType, error) {
	var typeModels []models.ReportTypeModel
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.ReportTypeModel{}), filter)
	query = paginate(query, filter)
	query = query.Order(ValidateSortField(filter.OrderBy, ReportTypeSortFields, "name") + " " + orderDir(filter, "ASC"))

	if err := query.Find(&typeModels).Error; err != nil {
		return nil, err
	}
	types := make([]catalog.ReportType, len(typeModels))
	for i := range typeModels {
		types[i] = *typeModels[i].ToDomain()
	}
	return types, nil
}

// Count counts report types matching the filter
func (r *GormReportTypeRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.ReportTypeModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a report type
func (r *GormReportTypeRepository) Save(ctx context.Context, rt *catalog.ReportType) error {
	return saveAggregate(r.db.WithContext(ctx), models.ReportTypeModelFromDomain(rt), &rt.BaseAggregateRoot)
}

// Delete removes a report type and detaches the services that referenced it
func (r *GormReportTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ServiceModel{}).
			Where("report_type_id = ?", id).
			Update("report_type_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ReportTypeModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ExistsByName checks if a report type name is taken, ignoring case
func (r *GormReportTypeRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ReportTypeModel{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormReportTypeRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(filter.Search))
	}
	if v, ok := filter.Filters["is_active"]; ok {
		query = query.Where("is_active = ?", v)
	}
	return query
}

// paginate applies offset and limit when the filter asks for a page
func paginate(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		return query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// orderDir returns the validated direction, or def when no explicit ordering was requested
func orderDir(filter shared.Filter, def string) string {
	if filter.OrderBy == "" && filter.OrderDir == "" {
		return def
	}
	return ValidateSortOrder(filter.OrderDir)
}

var (
	_ catalog.ServiceRepository    = (*GormServiceRepository)(nil)
	_ catalog.ReportTypeRepository = (*GormReportTypeRepository)(nil)
)
