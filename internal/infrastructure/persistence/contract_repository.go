package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/contract"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/scg/portal/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormContractRepository implements ContractRepository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

func (r *GormContractRepository) withLines(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("contract_services.id")
	}).Preload("Lines.Service")
}

// FindByID finds a contract by ID regardless of owner
func (r *GormContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	var model models.ContractModel
	if err := r.withLines(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForCustomer finds a contract by ID within a customer
func (r *GormContractRepository) FindByIDForCustomer(ctx context.Context, customerID, id uuid.UUID) (*contract.Contract, error) {
	var model models.ContractModel
	if err := r.withLines(ctx).
		Where("customer_id = ? AND id = ?", customerID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForCustomer lists a customer's contracts
func (r *GormContractRepository) FindAllForCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]contract.Contract, error) {
	var contractModels []models.ContractModel
	query := r.applyFilterWithoutPagination(r.withLines(ctx).Model(&models.ContractModel{}).Where("customer_id = ?", customerID), filter)
	query = paginate(query, filter)
	query = query.Order(ValidateSortField(filter.OrderBy, ContractSortFields, "created_at") + " " + orderDir(filter, "DESC"))

	if err := query.Find(&contractModels).Error; err != nil {
		return nil, err
	}
	return toContracts(contractModels), nil
}

// CountForCustomer counts a customer's contracts matching the filter
func (r *GormContractRepository) CountForCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.ContractModel{}).Where("customer_id = ?", customerID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByStatuses lists a customer's contracts in any of the given statuses
func (r *GormContractRepository) FindByStatuses(ctx context.Context, customerID uuid.UUID, statuses []contract.Status) ([]contract.Contract, error) {
	if len(statuses) == 0 {
		return []contract.Contract{}, nil
	}
	var contractModels []models.ContractModel
	if err := r.withLines(ctx).
		Where("customer_id = ? AND status IN ?", customerID, statuses).
		Order("start_date DESC").
		Find(&contractModels).Error; err != nil {
		return nil, err
	}
	return toContracts(contractModels), nil
}

// FindByService lists a customer's contracts containing the service
func (r *GormContractRepository) FindByService(ctx context.Context, customerID, serviceID uuid.UUID) ([]contract.Contract, error) {
	var contractModels []models.ContractModel
	if err := r.withLines(ctx).
		Where("customer_id = ?", customerID).
		Where("id IN (?)", r.db.Model(&models.ContractServiceModel{}).Select("contract_id").Where("service_id = ?", serviceID)).
		Order("start_date DESC").
		Find(&contractModels).Error; err != nil {
		return nil, err
	}
	return toContracts(contractModels), nil
}

// FindIDsWithService lists the IDs of every contract containing the service
func (r *GormContractRepository) FindIDsWithService(ctx context.Context, serviceID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.ContractServiceModel{}).
		Distinct("contract_id").
		Where("service_id = ?", serviceID).
		Pluck("contract_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// FindLine finds a single contract line by ID
func (r *GormContractRepository) FindLine(ctx context.Context, lineID uuid.UUID) (*contract.ContractService, error) {
	var model models.ContractServiceModel
	if err := r.db.WithContext(ctx).Preload("Service").First(&model, "id = ?", lineID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	line := model.ToDomain()
	return &line, nil
}

// Save creates or updates a contract and replaces its lines
func (r *GormContractRepository) Save(ctx context.Context, c *contract.Contract) error {
	model := models.ContractModelFromDomain(c)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveAggregate(tx, model, &c.BaseAggregateRoot); err != nil {
			return err
		}

		keep := make([]uuid.UUID, 0, len(model.Lines))
		for _, line := range model.Lines {
			keep = append(keep, line.ID)
		}
		stale := tx.Where("contract_id = ?", c.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&models.ContractServiceModel{}).Error; err != nil {
			return err
		}

		if len(model.Lines) == 0 {
			return nil
		}
		return tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "discount"}),
		}).Create(&model.Lines).Error
	})
}

// SaveTotals persists only the computed totals
func (r *GormContractRepository) SaveTotals(ctx context.Context, c *contract.Contract) error {
	result := r.db.WithContext(ctx).
		Model(&models.ContractModel{}).
		Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"sub_total":  c.SubTotal,
			"total":      c.Total,
			"balance":    c.Balance,
			"updated_at": c.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a contract and its lines; reports keep a null contract
func (r *GormContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ReportModel{}).Where("contract_id = ?", id).Update("contract_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.ContractServiceModel{}, "contract_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ContractModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ExistsByNumber checks if a contract number is taken
func (r *GormContractRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ContractModel{}).
		Where("contract_number = ?", number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormContractRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(contract_number) LIKE ?", likePattern(filter.Search))
	}
	if v, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", v)
	}
	return query
}

func toContracts(contractModels []models.ContractModel) []contract.Contract {
	contracts := make([]contract.Contract, len(contractModels))
	for i := range contractModels {
		contracts[i] = *contractModels[i].ToDomain()
	}
	return contracts
}

var _ contract.ContractRepository = (*GormContractRepository)(nil)
