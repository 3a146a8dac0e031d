package persistence

import (
	"context"
	"errors"

	"github.com/scg/portal/internal/domain/shared"
	"github.com/scg/portal/internal/domain/signature"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsertBatchSize bounds the rows sent in one INSERT ... ON CONFLICT statement
const upsertBatchSize = 500

// GormNessusSignatureRepository implements NessusSignatureRepository using GORM.
// Signatures are keyed by the scanner's plugin ID and carry their own table mapping.
type GormNessusSignatureRepository struct {
	db *gorm.DB
}

// NewGormNessusSignatureRepository creates a new GormNessusSignatureRepository
func NewGormNessusSignatureRepository(db *gorm.DB) *GormNessusSignatureRepository {
	return &GormNessusSignatureRepository{db: db}
}

// FindByID finds a signature by plugin ID
func (r *GormNessusSignatureRepository) FindByID(ctx context.Context, id int) (*signature.NessusSignature, error) {
	var sig signature.NessusSignature
	if err := r.db.WithContext(ctx).First(&sig, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sig, nil
}

// FindByIDs loads the given signatures keyed by ID; unknown IDs are absent
func (r *GormNessusSignatureRepository) FindByIDs(ctx context.Context, ids []int) (map[int]*signature.NessusSignature, error) {
	result := make(map[int]*signature.NessusSignature, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var sigs []signature.NessusSignature
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&sigs).Error; err != nil {
		return nil, err
	}
	for i := range sigs {
		result[sigs[i].ID] = &sigs[i]
	}
	return result, nil
}

// FindAll lists signatures matching the filter
func (r *GormNessusSignatureRepository) FindAll(ctx context.Context, filter shared.Filter) ([]signature.NessusSignature, error) {
	var sigs []signature.NessusSignature
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&signature.NessusSignature{}), filter)
	query = paginate(query, filter)
	query = query.Order(ValidateSortField(filter.OrderBy, NessusSignatureSortFields, "id") + " " + orderDir(filter, "ASC"))
	if err := query.Find(&sigs).Error; err != nil {
		return nil, err
	}
	return sigs, nil
}

// Count counts signatures matching the filter
func (r *GormNessusSignatureRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&signature.NessusSignature{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new signature
func (r *GormNessusSignatureRepository) Create(ctx context.Context, sig *signature.NessusSignature) error {
	return r.db.WithContext(ctx).Create(sig).Error
}

// Update replaces an existing signature
func (r *GormNessusSignatureRepository) Update(ctx context.Context, sig *signature.NessusSignature) error {
	result := r.db.WithContext(ctx).Model(&signature.NessusSignature{}).Where("id = ?", sig.ID).Select("*").Updates(sig)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a signature
func (r *GormNessusSignatureRepository) Delete(ctx context.Context, id int) error {
	result := r.db.WithContext(ctx).Delete(&signature.NessusSignature{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Upsert inserts or replaces a batch in one transaction
func (r *GormNessusSignatureRepository) Upsert(ctx context.Context, sigs []signature.NessusSignature) (int, int, error) {
	if len(sigs) == 0 {
		return 0, 0, nil
	}
	ids := make([]int, len(sigs))
	for i := range sigs {
		ids[i] = sigs[i].ID
	}
	var created, updated int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&signature.NessusSignature{}).Where("id IN ?", ids).Count(&existing).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).CreateInBatches(sigs, upsertBatchSize).Error; err != nil {
			return err
		}
		updated = int(existing)
		created = len(sigs) - updated
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return created, updated, nil
}

func (r *GormNessusSignatureRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "id":
			query = query.Where("id = ?", value)
		case "risk_factor":
			query = query.Where("risk_factor = ?", value)
		}
	}
	return query
}

// GormBurpSuiteSignatureRepository implements BurpSuiteSignatureRepository using GORM
type GormBurpSuiteSignatureRepository struct {
	db *gorm.DB
}

// NewGormBurpSuiteSignatureRepository creates a new GormBurpSuiteSignatureRepository
func NewGormBurpSuiteSignatureRepository(db *gorm.DB) *GormBurpSuiteSignatureRepository {
	return &GormBurpSuiteSignatureRepository{db: db}
}

// FindByID finds a signature by issue type ID
func (r *GormBurpSuiteSignatureRepository) FindByID(ctx context.Context, id int) (*signature.BurpSuiteSignature, error) {
	var sig signature.BurpSuiteSignature
	if err := r.db.WithContext(ctx).First(&sig, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sig, nil
}

// FindByIDs loads the given signatures keyed by ID; unknown IDs are absent
func (r *GormBurpSuiteSignatureRepository) FindByIDs(ctx context.Context, ids []int) (map[int]*signature.BurpSuiteSignature, error) {
	result := make(map[int]*signature.BurpSuiteSignature, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var sigs []signature.BurpSuiteSignature
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&sigs).Error; err != nil {
		return nil, err
	}
	for i := range sigs {
		result[sigs[i].ID] = &sigs[i]
	}
	return result, nil
}

// FindAll lists signatures matching the filter
func (r *GormBurpSuiteSignatureRepository) FindAll(ctx context.Context, filter shared.Filter) ([]signature.BurpSuiteSignature, error) {
	var sigs []signature.BurpSuiteSignature
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&signature.BurpSuiteSignature{}), filter)
	query = paginate(query, filter)
	query = query.Order(ValidateSortField(filter.OrderBy, SignatureSortFields, "id") + " " + orderDir(filter, "ASC"))
	if err := query.Find(&sigs).Error; err != nil {
		return nil, err
	}
	return sigs, nil
}

// Count counts signatures matching the filter
func (r *GormBurpSuiteSignatureRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&signature.BurpSuiteSignature{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new signature
func (r *GormBurpSuiteSignatureRepository) Create(ctx context.Context, sig *signature.BurpSuiteSignature) error {
	return r.db.WithContext(ctx).Create(sig).Error
}

// Update replaces an existing signature
func (r *GormBurpSuiteSignatureRepository) Update(ctx context.Context, sig *signature.BurpSuiteSignature) error {
	result := r.db.WithContext(ctx).Model(&signature.BurpSuiteSignature{}).Where("id = ?", sig.ID).Select("*").Updates(sig)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a signature
func (r *GormBurpSuiteSignatureRepository) Delete(ctx context.Context, id int) error {
	result := r.db.WithContext(ctx).Delete(&signature.BurpSuiteSignature{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Upsert inserts or replaces a batch in one transaction
func (r *GormBurpSuiteSignatureRepository) Upsert(ctx context.Context, sigs []signature.BurpSuiteSignature) (int, int, error) {
	if len(sigs) == 0 {
		return 0, 0, nil
	}
	ids := make([]int, len(sigs))
	for i := range sigs {
		ids[i] = sigs[i].ID
	}
	var created, updated int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&signature.BurpSuiteSignature{}).Where("id IN ?", ids).Count(&existing).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).CreateInBatches(sigs, upsertBatchSize).Error; err != nil {
			return err
		}
		updated = int(existing)
		created = len(sigs) - updated
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return created, updated, nil
}

func (r *GormBurpSuiteSignatureRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if v, ok := filter.Filters["id"]; ok {
		query = query.Where("id = ?", v)
	}
	return query
}

var (
	_ signature.NessusSignatureRepository    = (*GormNessusSignatureRepository)(nil)
	_ signature.BurpSuiteSignatureRepository = (*GormBurpSuiteSignatureRepository)(nil)
)
