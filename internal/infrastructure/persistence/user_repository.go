package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/identity"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/scg/portal/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user and its customer memberships
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		if err := saveMemberships(tx, user); err != nil {
			return err
		}
		user.MarkStored()
		return nil
	})
}

// Update updates an existing user and replaces its memberships
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Omit(clause.Associations).Select("*").Where("id = ?", user.ID)
		if user.IsStored() {
			query = query.Where("version = ?", user.StoredVersion())
		}
		result := query.Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			if user.IsStored() {
				return shared.ErrOptimisticLock
			}
			return shared.ErrNotFound
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserCustomerModel{}).Error; err != nil {
			return err
		}
		if err := saveMemberships(tx, user); err != nil {
			return err
		}
		user.MarkStored()
		return nil
	})
}

func saveMemberships(tx *gorm.DB, user *identity.User) error {
	rows := models.UserCustomerModels(user)
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

// Delete deletes a user and its memberships
func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.UserCustomerModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.UserModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).Preload("Memberships").First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a user by email, ignoring case
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	if email == "" {
		return nil, shared.ErrNotFound
	}
	var model models.UserModel
	if err := r.db.WithContext(ctx).
		Preload("Memberships").
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomer lists the members of a customer with pagination
func (r *GormUserRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter identity.UserFilter) ([]*identity.User, int64, error) {
	var userModels []*models.UserModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("users.id IN (?)", r.db.Model(&models.UserCustomerModel{}).Select("user_id").Where("customer_id = ?", customerID))
	query = r.applyFilter(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := ValidateSortField(filter.SortBy, UserSortFields, "created_at")
	query = query.Order(sortBy + " " + ValidateSortOrder(filter.SortOrder))

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	query = query.Offset((page - 1) * pageSize).Limit(pageSize)

	if err := query.Preload("Memberships").Find(&userModels).Error; err != nil {
		return nil, 0, err
	}

	users := make([]*identity.User, len(userModels))
	for i, model := range userModels {
		users[i] = model.ToDomain()
	}
	return users, total, nil
}

// ExistsByEmail checks if an email already exists, ignoring excludeID
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	if email == "" {
		return false, nil
	}
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email)))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// EmailsByIDs maps user IDs to e-mail addresses; unknown IDs are left out
func (r *GormUserRepository) EmailsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	emails := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return emails, nil
	}
	var rows []struct {
		ID    uuid.UUID
		Email string
	}
	if err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Select("id, email").
		Where("id IN ?", ids).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		emails[row.ID] = row.Email
	}
	return emails, nil
}

// applyFilter applies filter options to the query
func (r *GormUserRepository) applyFilter(query *gorm.DB, filter identity.UserFilter) *gorm.DB {
	if filter.Keyword != "" {
		pattern := likePattern(filter.Keyword)
		query = query.Where(
			"LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if !filter.IncludeStaff {
		query = query.Where("is_staff = ?", false)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}

// Ensure GormUserRepository implements UserRepository
var _ identity.UserRepository = (*GormUserRepository)(nil)
