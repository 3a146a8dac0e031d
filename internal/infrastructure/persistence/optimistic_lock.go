package persistence

import (
	"github.com/scg/portal/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// saveAggregate inserts a new aggregate, or updates a stored one only while the
// row still holds the version the aggregate was read at.
// A stale version yields shared.ErrOptimisticLock.
func saveAggregate(tx *gorm.DB, model any, root *shared.BaseAggregateRoot) error {
	if !root.IsStored() {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		root.MarkStored()
		return nil
	}

	result := tx.Omit(clause.Associations).
		Select("*").
		Where("id = ? AND version = ?", root.ID, root.StoredVersion()).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrOptimisticLock
	}
	root.MarkStored()
	return nil
}
