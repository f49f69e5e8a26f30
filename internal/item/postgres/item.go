package postgres

import (
	"errors"
	"strings"
	"time"

	itemDatamodel "github.com/dmarquez/inventory-management/internal/core/datamodel/item"
	"github.com/dmarquez/inventory-management/internal/item"
	"gorm.io/gorm"
)

type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Create(it *item.Item) error {
	if err := r.db.Create(item.ToDataModel(it)).Error; err != nil {
		if isDuplicateKey(err) {
			return item.ErrDuplicateCode
		}
		return err
	}
	return nil
}

// GetByID resolves only non-deleted items; callers that need deleted
// rows go through GetDeletedByID explicitly.
func (r *ItemRepository) GetByID(id string) (*item.Item, error) {
	var dm itemDatamodel.Item
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, item.ErrItemNotFound
		}
		return nil, err
	}
	return item.FromDataModel(&dm), nil
}

func (r *ItemRepository) GetDeletedByID(id string) (*item.Item, error) {
	var dm itemDatamodel.Item
	err := r.db.Where("id = ? AND deleted_at IS NOT NULL", id).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, item.ErrItemNotFound
		}
		return nil, err
	}
	return item.FromDataModel(&dm), nil
}

// CodeInUse checks uniqueness among non-deleted items only, so a
// deleted item's code is free for reuse.
func (r *ItemRepository) CodeInUse(code string) (bool, error) {
	var count int64
	err := r.db.Model(&itemDatamodel.Item{}).
		Where("code = ? AND deleted_at IS NULL", code).
		Count(&count).Error
	return count > 0, err
}

// Update writes the editable columns. current_stock and code are
// deliberately not in the column list.
func (r *ItemRepository) Update(it *item.Item) error {
	result := r.db.Model(&itemDatamodel.Item{}).
		Where("id = ? AND deleted_at IS NULL", it.ID).
		Updates(map[string]interface{}{
			"type":        it.Type,
			"name":        it.Name,
			"description": it.Description,
			"brand":       it.Brand,
			"model":       it.Model,
			"year":        it.Year,
			"category":    it.Category,
			"unit_cost":   it.UnitCost,
			"min_stock":   it.MinStock,
			"location":    it.Location,
			"is_active":   it.IsActive,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return item.ErrItemNotFound
	}
	return nil
}

func (r *ItemRepository) MarkDeleted(id string, deletedAt time.Time, deletedBy string) error {
	result := r.db.Model(&itemDatamodel.Item{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{
			"deleted_at": deletedAt,
			"deleted_by": deletedBy,
			"is_active":  false,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return item.ErrItemNotFound
	}
	return nil
}

func (r *ItemRepository) ClearDeleted(id string) error {
	result := r.db.Model(&itemDatamodel.Item{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Updates(map[string]interface{}{
			"deleted_at": nil,
			"deleted_by": nil,
			"is_active":  true,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return item.ErrNotDeleted
	}
	return nil
}

func (r *ItemRepository) HardDelete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&itemDatamodel.Item{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return item.ErrItemNotFound
	}
	return nil
}

func (r *ItemRepository) List(filter item.ListFilter) ([]*item.Item, error) {
	query := r.db.Model(&itemDatamodel.Item{})

	if filter.DeletedOnly {
		query = query.Where("deleted_at IS NOT NULL")
	} else {
		query = query.Where("deleted_at IS NULL")
	}

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	switch filter.StockStatus {
	case item.StockStatusOut:
		query = query.Where("current_stock = 0")
	case item.StockStatusLow:
		query = query.Where("current_stock > 0 AND current_stock <= min_stock")
	case item.StockStatusOK:
		query = query.Where("current_stock > min_stock")
	}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(code) LIKE ? OR LOWER(category) LIKE ? OR LOWER(COALESCE(brand, '')) LIKE ?",
			pattern, pattern, pattern, pattern)
	}

	var dms []*itemDatamodel.Item
	err := query.Order("name ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&dms).Error
	if err != nil {
		return nil, err
	}

	return item.FromDataModelSlice(dms), nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
