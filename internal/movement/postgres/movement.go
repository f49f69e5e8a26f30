package postgres

import (
	"errors"
	"time"

	itemDatamodel "github.com/dmarquez/inventory-management/internal/core/datamodel/item"
	movementDatamodel "github.com/dmarquez/inventory-management/internal/core/datamodel/movement"
	"github.com/dmarquez/inventory-management/internal/item"
	"github.com/dmarquez/inventory-management/internal/movement"
	"gorm.io/gorm"
)

type MovementRepository struct {
	db *gorm.DB
}

func NewMovementRepository(db *gorm.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// RecordAndApply couples the stock change and the ledger insert in one
// transaction. The stock change is a conditional single-row UPDATE; if
// it matches nothing the transaction rolls back and no movement row
// survives.
func (r *MovementRepository) RecordAndApply(m *movement.Movement, delta int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := applyStockDelta(tx, m.ItemID, delta); err != nil {
			return err
		}
		return tx.Create(movement.ToDataModel(m)).Error
	})
}

// RecordPair writes both transfer legs atomically. The source
// decrement runs first so an insufficient source fails the whole
// transfer before anything is written.
func (r *MovementRepository) RecordPair(out, in *movement.Movement) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := applyStockDelta(tx, out.ItemID, -out.Quantity); err != nil {
			return err
		}
		if err := applyStockDelta(tx, in.ItemID, in.Quantity); err != nil {
			return err
		}
		if err := tx.Create(movement.ToDataModel(out)).Error; err != nil {
			return err
		}
		return tx.Create(movement.ToDataModel(in)).Error
	})
}

// applyStockDelta mutates current_stock through a guarded UPDATE. The
// WHERE clause carries the non-negativity invariant; RowsAffected
// tells us whether the guard held.
func applyStockDelta(tx *gorm.DB, itemID string, delta int) error {
	var result *gorm.DB
	if delta >= 0 {
		result = tx.Model(&itemDatamodel.Item{}).
			Where("id = ? AND deleted_at IS NULL", itemID).
			UpdateColumns(map[string]interface{}{
				"current_stock": gorm.Expr("current_stock + ?", delta),
				"updated_at":    time.Now(),
			})
	} else {
		need := -delta
		result = tx.Model(&itemDatamodel.Item{}).
			Where("id = ? AND deleted_at IS NULL AND current_stock >= ?", itemID, need).
			UpdateColumns(map[string]interface{}{
				"current_stock": gorm.Expr("current_stock - ?", need),
				"updated_at":    time.Now(),
			})
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// zero rows: either the item is gone or the guard refused
	var dm itemDatamodel.Item
	err := tx.Select("current_stock").
		Where("id = ? AND deleted_at IS NULL", itemID).
		First(&dm).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return item.ErrItemNotFound
	}
	if err != nil {
		return err
	}
	return &movement.InsufficientStockError{
		ItemID:    itemID,
		Requested: -delta,
		Available: dm.CurrentStock,
	}
}

func (r *MovementRepository) GetByID(id string) (*movement.Movement, error) {
	var dm movementDatamodel.Movement
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, movement.ErrMovementNotFound
		}
		return nil, err
	}
	return movement.FromDataModel(&dm), nil
}

func (r *MovementRepository) UpdateAnnotations(id string, notes, documentURL *string) error {
	updates := map[string]interface{}{}
	if notes != nil {
		updates["notes"] = *notes
	}
	if documentURL != nil {
		updates["document_url"] = *documentURL
	}
	if len(updates) == 0 {
		return nil
	}

	result := r.db.Model(&movementDatamodel.Movement{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return movement.ErrMovementNotFound
	}
	return nil
}

func (r *MovementRepository) CountForItem(itemID string) (int64, error) {
	var count int64
	err := r.db.Model(&movementDatamodel.Movement{}).
		Where("item_id = ?", itemID).
		Count(&count).Error
	return count, err
}

func (r *MovementRepository) List(filter movement.ListFilter) ([]*movement.Movement, error) {
	query := r.db.Model(&movementDatamodel.Movement{})

	if filter.ItemID != "" {
		query = query.Where("item_id = ?", filter.ItemID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var dms []*movementDatamodel.Movement
	err := query.Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&dms).Error
	if err != nil {
		return nil, err
	}

	return movement.FromDataModelSlice(dms), nil
}
