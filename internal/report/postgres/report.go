package postgres

import (
	itemDatamodel "github.com/dmarquez/inventory-management/internal/core/datamodel/item"
	movementDatamodel "github.com/dmarquez/inventory-management/internal/core/datamodel/movement"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportRepository answers the aggregate questions straight from SQL so
// the summary endpoint never pages through the catalog.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) CountItems() (int64, error) {
	var count int64
	err := r.db.Model(&itemDatamodel.Item{}).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count, err
}

func (r *ReportRepository) CountMovements() (int64, error) {
	var count int64
	err := r.db.Model(&movementDatamodel.Movement{}).Count(&count).Error
	return count, err
}

func (r *ReportRepository) CountLowStock() (int64, error) {
	var count int64
	err := r.db.Model(&itemDatamodel.Item{}).
		Where("deleted_at IS NULL AND current_stock <= min_stock").
		Count(&count).Error
	return count, err
}

func (r *ReportRepository) TotalValuation() (decimal.Decimal, error) {
	var raw *string
	err := r.db.Model(&itemDatamodel.Item{}).
		Select("CAST(COALESCE(SUM(current_stock * unit_cost), 0) AS TEXT)").
		Where("deleted_at IS NULL").
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	if raw == nil || *raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}
