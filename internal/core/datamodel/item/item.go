package item

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is the persistence model for the items table. Code uniqueness
// is enforced by a partial index scoped to deleted_at IS NULL (see
// migrations), not by a gorm tag, so a deleted item's code can be
// reused.
type Item struct {
	ID           string          `gorm:"primaryKey;column:id"`
	Type         string          `gorm:"column:type;not null"`
	Code         string          `gorm:"column:code;not null"`
	Name         string          `gorm:"column:name;not null"`
	Description  *string         `gorm:"column:description"`
	Brand        *string         `gorm:"column:brand"`
	Model        *string         `gorm:"column:model"`
	Year         *int            `gorm:"column:year"`
	Category     string          `gorm:"column:category;not null"`
	UnitCost     decimal.Decimal `gorm:"column:unit_cost;type:numeric(12,2);not null"`
	CurrentStock int             `gorm:"column:current_stock;not null;default:0"`
	MinStock     int             `gorm:"column:min_stock;not null;default:0"`
	Location     string          `gorm:"column:location;not null"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time       `gorm:"column:created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at"`
	CreatedBy    string          `gorm:"column:created_by"`
	DeletedAt    *time.Time      `gorm:"column:deleted_at"`
	DeletedBy    *string         `gorm:"column:deleted_by"`
}

func (Item) TableName() string {
	return "items"
}
