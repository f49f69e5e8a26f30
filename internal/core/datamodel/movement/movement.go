package movement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Movement is the persistence model for the inventory_movements table.
// Rows are append-only: after insert only notes and document_url are
// ever written again. item_id intentionally carries no foreign key so
// the ledger survives an item hard delete.
type Movement struct {
	ID          string          `gorm:"primaryKey;column:id"`
	ItemID      string          `gorm:"column:item_id;not null;index"`
	Type        string          `gorm:"column:type;not null"`
	Direction   string          `gorm:"column:direction;not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	UnitCost    decimal.Decimal `gorm:"column:unit_cost;type:numeric(12,2);not null"`
	TotalCost   decimal.Decimal `gorm:"column:total_cost;type:numeric(12,2);not null"`
	LotNumber   *string         `gorm:"column:lot_number"`
	Reason      string          `gorm:"column:reason;not null"`
	Notes       *string         `gorm:"column:notes"`
	DocumentURL *string         `gorm:"column:document_url"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
	CreatedBy   string          `gorm:"column:created_by;not null"`
}

func (Movement) TableName() string {
	return "inventory_movements"
}
