package movement

import (
	"errors"
	"fmt"
	"time"

	movementDatamodel "github.com/dmarquez/inventory-management/internal/core/datamodel/movement"
	"github.com/shopspring/decimal"
)

// Movement types. TRANSFER movements always come in pairs: an OUT leg
// on the source item and an IN leg on the destination item, written in
// the same transaction.
const (
	TypeEntry      = "ENTRY"
	TypeExit       = "EXIT"
	TypeAdjustment = "ADJUSTMENT"
	TypeTransfer   = "TRANSFER"
)

const (
	DirectionIn  = "IN"
	DirectionOut = "OUT"
)

// Movement is one ledger row. After insert only Notes and DocumentURL
// are mutable.
type Movement struct {
	ID          string          `json:"id"`
	ItemID      string          `json:"item_id"`
	Type        string          `json:"type"`
	Direction   string          `json:"direction"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	LotNumber   *string         `json:"lot_number,omitempty"`
	Reason      string          `json:"reason"`
	Notes       *string         `json:"notes,omitempty"`
	DocumentURL *string         `json:"document_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CreatedBy   string          `json:"created_by"`
}

var ErrMovementNotFound = errors.New("movement not found")

// InsufficientStockError reports how much stock was actually available
// when a decrement was refused.
type InsufficientStockError struct {
	ItemID    string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: requested %d, available %d", e.Requested, e.Available)
}

func ToDataModel(m *Movement) *movementDatamodel.Movement {
	return &movementDatamodel.Movement{
		ID:          m.ID,
		ItemID:      m.ItemID,
		Type:        m.Type,
		Direction:   m.Direction,
		Quantity:    m.Quantity,
		UnitCost:    m.UnitCost,
		TotalCost:   m.TotalCost,
		LotNumber:   m.LotNumber,
		Reason:      m.Reason,
		Notes:       m.Notes,
		DocumentURL: m.DocumentURL,
		CreatedAt:   m.CreatedAt,
		CreatedBy:   m.CreatedBy,
	}
}

func FromDataModel(m *movementDatamodel.Movement) *Movement {
	return &Movement{
		ID:          m.ID,
		ItemID:      m.ItemID,
		Type:        m.Type,
		Direction:   m.Direction,
		Quantity:    m.Quantity,
		UnitCost:    m.UnitCost,
		TotalCost:   m.TotalCost,
		LotNumber:   m.LotNumber,
		Reason:      m.Reason,
		Notes:       m.Notes,
		DocumentURL: m.DocumentURL,
		CreatedAt:   m.CreatedAt,
		CreatedBy:   m.CreatedBy,
	}
}

func FromDataModelSlice(ms []*movementDatamodel.Movement) []*Movement {
	result := make([]*Movement, len(ms))
	for i, dm := range ms {
		result[i] = FromDataModel(dm)
	}
	return result
}
