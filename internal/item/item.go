package item

import (
	"errors"
	"fmt"
	"time"

	itemDatamodel "github.com/dmarquez/inventory-management/internal/core/datamodel/item"
	"github.com/shopspring/decimal"
)

const (
	TypeVehicle = "VEHICLE"
	TypePart    = "PART"
)

// Stock buckets derived from current_stock against min_stock.
const (
	StockStatusOK  = "ok"
	StockStatusLow = "low"
	StockStatusOut = "out"
)

type Item struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Description  *string         `json:"description,omitempty"`
	Brand        *string         `json:"brand,omitempty"`
	Model        *string         `json:"model,omitempty"`
	Year         *int            `json:"year,omitempty"`
	Category     string          `json:"category"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	CurrentStock int             `json:"current_stock"`
	MinStock     int             `json:"min_stock"`
	Location     string          `json:"location"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	CreatedBy    string          `json:"created_by"`
	DeletedAt    *time.Time      `json:"deleted_at,omitempty"`
	DeletedBy    *string         `json:"deleted_by,omitempty"`
}

func (i *Item) IsDeleted() bool {
	return i.DeletedAt != nil
}

// StockStatus classifies the item: out when stock is zero, low when
// stock is at or below the reorder threshold, ok otherwise.
func (i *Item) StockStatus() string {
	if i.CurrentStock == 0 {
		return StockStatusOut
	}
	if i.CurrentStock <= i.MinStock {
		return StockStatusLow
	}
	return StockStatusOK
}

var (
	ErrItemNotFound  = errors.New("item not found")
	ErrDuplicateCode = errors.New("item code already in use")
	ErrNotDeleted    = errors.New("item is not deleted")
)

// HasMovementsError blocks destructive operations on an item the
// ledger references; the count lets the caller explain what blocks.
type HasMovementsError struct {
	Count int64
}

func (e *HasMovementsError) Error() string {
	return fmt.Sprintf("item has %d associated movements", e.Count)
}

func ToDataModel(i *Item) *itemDatamodel.Item {
	return &itemDatamodel.Item{
		ID:           i.ID,
		Type:         i.Type,
		Code:         i.Code,
		Name:         i.Name,
		Description:  i.Description,
		Brand:        i.Brand,
		Model:        i.Model,
		Year:         i.Year,
		Category:     i.Category,
		UnitCost:     i.UnitCost,
		CurrentStock: i.CurrentStock,
		MinStock:     i.MinStock,
		Location:     i.Location,
		IsActive:     i.IsActive,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
		CreatedBy:    i.CreatedBy,
		DeletedAt:    i.DeletedAt,
		DeletedBy:    i.DeletedBy,
	}
}

func FromDataModel(i *itemDatamodel.Item) *Item {
	return &Item{
		ID:           i.ID,
		Type:         i.Type,
		Code:         i.Code,
		Name:         i.Name,
		Description:  i.Description,
		Brand:        i.Brand,
		Model:        i.Model,
		Year:         i.Year,
		Category:     i.Category,
		UnitCost:     i.UnitCost,
		CurrentStock: i.CurrentStock,
		MinStock:     i.MinStock,
		Location:     i.Location,
		IsActive:     i.IsActive,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
		CreatedBy:    i.CreatedBy,
		DeletedAt:    i.DeletedAt,
		DeletedBy:    i.DeletedBy,
	}
}

func FromDataModelSlice(items []*itemDatamodel.Item) []*Item {
	result := make([]*Item, len(items))
	for i, dm := range items {
		result[i] = FromDataModel(dm)
	}
	return result
}
