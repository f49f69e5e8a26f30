package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary is the dashboard headline: how much the stock is worth and
// how the catalog is doing.
type Summary struct {
	TotalValuation decimal.Decimal `json:"total_valuation"`
	ItemCount      int64           `json:"item_count"`
	MovementCount  int64           `json:"movement_count"`
	LowStockCount  int64           `json:"low_stock_count"`
}

// LowStockEntry flags an item at or under its reorder threshold.
type LowStockEntry struct {
	ItemID       string `json:"item_id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	CurrentStock int    `json:"current_stock"`
	MinStock     int    `json:"min_stock"`
	StockStatus  string `json:"stock_status"`
}

// MonthlyTotal aggregates ledger activity for one calendar month.
type MonthlyTotal struct {
	Month         string          `json:"month"`
	EntryQuantity int             `json:"entry_quantity"`
	EntryCost     decimal.Decimal `json:"entry_cost"`
	ExitQuantity  int             `json:"exit_quantity"`
	ExitCost      decimal.Decimal `json:"exit_cost"`
}

// InventoryRow is one export line of the current catalog state.
type InventoryRow struct {
	Code         string
	Name         string
	Type         string
	Category     string
	Location     string
	CurrentStock int
	MinStock     int
	UnitCost     decimal.Decimal
	TotalValue   decimal.Decimal
	StockStatus  string
}

// MovementRow is one export line of the ledger. ItemCode and ItemName
// are empty when the item was hard deleted after the fact.
type MovementRow struct {
	MovementID string
	ItemCode   string
	ItemName   string
	Type       string
	Direction  string
	Quantity   int
	UnitCost   decimal.Decimal
	TotalCost  decimal.Decimal
	Reason     string
	CreatedBy  string
	CreatedAt  time.Time
}
