package report

import (
	"log/slog"
	"sort"
	"time"

	"github.com/dmarquez/inventory-management/internal/item"
	"github.com/dmarquez/inventory-management/internal/movement"
	"github.com/shopspring/decimal"
)

const (
	defaultLookbackMonths = 6
	maxLookbackMonths     = 24
)

type ItemSource interface {
	List(filter item.ListFilter) ([]*item.Item, error)
}

type MovementSource interface {
	List(filter movement.ListFilter) ([]*movement.Movement, error)
}

type Counter interface {
	CountItems() (int64, error)
	CountMovements() (int64, error)
	CountLowStock() (int64, error)
	TotalValuation() (decimal.Decimal, error)
}

type Service struct {
	items     ItemSource
	movements MovementSource
	counter   Counter
	logger    *slog.Logger
}

func NewService(items ItemSource, movements MovementSource, counter Counter, logger *slog.Logger) *Service {
	return &Service{
		items:     items,
		movements: movements,
		counter:   counter,
		logger:    logger,
	}
}

func (s *Service) Summary() (*Summary, error) {
	itemCount, err := s.counter.CountItems()
	if err != nil {
		return nil, err
	}
	movementCount, err := s.counter.CountMovements()
	if err != nil {
		return nil, err
	}
	lowStock, err := s.counter.CountLowStock()
	if err != nil {
		return nil, err
	}
	valuation, err := s.counter.TotalValuation()
	if err != nil {
		return nil, err
	}

	return &Summary{
		TotalValuation: valuation,
		ItemCount:      itemCount,
		MovementCount:  movementCount,
		LowStockCount:  lowStock,
	}, nil
}

// LowStock lists every non-deleted item at or below its threshold,
// out-of-stock items first.
func (s *Service) LowStock() ([]LowStockEntry, error) {
	all, err := s.allItems()
	if err != nil {
		return nil, err
	}

	var entries []LowStockEntry
	for _, it := range all {
		if it.CurrentStock > it.MinStock {
			continue
		}
		entries = append(entries, LowStockEntry{
			ItemID:       it.ID,
			Code:         it.Code,
			Name:         it.Name,
			Type:         it.Type,
			CurrentStock: it.CurrentStock,
			MinStock:     it.MinStock,
			StockStatus:  it.StockStatus(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CurrentStock != entries[j].CurrentStock {
			return entries[i].CurrentStock < entries[j].CurrentStock
		}
		return entries[i].Code < entries[j].Code
	})
	return entries, nil
}

// MonthlyTotals buckets inbound and outbound activity per calendar
// month over the lookback window. Every movement counts by its
// direction, so ADJUSTMENT and TRANSFER legs land in the same totals
// as ENTRY and EXIT rows and the buckets reconcile with stock changes.
// Movements whose item no longer resolves still count here: the totals
// key on the ledger row alone.
func (s *Service) MonthlyTotals(months int) ([]MonthlyTotal, error) {
	if months <= 0 {
		months = defaultLookbackMonths
	}
	if months > maxLookbackMonths {
		months = maxLookbackMonths
	}

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).
		AddDate(0, -(months - 1), 0)

	movements, err := s.allMovements(movement.ListFilter{From: &from})
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*MonthlyTotal)
	for i := 0; i < months; i++ {
		key := from.AddDate(0, i, 0).Format("2006-01")
		buckets[key] = &MonthlyTotal{
			Month:     key,
			EntryCost: decimal.Zero,
			ExitCost:  decimal.Zero,
		}
	}

	for _, m := range movements {
		bucket, ok := buckets[m.CreatedAt.Format("2006-01")]
		if !ok {
			continue
		}
		switch m.Direction {
		case movement.DirectionIn:
			bucket.EntryQuantity += m.Quantity
			bucket.EntryCost = bucket.EntryCost.Add(m.TotalCost)
		case movement.DirectionOut:
			bucket.ExitQuantity += m.Quantity
			bucket.ExitCost = bucket.ExitCost.Add(m.TotalCost)
		}
	}

	totals := make([]MonthlyTotal, 0, months)
	for i := 0; i < months; i++ {
		key := from.AddDate(0, i, 0).Format("2006-01")
		totals = append(totals, *buckets[key])
	}
	return totals, nil
}

// InventoryRows flattens the catalog for export.
func (s *Service) InventoryRows() ([]InventoryRow, error) {
	all, err := s.allItems()
	if err != nil {
		return nil, err
	}

	rows := make([]InventoryRow, len(all))
	for i, it := range all {
		rows[i] = InventoryRow{
			Code:         it.Code,
			Name:         it.Name,
			Type:         it.Type,
			Category:     it.Category,
			Location:     it.Location,
			CurrentStock: it.CurrentStock,
			MinStock:     it.MinStock,
			UnitCost:     it.UnitCost,
			TotalValue:   it.UnitCost.Mul(decimal.NewFromInt(int64(it.CurrentStock))),
			StockStatus:  it.StockStatus(),
		}
	}
	return rows, nil
}

// MovementRows flattens the ledger for export, resolving item code and
// name where the item still exists.
func (s *Service) MovementRows(filter movement.ListFilter) ([]MovementRow, error) {
	movements, err := s.allMovements(filter)
	if err != nil {
		return nil, err
	}

	itemsByID := make(map[string]*item.Item)
	all, err := s.allItems()
	if err != nil {
		return nil, err
	}
	for _, it := range all {
		itemsByID[it.ID] = it
	}

	rows := make([]MovementRow, len(movements))
	for i, m := range movements {
		row := MovementRow{
			MovementID: m.ID,
			Type:       m.Type,
			Direction:  m.Direction,
			Quantity:   m.Quantity,
			UnitCost:   m.UnitCost,
			TotalCost:  m.TotalCost,
			Reason:     m.Reason,
			CreatedBy:  m.CreatedBy,
			CreatedAt:  m.CreatedAt,
		}
		if it, ok := itemsByID[m.ItemID]; ok {
			row.ItemCode = it.Code
			row.ItemName = it.Name
		}
		rows[i] = row
	}
	return rows, nil
}

// allItems pages through the catalog so exports see everything, not
// one listing page.
func (s *Service) allItems() ([]*item.Item, error) {
	const page = 200
	var all []*item.Item
	for offset := 0; ; offset += page {
		batch, err := s.items.List(item.ListFilter{Limit: page, Offset: offset})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < page {
			return all, nil
		}
	}
}

func (s *Service) allMovements(filter movement.ListFilter) ([]*movement.Movement, error) {
	const page = 200
	filter.Limit = page
	var all []*movement.Movement
	for offset := 0; ; offset += page {
		filter.Offset = offset
		batch, err := s.movements.List(filter)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < page {
			return all, nil
		}
	}
}
