package movement

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// unit costs above this are assumed to be input mistakes
var maxUnitCost = decimal.NewFromInt(1_000_000_000)

func validateQuantityAndCost(quantity int, unitCost decimal.Decimal) error {
	if quantity <= 0 {
		return ValidationError{Msg: "quantity must be a positive integer"}
	}
	if !unitCost.IsPositive() {
		return ValidationError{Msg: "unit cost must be greater than 0"}
	}
	if unitCost.GreaterThan(maxUnitCost) {
		return ValidationError{Msg: "unit cost exceeds the allowed maximum"}
	}
	return nil
}

// EntryDTO records stock arriving: a purchase, a return, an initial load.
type EntryDTO struct {
	ItemID    string          `json:"item_id"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	LotNumber *string         `json:"lot_number,omitempty"`
	Reason    string          `json:"reason"`
	Notes     *string         `json:"notes,omitempty"`
}

func (d EntryDTO) Validate() error {
	if d.ItemID == "" {
		return ValidationError{Msg: "item_id is required"}
	}
	if err := validateQuantityAndCost(d.Quantity, d.UnitCost); err != nil {
		return err
	}
	if d.Reason == "" {
		return ValidationError{Msg: "reason is required"}
	}
	return nil
}

// ExitDTO records stock leaving: a sale, a workshop consumption, a loss.
type ExitDTO struct {
	ItemID    string          `json:"item_id"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	LotNumber *string         `json:"lot_number,omitempty"`
	Reason    string          `json:"reason"`
	Notes     *string         `json:"notes,omitempty"`
}

func (d ExitDTO) Validate() error {
	if d.ItemID == "" {
		return ValidationError{Msg: "item_id is required"}
	}
	if err := validateQuantityAndCost(d.Quantity, d.UnitCost); err != nil {
		return err
	}
	if d.Reason == "" {
		return ValidationError{Msg: "reason is required"}
	}
	return nil
}

// AdjustmentDTO corrects stock after a physical count. The caller
// states the direction explicitly rather than sending signed numbers.
type AdjustmentDTO struct {
	ItemID    string          `json:"item_id"`
	Direction string          `json:"direction"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Reason    string          `json:"reason"`
	Notes     *string         `json:"notes,omitempty"`
}

func (d AdjustmentDTO) Validate() error {
	if d.ItemID == "" {
		return ValidationError{Msg: "item_id is required"}
	}
	if d.Direction != DirectionIn && d.Direction != DirectionOut {
		return ValidationError{Msg: "direction must be IN or OUT"}
	}
	if err := validateQuantityAndCost(d.Quantity, d.UnitCost); err != nil {
		return err
	}
	if d.Reason == "" {
		return ValidationError{Msg: "reason is required"}
	}
	return nil
}

// TransferDTO moves stock between two items, typically the same part
// tracked at two locations.
type TransferDTO struct {
	SourceItemID      string          `json:"source_item_id"`
	DestinationItemID string          `json:"destination_item_id"`
	Quantity          int             `json:"quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	LotNumber         *string         `json:"lot_number,omitempty"`
	Reason            string          `json:"reason"`
	Notes             *string         `json:"notes,omitempty"`
}

func (d TransferDTO) Validate() error {
	if d.SourceItemID == "" {
		return ValidationError{Msg: "source_item_id is required"}
	}
	if d.DestinationItemID == "" {
		return ValidationError{Msg: "destination_item_id is required"}
	}
	if d.SourceItemID == d.DestinationItemID {
		return ValidationError{Msg: "source and destination must differ"}
	}
	if err := validateQuantityAndCost(d.Quantity, d.UnitCost); err != nil {
		return err
	}
	if d.Reason == "" {
		return ValidationError{Msg: "reason is required"}
	}
	return nil
}

// AnnotateDTO patches the only mutable ledger fields.
type AnnotateDTO struct {
	Notes       *string `json:"notes,omitempty"`
	DocumentURL *string `json:"document_url,omitempty"`
}

func (d AnnotateDTO) Validate() error {
	if d.Notes == nil && d.DocumentURL == nil {
		return ValidationError{Msg: "nothing to update"}
	}
	return nil
}

// ListFilter narrows the ledger read path.
type ListFilter struct {
	ItemID string
	Type   string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

func (f ListFilter) Validate() error {
	switch f.Type {
	case "", TypeEntry, TypeExit, TypeAdjustment, TypeTransfer:
	default:
		return ValidationError{Msg: "type filter must be ENTRY, EXIT, ADJUSTMENT or TRANSFER"}
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return ValidationError{Msg: "from must not be after to"}
	}
	return nil
}
