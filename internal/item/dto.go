package item

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// Item codes are uppercase letters, digits and hyphens only.
var codePattern = regexp.MustCompile(`^[A-Z0-9-]+$`)

// CreateItemDTO carries a new catalog entry. Stock is intentionally
// absent: items always start at zero and only movements change it.
type CreateItemDTO struct {
	Type        string          `json:"type"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Brand       *string         `json:"brand,omitempty"`
	Model       *string         `json:"model,omitempty"`
	Year        *int            `json:"year,omitempty"`
	Category    string          `json:"category"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	MinStock    int             `json:"min_stock"`
	Location    string          `json:"location"`
}

func (dto CreateItemDTO) Validate() error {
	if dto.Type != TypeVehicle && dto.Type != TypePart {
		return ValidationError{Msg: "type must be VEHICLE or PART"}
	}
	if dto.Code == "" {
		return ValidationError{Msg: "code is required"}
	}
	if !codePattern.MatchString(dto.Code) {
		return ValidationError{Msg: "code may only contain uppercase letters, digits and hyphens"}
	}
	if dto.Name == "" {
		return ValidationError{Msg: "name is required"}
	}
	if dto.Category == "" {
		return ValidationError{Msg: "category is required"}
	}
	if !dto.UnitCost.IsPositive() {
		return ValidationError{Msg: "unit cost must be greater than 0"}
	}
	if dto.MinStock < 0 {
		return ValidationError{Msg: "min stock cannot be negative"}
	}
	if dto.Year != nil && (*dto.Year < 1900 || *dto.Year > 2100) {
		return ValidationError{Msg: "year must be between 1900 and 2100"}
	}
	if dto.Location == "" {
		return ValidationError{Msg: "location is required"}
	}
	return nil
}

// UpdateItemDTO has no code and no stock field: both are immutable
// through the edit path.
type UpdateItemDTO struct {
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Brand       *string         `json:"brand,omitempty"`
	Model       *string         `json:"model,omitempty"`
	Year        *int            `json:"year,omitempty"`
	Category    string          `json:"category"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	MinStock    int             `json:"min_stock"`
	Location    string          `json:"location"`
	IsActive    bool            `json:"is_active"`
}

func (dto UpdateItemDTO) Validate() error {
	if dto.Type != TypeVehicle && dto.Type != TypePart {
		return ValidationError{Msg: "type must be VEHICLE or PART"}
	}
	if dto.Name == "" {
		return ValidationError{Msg: "name is required"}
	}
	if dto.Category == "" {
		return ValidationError{Msg: "category is required"}
	}
	if !dto.UnitCost.IsPositive() {
		return ValidationError{Msg: "unit cost must be greater than 0"}
	}
	if dto.MinStock < 0 {
		return ValidationError{Msg: "min stock cannot be negative"}
	}
	if dto.Year != nil && (*dto.Year < 1900 || *dto.Year > 2100) {
		return ValidationError{Msg: "year must be between 1900 and 2100"}
	}
	if dto.Location == "" {
		return ValidationError{Msg: "location is required"}
	}
	return nil
}

// ListFilter narrows the catalog read path.
type ListFilter struct {
	Type        string
	StockStatus string
	Search      string
	DeletedOnly bool
	Limit       int
	Offset      int
}

func (f ListFilter) Validate() error {
	if f.Type != "" && f.Type != TypeVehicle && f.Type != TypePart {
		return ValidationError{Msg: "type filter must be VEHICLE or PART"}
	}
	switch f.StockStatus {
	case "", StockStatusOK, StockStatusLow, StockStatusOut:
	default:
		return ValidationError{Msg: "stock filter must be ok, low or out"}
	}
	return nil
}
