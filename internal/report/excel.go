package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExcelWriter renders export rows into xlsx workbooks.
type ExcelWriter struct{}

func NewExcelWriter() *ExcelWriter {
	return &ExcelWriter{}
}

func (w *ExcelWriter) Inventory(rows []InventoryRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Inventory"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Code", "Name", "Type", "Category", "Location",
		"Current Stock", "Min Stock", "Unit Cost", "Total Value", "Status"}
	if err := writeHeader(f, sheet, headers); err != nil {
		return nil, err
	}

	for i, row := range rows {
		line := i + 2
		cells := []interface{}{
			row.Code, row.Name, row.Type, row.Category, row.Location,
			row.CurrentStock, row.MinStock,
			row.UnitCost.InexactFloat64(),
			row.TotalValue.InexactFloat64(),
			row.StockStatus,
		}
		if err := writeRow(f, sheet, line, cells); err != nil {
			return nil, err
		}
	}

	return toBytes(f)
}

func (w *ExcelWriter) Movements(rows []MovementRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Movements"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Movement ID", "Item Code", "Item Name", "Type",
		"Direction", "Quantity", "Unit Cost", "Total Cost", "Reason",
		"Created By", "Created At"}
	if err := writeHeader(f, sheet, headers); err != nil {
		return nil, err
	}

	for i, row := range rows {
		line := i + 2
		cells := []interface{}{
			row.MovementID, row.ItemCode, row.ItemName, row.Type,
			row.Direction, row.Quantity,
			row.UnitCost.InexactFloat64(),
			row.TotalCost.InexactFloat64(),
			row.Reason, row.CreatedBy,
			row.CreatedAt.Format(time.RFC3339),
		}
		if err := writeRow(f, sheet, line, cells); err != nil {
			return nil, err
		}
	}

	return toBytes(f)
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, line int, cells []interface{}) error {
	for i, value := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, line)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}

func toBytes(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
