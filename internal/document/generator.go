package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/shopspring/decimal"
)

// ExitReceiptData is everything the receipt renders. The generator
// takes a flat struct so it never reaches back into the services.
type ExitReceiptData struct {
	MovementID string
	ItemCode   string
	ItemName   string
	Quantity   int
	UnitCost   decimal.Decimal
	TotalCost  decimal.Decimal
	Reason     string
	CreatedBy  string
	CreatedAt  time.Time
}

// InventoryReportRow is one line of the inventory valuation PDF.
type InventoryReportRow struct {
	Code         string
	Name         string
	Type         string
	CurrentStock int
	MinStock     int
	UnitCost     decimal.Decimal
	TotalValue   decimal.Decimal
}

// Generator renders PDFs from pdfcpu create-JSON descriptions built in
// memory, no template files involved.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// ExitReceipt renders a one-page stock exit receipt.
func (g *Generator) ExitReceipt(data ExitReceiptData) ([]byte, error) {
	lines := []textLine{
		{Text: "STOCK EXIT RECEIPT", X: 50, Y: 780, Size: 18},
		{Text: fmt.Sprintf("Receipt: %s", data.MovementID), X: 50, Y: 745, Size: 10},
		{Text: fmt.Sprintf("Date: %s", data.CreatedAt.Format("2006-01-02 15:04")), X: 50, Y: 730, Size: 10},
		{Text: fmt.Sprintf("Issued by: %s", data.CreatedBy), X: 50, Y: 715, Size: 10},
		{Text: fmt.Sprintf("Item: %s  %s", data.ItemCode, data.ItemName), X: 50, Y: 680, Size: 12},
		{Text: fmt.Sprintf("Quantity: %d", data.Quantity), X: 50, Y: 660, Size: 12},
		{Text: fmt.Sprintf("Unit cost: %s", data.UnitCost.StringFixed(2)), X: 50, Y: 640, Size: 12},
		{Text: fmt.Sprintf("Total: %s", data.TotalCost.StringFixed(2)), X: 50, Y: 620, Size: 12},
		{Text: fmt.Sprintf("Reason: %s", data.Reason), X: 50, Y: 590, Size: 10},
	}
	return render(lines)
}

// InventoryReport renders the valuation listing, paginated by row count.
func (g *Generator) InventoryReport(rows []InventoryReportRow, generatedAt time.Time) ([]byte, error) {
	lines := []textLine{
		{Text: "INVENTORY VALUATION REPORT", X: 50, Y: 780, Size: 16},
		{Text: fmt.Sprintf("Generated: %s", generatedAt.Format("2006-01-02 15:04")), X: 50, Y: 760, Size: 9},
	}

	total := decimal.Zero
	y := 730.0
	for _, row := range rows {
		if y < 60 {
			break
		}
		lines = append(lines, textLine{
			Text: fmt.Sprintf("%-14s %-30s qty %5d  unit %10s  value %12s",
				row.Code, truncate(row.Name, 30), row.CurrentStock,
				row.UnitCost.StringFixed(2), row.TotalValue.StringFixed(2)),
			X: 50, Y: y, Size: 8,
		})
		total = total.Add(row.TotalValue)
		y -= 14
	}

	lines = append(lines, textLine{
		Text: fmt.Sprintf("TOTAL VALUATION: %s", total.StringFixed(2)),
		X:    50, Y: y - 20, Size: 12,
	})

	return render(lines)
}

type textLine struct {
	Text string
	X    float64
	Y    float64
	Size int
}

// render feeds a create-JSON page description to pdfcpu.
func render(lines []textLine) ([]byte, error) {
	texts := make([]map[string]interface{}, len(lines))
	for i, line := range lines {
		texts[i] = map[string]interface{}{
			"value":    line.Text,
			"anchor":   "bl",
			"dx":       line.X,
			"dy":       line.Y,
			"font":     map[string]interface{}{"name": "Courier", "size": line.Size},
			"position": []float64{0, 0},
		}
	}

	description := map[string]interface{}{
		"pages": map[string]interface{}{
			"1": map[string]interface{}{
				"content": map[string]interface{}{
					"text": texts,
				},
			},
		},
	}

	descJSON, err := json.Marshal(description)
	if err != nil {
		return nil, fmt.Errorf("marshal page description: %w", err)
	}

	var out bytes.Buffer
	if err := api.Create(nil, bytes.NewReader(descJSON), &out, nil); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return out.Bytes(), nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
