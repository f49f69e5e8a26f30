package report

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dmarquez/inventory-management/internal/document"
	"github.com/dmarquez/inventory-management/internal/movement"
	"github.com/dmarquez/inventory-management/internal/transport"
	"github.com/dmarquez/inventory-management/pkg/logger"
)

type ServiceAPI interface {
	Summary() (*Summary, error)
	LowStock() ([]LowStockEntry, error)
	MonthlyTotals(months int) ([]MonthlyTotal, error)
	InventoryRows() ([]InventoryRow, error)
	MovementRows(filter movement.ListFilter) ([]MovementRow, error)
}

// PDFGenerator renders the inventory valuation report for download.
type PDFGenerator interface {
	InventoryReport(rows []document.InventoryReportRow, generatedAt time.Time) ([]byte, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Excel   *ExcelWriter
	PDF     PDFGenerator
}

func NewHandler(service ServiceAPI, excel *ExcelWriter, pdf PDFGenerator) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		Excel:       excel,
		PDF:         pdf,
	}
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary()
	if err != nil {
		h.Logger.Error("GetSummary: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}

	h.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) GetLowStock(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.LowStock()
	if err != nil {
		h.Logger.Error("GetLowStock: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to build low stock report")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": entries,
		"count": len(entries),
	})
}

func (h *Handler) GetMonthlyTotals(w http.ResponseWriter, r *http.Request) {
	months, _ := strconv.Atoi(r.URL.Query().Get("months"))

	totals, err := h.Service.MonthlyTotals(months)
	if err != nil {
		h.Logger.Error("GetMonthlyTotals: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to build monthly totals")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"months": totals})
}

func (h *Handler) ExportInventoryExcel(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.InventoryRows()
	if err != nil {
		h.Logger.Error("ExportInventoryExcel: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to build inventory export")
		return
	}

	workbook, err := h.Excel.Inventory(rows)
	if err != nil {
		h.Logger.Error("ExportInventoryExcel: workbook error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to render workbook")
		return
	}

	writeAttachment(w, workbook,
		fmt.Sprintf("inventory-%s.xlsx", time.Now().Format("20060102")),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

func (h *Handler) ExportMovementsExcel(w http.ResponseWriter, r *http.Request) {
	filter, err := movementFilterFromQuery(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.Service.MovementRows(filter)
	if err != nil {
		h.Logger.Error("ExportMovementsExcel: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to build movement export")
		return
	}

	workbook, err := h.Excel.Movements(rows)
	if err != nil {
		h.Logger.Error("ExportMovementsExcel: workbook error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to render workbook")
		return
	}

	writeAttachment(w, workbook,
		fmt.Sprintf("movements-%s.xlsx", time.Now().Format("20060102")),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

func (h *Handler) ExportInventoryPDF(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.InventoryRows()
	if err != nil {
		h.Logger.Error("ExportInventoryPDF: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to build inventory export")
		return
	}

	docRows := make([]document.InventoryReportRow, len(rows))
	for i, row := range rows {
		docRows[i] = document.InventoryReportRow{
			Code:         row.Code,
			Name:         row.Name,
			Type:         row.Type,
			CurrentStock: row.CurrentStock,
			MinStock:     row.MinStock,
			UnitCost:     row.UnitCost,
			TotalValue:   row.TotalValue,
		}
	}

	pdf, err := h.PDF.InventoryReport(docRows, time.Now())
	if err != nil {
		h.Logger.Error("ExportInventoryPDF: render error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	writeAttachment(w, pdf,
		fmt.Sprintf("inventory-%s.pdf", time.Now().Format("20060102")),
		"application/pdf")
}

func writeAttachment(w http.ResponseWriter, data []byte, filename, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func movementFilterFromQuery(r *http.Request) (movement.ListFilter, error) {
	q := r.URL.Query()

	filter := movement.ListFilter{
		ItemID: q.Get("item_id"),
		Type:   q.Get("type"),
	}

	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return movement.ListFilter{}, movement.ValidationError{Msg: "from must be RFC3339"}
		}
		filter.From = &t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return movement.ListFilter{}, movement.ValidationError{Msg: "to must be RFC3339"}
		}
		filter.To = &t
	}

	return filter, nil
}
