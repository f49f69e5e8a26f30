package movement

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dmarquez/inventory-management/internal"
	"github.com/dmarquez/inventory-management/internal/item"
	"github.com/dmarquez/inventory-management/internal/transport"
	"github.com/dmarquez/inventory-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	RecordEntry(dto EntryDTO, actor string) (*Movement, error)
	RecordExit(dto ExitDTO, actor string) (*Movement, error)
	RecordAdjustment(dto AdjustmentDTO, actor string) (*Movement, error)
	RecordTransfer(dto TransferDTO, actor string) ([]*Movement, error)
	UpdateAnnotations(movementID string, dto AnnotateDTO) (*Movement, error)
	Get(id string) (*Movement, error)
	List(filter ListFilter) ([]*Movement, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) RecordEntry(w http.ResponseWriter, r *http.Request) {
	session, ok := internal.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto EntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	recorded, err := h.Service.RecordEntry(dto, session.UserID)
	if err != nil {
		h.Logger.Error("RecordEntry: service error", "error", err, "item_id", dto.ItemID)
		h.writeMovementError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, recorded)
}

func (h *Handler) RecordExit(w http.ResponseWriter, r *http.Request) {
	session, ok := internal.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ExitDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	recorded, err := h.Service.RecordExit(dto, session.UserID)
	if err != nil {
		h.Logger.Error("RecordExit: service error", "error", err, "item_id", dto.ItemID)
		h.writeMovementError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, recorded)
}

func (h *Handler) RecordAdjustment(w http.ResponseWriter, r *http.Request) {
	session, ok := internal.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto AdjustmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	recorded, err := h.Service.RecordAdjustment(dto, session.UserID)
	if err != nil {
		h.Logger.Error("RecordAdjustment: service error", "error", err, "item_id", dto.ItemID)
		h.writeMovementError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, recorded)
}

func (h *Handler) RecordTransfer(w http.ResponseWriter, r *http.Request) {
	session, ok := internal.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto TransferDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	legs, err := h.Service.RecordTransfer(dto, session.UserID)
	if err != nil {
		h.Logger.Error("RecordTransfer: service error", "error", err,
			"source_item_id", dto.SourceItemID)
		h.writeMovementError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{"movements": legs})
}

func (h *Handler) GetMovement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, err := h.Service.Get(id)
	if err != nil {
		h.writeMovementError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) ListMovements(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	movements, err := h.Service.List(filter)
	if err != nil {
		h.Logger.Error("ListMovements: service error", "error", err)
		h.writeMovementError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"movements": movements,
		"count":     len(movements),
	})
}

func (h *Handler) AnnotateMovement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var dto AnnotateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.UpdateAnnotations(id, dto)
	if err != nil {
		h.Logger.Error("AnnotateMovement: service error", "error", err, "movement_id", id)
		h.writeMovementError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) writeMovementError(w http.ResponseWriter, err error) {
	var insufficient *InsufficientStockError
	var validation ValidationError
	switch {
	case errors.Is(err, ErrMovementNotFound):
		h.WriteAppError(w, internal.NewNotFoundError("movement not found", internal.ErrCodeMovementNotFound))
	case errors.Is(err, item.ErrItemNotFound):
		h.WriteAppError(w, internal.NewNotFoundError("item not found", internal.ErrCodeItemNotFound))
	case errors.As(err, &insufficient):
		h.WriteAppError(w, internal.NewConflictError(insufficient.Error(), internal.ErrCodeInsufficientStock).
			WithDetails(map[string]interface{}{
				"item_id":   insufficient.ItemID,
				"requested": insufficient.Requested,
				"available": insufficient.Available,
			}))
	case errors.As(err, &validation):
		h.WriteAppError(w, internal.NewValidationError(validation.Msg, internal.ErrCodeValidationFailed))
	default:
		h.WriteAppError(w, internal.NewInternalError("internal server error", err))
	}
}

func filterFromQuery(r *http.Request) (ListFilter, error) {
	q := r.URL.Query()

	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	filter := ListFilter{
		ItemID: q.Get("item_id"),
		Type:   q.Get("type"),
		Limit:  limit,
		Offset: offset,
	}

	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return ListFilter{}, ValidationError{Msg: "from must be RFC3339"}
		}
		filter.From = &t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return ListFilter{}, ValidationError{Msg: "to must be RFC3339"}
		}
		filter.To = &t
	}

	return filter, nil
}
