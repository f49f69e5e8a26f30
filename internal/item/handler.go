package item

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dmarquez/inventory-management/internal"
	"github.com/dmarquez/inventory-management/internal/transport"
	"github.com/dmarquez/inventory-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(dto CreateItemDTO, actor string) (*Item, error)
	Update(id string, dto UpdateItemDTO, actor string) (*Item, error)
	SoftDelete(id string, actor string) error
	Restore(id string, actor string) (*Item, error)
	HardDelete(id string) error
	Get(id string) (*Item, error)
	List(filter ListFilter) ([]*Item, error)
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

type itemResponse struct {
	*Item
	StockStatus string `json:"stock_status"`
}

func present(it *Item) itemResponse {
	return itemResponse{Item: it, StockStatus: it.StockStatus()}
}

func presentSlice(items []*Item) []itemResponse {
	out := make([]itemResponse, len(items))
	for i, it := range items {
		out[i] = present(it)
	}
	return out
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	session, ok := internal.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.Create(dto, session.UserID)
	if err != nil {
		h.Logger.Error("CreateItem: service error", "error", err)
		h.writeItemError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, present(created))
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, err := h.Service.Get(id)
	if err != nil {
		h.writeItemError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, present(found))
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)

	items, err := h.Service.List(filter)
	if err != nil {
		h.Logger.Error("ListItems: service error", "error", err)
		h.writeItemError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": presentSlice(items),
		"count": len(items),
	})
}

func (h *Handler) ListDeletedItems(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)
	filter.DeletedOnly = true

	items, err := h.Service.List(filter)
	if err != nil {
		h.Logger.Error("ListDeletedItems: service error", "error", err)
		h.writeItemError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": presentSlice(items),
		"count": len(items),
	})
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	session, ok := internal.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")

	var dto UpdateItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.Update(id, dto, session.UserID)
	if err != nil {
		h.Logger.Error("UpdateItem: service error", "error", err, "item_id", id)
		h.writeItemError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, present(updated))
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	session, ok := internal.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")

	if err := h.Service.SoftDelete(id, session.UserID); err != nil {
		h.Logger.Error("DeleteItem: service error", "error", err, "item_id", id)
		h.writeItemError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) RestoreItem(w http.ResponseWriter, r *http.Request) {
	session, ok := internal.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")

	restored, err := h.Service.Restore(id, session.UserID)
	if err != nil {
		h.Logger.Error("RestoreItem: service error", "error", err, "item_id", id)
		h.writeItemError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, present(restored))
}

func (h *Handler) HardDeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Service.HardDelete(id); err != nil {
		h.Logger.Error("HardDeleteItem: service error", "error", err, "item_id", id)
		h.writeItemError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "purged"})
}

func (h *Handler) writeItemError(w http.ResponseWriter, err error) {
	var hasMovements *HasMovementsError
	switch {
	case errors.Is(err, ErrItemNotFound):
		h.WriteAppError(w, internal.NewNotFoundError("item not found", internal.ErrCodeItemNotFound))
	case errors.Is(err, ErrDuplicateCode):
		h.WriteAppError(w, internal.NewConflictError("item code already in use", internal.ErrCodeDuplicateCode))
	case errors.Is(err, ErrNotDeleted):
		h.WriteAppError(w, internal.NewConflictError("item is not deleted", internal.ErrCodeNotDeleted))
	case errors.As(err, &hasMovements):
		h.WriteAppError(w, internal.NewConflictError(hasMovements.Error(), internal.ErrCodeHasMovements).
			WithDetails(map[string]interface{}{"movement_count": hasMovements.Count}))
	default:
		var validation ValidationError
		if errors.As(err, &validation) {
			h.WriteAppError(w, internal.NewValidationError(validation.Msg, internal.ErrCodeValidationFailed))
			return
		}
		h.WriteAppError(w, internal.NewInternalError("internal server error", err))
	}
}

func filterFromQuery(r *http.Request) ListFilter {
	q := r.URL.Query()

	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	return ListFilter{
		Type:        q.Get("type"),
		StockStatus: q.Get("stock_status"),
		Search:      q.Get("search"),
		Limit:       limit,
		Offset:      offset,
	}
}
