package user

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmarquez/inventory-management/internal"
	"github.com/dmarquez/inventory-management/internal/transport"
	"github.com/dmarquez/inventory-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(dto CreateUserDTO, actor string) (*User, error)
	Update(id string, dto UpdateUserDTO, actor string) (*User, error)
	SetActive(id string, active bool, actor string) error
	SoftDelete(id string, actor string) error
	Restore(id string, actor string) (*User, error)
	Get(id string) (*User, error)
	List(includeDeleted bool) ([]*User, error)
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

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	session, ok := internal.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.Create(dto, session.UserID)
	if err != nil {
		h.Logger.Error("CreateUser: service error", "error", err)
		h.writeUserError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, err := h.Service.Get(id)
	if err != nil {
		h.writeUserError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"

	users, err := h.Service.List(includeDeleted)
	if err != nil {
		h.Logger.Error("ListUsers: service error", "error", err)
		h.writeUserError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"count": len(users),
	})
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	session, ok := internal.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")

	var dto UpdateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.Update(id, dto, session.UserID)
	if err != nil {
		h.Logger.Error("UpdateUser: service error", "error", err, "user_id", id)
		h.writeUserError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) SetUserActive(w http.ResponseWriter, r *http.Request) {
	session, ok := internal.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")

	var dto SetActiveDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.SetActive(id, dto.IsActive, session.UserID); err != nil {
		h.Logger.Error("SetUserActive: service error", "error", err, "user_id", id)
		h.writeUserError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":   id,
		"is_active": dto.IsActive,
	})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	session, ok := internal.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")

	if id == session.UserID {
		h.WriteError(w, http.StatusConflict, "cannot delete your own account")
		return
	}

	if err := h.Service.SoftDelete(id, session.UserID); err != nil {
		h.Logger.Error("DeleteUser: service error", "error", err, "user_id", id)
		h.writeUserError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) RestoreUser(w http.ResponseWriter, r *http.Request) {
	session, ok := internal.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")

	restored, err := h.Service.Restore(id, session.UserID)
	if err != nil {
		h.Logger.Error("RestoreUser: service error", "error", err, "user_id", id)
		h.writeUserError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, restored)
}

func (h *Handler) writeUserError(w http.ResponseWriter, err error) {
	var validation ValidationError
	switch {
	case errors.Is(err, ErrUserNotFound):
		h.WriteAppError(w, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound))
	case errors.Is(err, ErrDuplicateEmail):
		h.WriteAppError(w, internal.NewConflictError("email already in use", internal.ErrCodeDuplicateEmail))
	case errors.Is(err, ErrNotDeleted):
		h.WriteAppError(w, internal.NewConflictError("user is not deleted", internal.ErrCodeNotDeleted))
	case errors.As(err, &validation):
		h.WriteAppError(w, internal.NewValidationError(validation.Msg, internal.ErrCodeValidationFailed))
	default:
		h.WriteAppError(w, internal.NewInternalError("internal server error", err))
	}
}
