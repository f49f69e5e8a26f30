package permission

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dmarquez/inventory-management/internal"
	"github.com/dmarquez/inventory-management/internal/transport"
	"github.com/dmarquez/inventory-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Catalog() ([]*Permission, error)
	Grant(userID, permissionID, actor string) (*Grant, error)
	Revoke(userID, permissionID, actor string) error
	EffectivePermissions(userID, role string) ([]string, error)
	Reconcile(userID string, desiredPermissionIDs []string, actor string) error
	History(userID string) ([]*Grant, error)
}

// UserRoleResolver answers what role a user holds, needed to compute
// that user's effective set (ADMIN bypasses the ledger).
type UserRoleResolver interface {
	RoleOf(userID string) (string, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Roles   UserRoleResolver
}

func NewHandler(service ServiceAPI, roles UserRoleResolver) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		Roles:       roles,
	}
}

func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	perms, err := h.Service.Catalog()
	if err != nil {
		h.Logger.Error("GetCatalog: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to load permissions")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"permissions": perms})
}

func (h *Handler) GetUserPermissions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	role, err := h.Roles.RoleOf(userID)
	if err != nil {
		h.Logger.Error("GetUserPermissions: role lookup failed", "error", err, "user_id", userID)
		h.WriteError(w, http.StatusNotFound, "user not found")
		return
	}

	codes, err := h.Service.EffectivePermissions(userID, role)
	if err != nil {
		h.Logger.Error("GetUserPermissions: service error", "error", err, "user_id", userID)
		h.WriteError(w, http.StatusInternalServerError, "failed to load permissions")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":     userID,
		"role":        role,
		"permissions": codes,
	})
}

func (h *Handler) ReconcileUserPermissions(w http.ResponseWriter, r *http.Request) {
	session, ok := internal.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	userID := chi.URLParam(r, "id")

	var dto ReconcileDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Service.Reconcile(userID, dto.PermissionIDs, session.UserID); err != nil {
		h.Logger.Error("ReconcileUserPermissions: service error", "error", err, "user_id", userID)

		switch err {
		case ErrPermissionNotFound:
			h.WriteAppError(w, internal.NewValidationError("unknown permission id", internal.ErrCodePermissionUnknown))
		case ErrDuplicateGrant:
			h.WriteAppError(w, internal.NewConflictError("permission already granted", internal.ErrCodeDuplicateGrant))
		default:
			h.WriteAppError(w, internal.NewInternalError("failed to update permissions", err))
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "reconciled"})
}

func (h *Handler) GrantPermission(w http.ResponseWriter, r *http.Request) {
	session, ok := internal.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	userID := chi.URLParam(r, "id")

	var dto GrantDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	grant, err := h.Service.Grant(userID, dto.PermissionID, session.UserID)
	if err != nil {
		h.Logger.Error("GrantPermission: service error", "error", err, "user_id", userID)

		switch err {
		case ErrDuplicateGrant:
			h.WriteAppError(w, internal.NewConflictError("permission already granted", internal.ErrCodeDuplicateGrant))
		case ErrPermissionNotFound:
			h.WriteAppError(w, internal.NewValidationError("unknown permission id", internal.ErrCodePermissionUnknown))
		default:
			h.WriteAppError(w, internal.NewInternalError("failed to grant permission", err))
		}
		return
	}

	h.WriteJSON(w, http.StatusCreated, grant)
}

func (h *Handler) RevokePermission(w http.ResponseWriter, r *http.Request) {
	session, ok := internal.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	userID := chi.URLParam(r, "id")
	permissionID := chi.URLParam(r, "permissionID")

	if err := h.Service.Revoke(userID, permissionID, session.UserID); err != nil {
		h.Logger.Error("RevokePermission: service error", "error", err, "user_id", userID)
		h.WriteError(w, http.StatusInternalServerError, "failed to revoke permission")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	history, err := h.Service.History(userID)
	if err != nil {
		h.Logger.Error("GetHistory: service error", "error", err, "user_id", userID)
		h.WriteError(w, http.StatusInternalServerError, "failed to load permission history")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"history": history,
	})
}
