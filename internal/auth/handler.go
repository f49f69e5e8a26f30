package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dmarquez/inventory-management/internal"
	"github.com/dmarquez/inventory-management/internal/transport"
	"github.com/dmarquez/inventory-management/pkg/logger"
)

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	SessionFor(userID string) (*internal.Session, error)
	ResetPasswordToken(email string) (string, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.Service.Authenticate(dto)
	if err != nil {
		h.Logger.Error("authentication failed", "error", err)
		h.writeAuthError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.Service.RefreshTokens(dto.RefreshToken)
	if err != nil {
		h.Logger.Error("token refresh failed", "error", err)
		h.writeAuthError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	if _, err := h.Service.ValidateAccessToken(token); err != nil {
		h.WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var dto ResetPasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.Service.ResetPasswordToken(dto.Email)
	if err != nil {
		// always report accepted so account existence is not probeable
		h.Logger.Warn("password reset not issued", "error", err)
		h.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
		return
	}

	h.Logger.Info("password reset token issued", "email", dto.Email, "token_prefix", token[:8])
	h.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// AuthMiddleware validates the bearer token and then re-resolves the
// caller from storage on every request, so a deletion or deactivation
// takes effect immediately regardless of token lifetime.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.Logger.Error("token validation failed", "error", err)
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		session, err := h.Service.SessionFor(claims.UserID)
		if err != nil {
			h.Logger.Warn("session rejected", "user_id", claims.UserID, "error", err)
			h.writeAuthError(w, err)
			return
		}

		ctx := internal.ContextWithSession(r.Context(), session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission gates a route on one permission code. ADMIN role
// passes without consulting the ledger.
func (h *Handler) RequirePermission(code string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := internal.SessionFromContext(r.Context())
			if !ok {
				h.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			if !session.HasPermission(code) {
				h.Logger.Warn("access denied: insufficient permissions",
					"user_id", session.UserID,
					"required_permission", code,
					"user_permissions", session.Permissions)
				h.WriteAppError(w, internal.NewForbiddenError(
					"insufficient permissions", internal.ErrCodePermissionRequired).
					WithDetails(map[string]string{"required_permission": code}))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) writeAuthError(w http.ResponseWriter, err error) {
	switch err {
	case ErrInvalidCredentials:
		h.WriteAppError(w, internal.NewUnauthorizedError("invalid credentials", internal.ErrCodeInvalidCredentials))
	case ErrAccountDisabled:
		h.WriteAppError(w, internal.NewUnauthorizedError("account is disabled", internal.ErrCodeAccountDisabled))
	case ErrAccountDeleted:
		h.WriteAppError(w, internal.NewUnauthorizedError("account is deleted", internal.ErrCodeAccountDeleted))
	case ErrTokenExpired:
		h.WriteAppError(w, internal.NewUnauthorizedError("token expired", internal.ErrCodeTokenExpired))
	case ErrInvalidToken:
		h.WriteAppError(w, internal.NewUnauthorizedError("invalid token", internal.ErrCodeInvalidToken))
	case ErrProfileNotFound:
		h.WriteAppError(w, internal.NewInternalError("account state is inconsistent", err))
	default:
		if _, ok := err.(ValidationError); ok {
			h.WriteAppError(w, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed))
		} else {
			h.WriteAppError(w, internal.NewInternalError("internal server error", err))
		}
	}
}
