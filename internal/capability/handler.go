package capability

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/yardguard/internal"
	"github.com/frahmantamala/yardguard/internal/auth"
	"github.com/frahmantamala/yardguard/internal/transport"
	"github.com/frahmantamala/yardguard/pkg/logger"
	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// ListGrants handles GET /capabilities?user_id=N
func (h *Handler) ListGrants(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "user_id query parameter is required")
		return
	}

	grants, err := h.Service.ListGrants(userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{"grants": grants})
}

// CreateGrant handles POST /capabilities
func (h *Handler) CreateGrant(w http.ResponseWriter, r *http.Request) {
	grantor, ok := auth.UserFromContext(r.Context())
	if !ok || grantor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateGrantDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	grant, err := h.Service.CreateGrant(dto, grantor.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, grant)
}

// UpdateGrant handles PATCH /capabilities/{id}
func (h *Handler) UpdateGrant(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid grant id")
		return
	}

	var dto UpdateGrantDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	grant, err := h.Service.UpdateGrant(id, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, grant)
}

// RevokeGrant handles DELETE /capabilities/{id}
func (h *Handler) RevokeGrant(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid grant id")
		return
	}

	if err := h.Service.RevokeGrant(id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		h.WriteJSONError(w, appErr)
		return
	}
	h.Logger.Error("capability handler: unexpected error", "error", err)
	h.WriteError(w, http.StatusInternalServerError, "internal server error")
}
