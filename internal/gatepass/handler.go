package gatepass

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/yardguard/internal"
	"github.com/frahmantamala/yardguard/internal/auth"
	"github.com/frahmantamala/yardguard/internal/authz"
	"github.com/frahmantamala/yardguard/internal/transport"
	"github.com/frahmantamala/yardguard/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	IssueGatePass(actor Actor, dto CreateGatePassDTO) (*GatePass, error)
	GetGatePass(actor Actor, id int64) (authz.RecordView, error)
	ListGatePasses(actor Actor, limit, offset int) ([]authz.RecordView, error)
	UpdateGatePass(actor Actor, id int64, dto UpdateGatePassDTO) (*GatePass, error)
	ApproveGatePass(actor Actor, id int64) error
	RejectGatePass(actor Actor, id int64, reason string) error
	DeleteGatePass(actor Actor, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// actorFromRequest rebuilds the evaluation inputs the auth middleware
// stashed on the request.
func actorFromRequest(r *http.Request) (Actor, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		return Actor{}, false
	}
	return Actor{
		Subject:      user.Subject(),
		Capabilities: user.Capabilities,
		Context:      auth.AccessContextFromContext(r.Context()),
	}, true
}

func (h *Handler) IssueGatePass(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateGatePassDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pass, err := h.Service.IssueGatePass(actor, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, pass)
}

func (h *Handler) GetGatePass(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid gate pass ID")
		return
	}

	record, err := h.Service.GetGatePass(actor, id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) ListGatePasses(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 20
	offset := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	records, err := h.Service.ListGatePasses(actor, limit, offset)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"gate_passes": records,
		"limit":       limit,
		"offset":      offset,
	})
}

func (h *Handler) UpdateGatePass(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid gate pass ID")
		return
	}

	var dto UpdateGatePassDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pass, err := h.Service.UpdateGatePass(actor, id, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, pass)
}

func (h *Handler) ApproveGatePass(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid gate pass ID")
		return
	}

	if err := h.Service.ApproveGatePass(actor, id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

func (h *Handler) RejectGatePass(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid gate pass ID")
		return
	}

	var dto RejectGatePassDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Service.RejectGatePass(actor, id, dto.Reason); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

func (h *Handler) DeleteGatePass(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid gate pass ID")
		return
	}

	if err := h.Service.DeleteGatePass(actor, id); err != nil {
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
	h.Logger.Error("gate pass handler: unexpected error", "error", err)
	h.WriteError(w, http.StatusInternalServerError, "internal server error")
}
