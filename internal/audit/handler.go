package audit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/yardguard/internal/transport"
	"github.com/frahmantamala/yardguard/pkg/logger"
)

type ServiceAPI interface {
	ListByUser(userID string, limit, offset int) ([]*Decision, error)
	ListDenied(limit, offset int) ([]*Decision, error)
}

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

// ListDecisions handles GET /audit/decisions?user_id=&denied=
func (h *Handler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 500 {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	var (
		decisions []*Decision
		err       error
	)
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		decisions, err = h.Service.ListByUser(userID, limit, offset)
	} else if r.URL.Query().Get("denied") == "true" {
		decisions, err = h.Service.ListDenied(limit, offset)
	} else {
		h.WriteError(w, http.StatusBadRequest, "either user_id or denied=true is required")
		return
	}

	if err != nil {
		h.Logger.Error("failed to list access decisions", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"decisions": decisions,
		"limit":     limit,
		"offset":    offset,
	})
}
