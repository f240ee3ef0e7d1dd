package handler

import (
	"net/http"

	"github.com/fitlens/backend/internal/domain"
	"github.com/fitlens/backend/internal/service"
)

// QuotaHandler handles the paid-plan quota endpoint.
type QuotaHandler struct {
	quota *service.QuotaService
}

// NewQuotaHandler creates a new QuotaHandler.
func NewQuotaHandler(quota *service.QuotaService) *QuotaHandler {
	return &QuotaHandler{quota: quota}
}

// CheckAndConsume handles POST /api/check-quota. Exhaustion returns a 403
// with requiresUpgrade and the current counters.
func (h *QuotaHandler) CheckAndConsume(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckQuotaRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if err := checkUser(r, req.UserID); err != nil {
		Error(w, err)
		return
	}

	status, err := h.quota.CheckAndConsume(r.Context(), req.UserID)
	if err != nil {
		Error(w, err)
		return
	}
	if !status.Success {
		JSON(w, http.StatusForbidden, status)
		return
	}
	JSON(w, http.StatusOK, status)
}
