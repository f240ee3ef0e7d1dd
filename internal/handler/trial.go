package handler

import (
	"net/http"

	"github.com/fitlens/backend/internal/domain"
	"github.com/fitlens/backend/internal/service"
)

// TrialHandler handles free-trial endpoints.
type TrialHandler struct {
	trials *service.TrialService
}

// NewTrialHandler creates a new TrialHandler.
func NewTrialHandler(trials *service.TrialService) *TrialHandler {
	return &TrialHandler{trials: trials}
}

// Check handles POST /api/check-free-trial.
func (h *TrialHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req domain.TrialRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if err := checkUser(r, req.UserID); err != nil {
		Error(w, err)
		return
	}

	status, err := h.trials.Check(r.Context(), req.UserID)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, status)
}

// Consume handles POST /api/update-free-trial. An exhausted allowance is a
// 403 carrying the capped counters, not an error body.
func (h *TrialHandler) Consume(w http.ResponseWriter, r *http.Request) {
	var req domain.TrialRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if err := checkUser(r, req.UserID); err != nil {
		Error(w, err)
		return
	}

	status, err := h.trials.Consume(r.Context(), req.UserID)
	if err != nil {
		Error(w, err)
		return
	}
	if status.TrialEnded {
		JSON(w, http.StatusForbidden, status)
		return
	}
	JSON(w, http.StatusOK, status)
}
