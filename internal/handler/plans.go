package handler

import (
	"net/http"

	"github.com/fitlens/backend/internal/repository"
)

// PlansHandler handles plan catalog endpoints.
type PlansHandler struct {
	plans *repository.PlanRepository
}

// NewPlansHandler creates a new PlansHandler.
func NewPlansHandler(plans *repository.PlanRepository) *PlansHandler {
	return &PlansHandler{plans: plans}
}

// List handles GET /api/plans.
func (h *PlansHandler) List(w http.ResponseWriter, r *http.Request) {
	plans, err := h.plans.List(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, plans)
}
