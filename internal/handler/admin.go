package handler

import (
	"net/http"

	"github.com/fitlens/backend/internal/domain"
	"github.com/fitlens/backend/internal/repository"
	"github.com/go-chi/chi/v5"
)

// AdminHandler handles admin-key-gated endpoints: pricing mutations and the
// cached-profile listing.
type AdminHandler struct {
	plans *repository.PlanRepository
	users *repository.UserRepository
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(plans *repository.PlanRepository, users *repository.UserRepository) *AdminHandler {
	return &AdminHandler{plans: plans, users: users}
}

// UpdatePlan handles PUT /api/admin/plans/{id}.
func (h *AdminHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req domain.UpdatePlanRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	plan, err := h.plans.Update(r.Context(), id, &req)
	if err != nil {
		Error(w, err)
		return
	}
	if plan == nil {
		Error(w, domain.ErrNotFound("plan not found"))
		return
	}
	JSON(w, http.StatusOK, plan)
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListAll(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, users)
}
