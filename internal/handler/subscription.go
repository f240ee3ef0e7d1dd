package handler

import (
	"net/http"

	"github.com/fitlens/backend/internal/domain"
	"github.com/fitlens/backend/internal/service"
)

// SubscriptionHandler handles subscription lifecycle endpoints.
type SubscriptionHandler struct {
	subs *service.SubscriptionService
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(subs *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subs: subs}
}

// CreateCheckout handles POST /api/create-order.
func (h *SubscriptionHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId" validate:"required"`
		PlanID string `json:"planId" validate:"required"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if err := checkUser(r, req.UserID); err != nil {
		Error(w, err)
		return
	}

	order, err := h.subs.CreateCheckout(r.Context(), req.UserID, req.PlanID)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, order)
}

// PaymentSuccess handles POST /api/payment-success. The endpoint is public
// (the gateway redirect cannot carry our session) and is guarded by the
// HMAC signature instead.
func (h *SubscriptionHandler) PaymentSuccess(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentSuccessRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	resp, err := h.subs.HandlePaymentSuccess(r.Context(), &req)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}

// GetCurrent handles POST /api/subscription.
func (h *SubscriptionHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckQuotaRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if err := checkUser(r, req.UserID); err != nil {
		Error(w, err)
		return
	}

	sub, err := h.subs.GetCurrent(r.Context(), req.UserID)
	if err != nil {
		Error(w, err)
		return
	}
	if sub == nil {
		JSON(w, http.StatusOK, map[string]interface{}{"status": "none"})
		return
	}
	JSON(w, http.StatusOK, sub)
}

// action factors the shared decode/ownership flow of the lifecycle endpoints.
func (h *SubscriptionHandler) action(w http.ResponseWriter, r *http.Request,
	do func(userID, subscriptionID string) (*domain.UserSubscription, error)) {
	var req domain.SubscriptionActionRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if err := checkUser(r, req.UserID); err != nil {
		Error(w, err)
		return
	}

	sub, err := do(req.UserID, req.SubscriptionID)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "subscription": sub})
}

// Cancel handles POST /api/cancel-subscription.
func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(userID, subID string) (*domain.UserSubscription, error) {
		return h.subs.Cancel(r.Context(), userID, subID)
	})
}

// Pause handles POST /api/pause-subscription.
func (h *SubscriptionHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(userID, subID string) (*domain.UserSubscription, error) {
		return h.subs.Pause(r.Context(), userID, subID)
	})
}

// Resume handles POST /api/resume-subscription.
func (h *SubscriptionHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(userID, subID string) (*domain.UserSubscription, error) {
		return h.subs.Resume(r.Context(), userID, subID)
	})
}

// Reactivate handles POST /api/reactivate-subscription.
func (h *SubscriptionHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(userID, subID string) (*domain.UserSubscription, error) {
		return h.subs.Reactivate(r.Context(), userID, subID)
	})
}

// UpdatePlan handles POST /api/update-subscription.
func (h *SubscriptionHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateSubscriptionRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if err := checkUser(r, req.UserID); err != nil {
		Error(w, err)
		return
	}

	sub, err := h.subs.UpdatePlan(r.Context(), req.UserID, req.SubscriptionID, req.NewPlanID)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "subscription": sub})
}
