package service

import (
	"context"
	"time"

	"github.com/fitlens/backend/internal/domain"
	"github.com/fitlens/backend/pkg/payment"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SubscriptionStore is the persistence surface for subscription lifecycle
// operations. All transitions are conditional updates: ok=false means the
// row was not in the required source state.
type SubscriptionStore interface {
	Create(ctx context.Context, sub *domain.UserSubscription) error
	FindActiveByUserID(ctx context.Context, userID string) (*domain.UserSubscription, error)
	FindByID(ctx context.Context, id string) (*domain.UserSubscription, error)
	Cancel(ctx context.Context, id string) (bool, error)
	Pause(ctx context.Context, id string) (bool, error)
	Resume(ctx context.Context, id string) (bool, error)
	Reactivate(ctx context.Context, id string, endDate time.Time) (bool, error)
	UpdatePlan(ctx context.Context, id, planID string, monthlyQuota int) (bool, error)
}

// PlanStore resolves catalog plans.
type PlanStore interface {
	FindByID(ctx context.Context, id string) (*domain.SubscriptionPlan, error)
	FindByName(ctx context.Context, name string) (*domain.SubscriptionPlan, error)
}

// TransactionStore records payment confirmations. Create rides the unique
// index on gateway_payment_id and reports inserted=false on a duplicate.
type TransactionStore interface {
	Create(ctx context.Context, tx *domain.SubscriptionTransaction) (bool, error)
	FindByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*domain.SubscriptionTransaction, error)
}

// SubscriptionService owns the subscription lifecycle: creation from payment
// confirmations, and the cancel/pause/resume/reactivate/update transitions.
type SubscriptionService struct {
	subs    SubscriptionStore
	plans   PlanStore
	txs     TransactionStore
	gateway payment.Gateway
	log     *logrus.Logger
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(subs SubscriptionStore, plans PlanStore, txs TransactionStore, gateway payment.Gateway, log *logrus.Logger) *SubscriptionService {
	return &SubscriptionService{
		subs:    subs,
		plans:   plans,
		txs:     txs,
		gateway: gateway,
		log:     log,
	}
}

// GetCurrent returns the user's active subscription, or nil.
func (s *SubscriptionService) GetCurrent(ctx context.Context, userID string) (*domain.UserSubscription, error) {
	sub, err := s.subs.FindActiveByUserID(ctx, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to load subscription", err)
	}
	return sub, nil
}

// CreateCheckout registers a gateway order for a plan ahead of checkout.
// The client completes payment against the returned order and the gateway
// redirect lands on payment-success.
func (s *SubscriptionService) CreateCheckout(ctx context.Context, userID, planID string) (*payment.Order, error) {
	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		return nil, domain.ErrInternal("failed to resolve plan", err)
	}
	if plan == nil {
		return nil, domain.ErrNotFound("unknown plan: " + planID)
	}

	receipt := "sub_" + userID + "_" + uuid.New().String()
	order, err := s.gateway.CreateOrder(ctx, plan.PriceCents, plan.Currency, receipt)
	if err != nil {
		return nil, domain.ErrUpstream("failed to create gateway order", err)
	}
	return order, nil
}

// HandlePaymentSuccess processes a payment confirmation callback. Order of
// checks: signature, gateway capture status, idempotency, then writes. A
// duplicate gatewayPaymentId short-circuits with success and no writes.
func (s *SubscriptionService) HandlePaymentSuccess(ctx context.Context, req *domain.PaymentSuccessRequest) (*domain.PaymentSuccessResponse, error) {
	if !s.gateway.VerifySignature(req.GatewayOrderID, req.GatewayPaymentID, req.Signature) {
		return nil, domain.ErrUnauthorized("invalid payment signature")
	}

	pay, err := s.gateway.FetchPayment(ctx, req.GatewayPaymentID)
	if err != nil {
		return nil, domain.ErrUpstream("payment gateway lookup failed", err)
	}
	if !payment.Confirmed(pay.Status) {
		return nil, domain.ErrUnauthorized("payment not captured")
	}

	// Advisory idempotency pre-check; the unique index on
	// gateway_payment_id is the actual guard.
	existing, err := s.txs.FindByGatewayPaymentID(ctx, req.GatewayPaymentID)
	if err != nil {
		return nil, domain.ErrInternal("failed to check payment record", err)
	}
	if existing != nil {
		sub, _ := s.subs.FindActiveByUserID(ctx, existing.UserID)
		resp := &domain.PaymentSuccessResponse{
			Success:       true,
			Duplicate:     true,
			Subscription:  sub,
			TransactionID: existing.ID,
		}
		if sub != nil {
			resp.SubscriptionID = sub.ID
		}
		return resp, nil
	}

	plan, err := s.plans.FindByName(ctx, domain.ResolvePlanName(req.PlanName))
	if err != nil {
		return nil, domain.ErrInternal("failed to resolve plan", err)
	}
	if plan == nil {
		return nil, domain.ErrNotFound("unknown plan: " + req.PlanName)
	}

	currency := req.Currency
	if currency == "" {
		currency = plan.Currency
	}

	now := time.Now()
	start := now
	if req.StartDate != nil {
		start = *req.StartDate
	}
	end := start.Add(domain.BillingPeriod)
	if req.EndDate != nil {
		end = *req.EndDate
	}

	sub := &domain.UserSubscription{
		ID:             uuid.New().String(),
		UserID:         req.UserID,
		PlanID:         plan.ID,
		Status:         domain.SubscriptionActive,
		StartDate:      start,
		EndDate:        end,
		QuotaUsed:      0,
		MonthlyQuota:   plan.MonthlyQuota,
		LastQuotaReset: start,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, domain.ErrInternal("failed to create subscription", err)
	}

	tx := &domain.SubscriptionTransaction{
		ID:               uuid.New().String(),
		UserID:           req.UserID,
		PlanID:           plan.ID,
		GatewayPaymentID: req.GatewayPaymentID,
		GatewayOrderID:   req.GatewayOrderID,
		AmountCents:      req.AmountCents,
		Currency:         currency,
		Status:           pay.Status,
		PaymentDate:      now,
		CreatedAt:        now,
	}
	inserted, err := s.txs.Create(ctx, tx)
	if err != nil {
		// Best-effort secondary bookkeeping: the subscription exists, so
		// log and report success rather than failing the confirmation.
		s.log.WithError(err).WithField("gatewayPaymentId", req.GatewayPaymentID).
			Warn("failed to record subscription transaction")
	} else if !inserted {
		s.log.WithField("gatewayPaymentId", req.GatewayPaymentID).
			Warn("duplicate payment confirmation lost the insert race")
	}

	return &domain.PaymentSuccessResponse{
		Success:        true,
		Subscription:   sub,
		TransactionID:  tx.ID,
		SubscriptionID: sub.ID,
	}, nil
}

// Cancel moves an active or paused subscription to cancelled. Cancelling an
// already-cancelled subscription is a conflict, not a silent success.
func (s *SubscriptionService) Cancel(ctx context.Context, userID, subscriptionID string) (*domain.UserSubscription, error) {
	sub, err := s.owned(ctx, userID, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status == domain.SubscriptionCancelled {
		return nil, domain.ErrConflict("subscription already cancelled")
	}

	ok, err := s.subs.Cancel(ctx, subscriptionID)
	if err != nil {
		return nil, domain.ErrInternal("failed to cancel subscription", err)
	}
	if !ok {
		return nil, domain.ErrConflict("subscription already cancelled")
	}
	return s.reload(ctx, subscriptionID)
}

// Pause moves an active subscription to paused.
func (s *SubscriptionService) Pause(ctx context.Context, userID, subscriptionID string) (*domain.UserSubscription, error) {
	sub, err := s.owned(ctx, userID, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.SubscriptionActive {
		return nil, domain.ErrBadRequest("only active subscriptions can be paused")
	}

	ok, err := s.subs.Pause(ctx, subscriptionID)
	if err != nil {
		return nil, domain.ErrInternal("failed to pause subscription", err)
	}
	if !ok {
		return nil, domain.ErrConflict("subscription is not active")
	}
	return s.reload(ctx, subscriptionID)
}

// Resume moves a paused subscription back to active.
func (s *SubscriptionService) Resume(ctx context.Context, userID, subscriptionID string) (*domain.UserSubscription, error) {
	sub, err := s.owned(ctx, userID, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.SubscriptionPaused {
		return nil, domain.ErrBadRequest("only paused subscriptions can be resumed")
	}

	ok, err := s.subs.Resume(ctx, subscriptionID)
	if err != nil {
		return nil, domain.ErrInternal("failed to resume subscription", err)
	}
	if !ok {
		return nil, domain.ErrConflict("subscription is not paused")
	}
	return s.reload(ctx, subscriptionID)
}

// Reactivate revives a cancelled subscription, recomputing end_date from the
// billing cycle and zeroing the quota window. Reactivating a non-cancelled
// subscription is a validation error.
func (s *SubscriptionService) Reactivate(ctx context.Context, userID, subscriptionID string) (*domain.UserSubscription, error) {
	sub, err := s.owned(ctx, userID, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.SubscriptionCancelled {
		return nil, domain.ErrBadRequest("only cancelled subscriptions can be reactivated")
	}

	ok, err := s.subs.Reactivate(ctx, subscriptionID, time.Now().Add(domain.BillingPeriod))
	if err != nil {
		return nil, domain.ErrInternal("failed to reactivate subscription", err)
	}
	if !ok {
		return nil, domain.ErrConflict("subscription is not cancelled")
	}
	return s.reload(ctx, subscriptionID)
}

// UpdatePlan swaps the plan on an active subscription. Usage consumed under
// the old plan carries over unprorated.
func (s *SubscriptionService) UpdatePlan(ctx context.Context, userID, subscriptionID, newPlanID string) (*domain.UserSubscription, error) {
	sub, err := s.owned(ctx, userID, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.SubscriptionActive {
		return nil, domain.ErrBadRequest("only active subscriptions can change plan")
	}

	plan, err := s.plans.FindByID(ctx, newPlanID)
	if err != nil {
		return nil, domain.ErrInternal("failed to resolve plan", err)
	}
	if plan == nil {
		return nil, domain.ErrNotFound("unknown plan: " + newPlanID)
	}

	ok, err := s.subs.UpdatePlan(ctx, subscriptionID, plan.ID, plan.MonthlyQuota)
	if err != nil {
		return nil, domain.ErrInternal("failed to update subscription plan", err)
	}
	if !ok {
		return nil, domain.ErrConflict("subscription is not active")
	}
	return s.reload(ctx, subscriptionID)
}

func (s *SubscriptionService) owned(ctx context.Context, userID, subscriptionID string) (*domain.UserSubscription, error) {
	sub, err := s.subs.FindByID(ctx, subscriptionID)
	if err != nil {
		return nil, domain.ErrInternal("failed to load subscription", err)
	}
	if sub == nil || sub.UserID != userID {
		return nil, domain.ErrNotFound("subscription not found")
	}
	return sub, nil
}

func (s *SubscriptionService) reload(ctx context.Context, subscriptionID string) (*domain.UserSubscription, error) {
	sub, err := s.subs.FindByID(ctx, subscriptionID)
	if err != nil {
		return nil, domain.ErrInternal("failed to reload subscription", err)
	}
	return sub, nil
}
