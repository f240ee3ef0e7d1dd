package domain

import "time"

// Subscription statuses. Transitions are one-directional in practice:
// active -> paused -> active, active -> cancelled, and an explicit
// cancelled -> active reactivation path.
const (
	SubscriptionActive    = "active"
	SubscriptionPaused    = "paused"
	SubscriptionCancelled = "cancelled"
)

// BillingPeriod is the quota window. The rollover anchor advances by this
// much whenever a consume crosses it.
const BillingPeriod = 30 * 24 * time.Hour

// UserSubscription is a user's subscription to a plan. At most one row per
// user should be active at a time.
type UserSubscription struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	PlanID         string     `json:"planId"`
	Status         string     `json:"status"`
	StartDate      time.Time  `json:"startDate"`
	EndDate        time.Time  `json:"endDate"`
	QuotaUsed      int        `json:"quotaUsed"`
	MonthlyQuota   int        `json:"monthlyQuota"`
	LastQuotaReset time.Time  `json:"lastQuotaReset"`
	PausedAt       *time.Time `json:"pausedAt,omitempty"`
	ResumedAt      *time.Time `json:"resumedAt,omitempty"`
	CancelledAt    *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// ResetDate is when the current quota window rolls over.
func (s *UserSubscription) ResetDate() time.Time {
	return s.LastQuotaReset.Add(BillingPeriod)
}

// QuotaStatus is the result of a check-and-consume against a paid plan.
type QuotaStatus struct {
	Success         bool      `json:"success"`
	QuotaUsed       int       `json:"quotaUsed"`
	QuotaLimit      int       `json:"quotaLimit"`
	QuotaRemaining  int       `json:"quotaRemaining"`
	ResetDate       time.Time `json:"resetDate"`
	RequiresUpgrade bool      `json:"requiresUpgrade,omitempty"`
}

// CheckQuotaRequest is the input for POST /api/check-quota.
type CheckQuotaRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// PaymentSuccessRequest is the payment-confirmation callback body. The
// signature is an HMAC over "orderId|paymentId" issued by the gateway.
type PaymentSuccessRequest struct {
	UserID           string     `json:"userId" validate:"required"`
	PlanName         string     `json:"planName" validate:"required"`
	AmountCents      int64      `json:"amount" validate:"required,gt=0"`
	Currency         string     `json:"currency"`
	GatewayPaymentID string     `json:"gatewayPaymentId" validate:"required"`
	GatewayOrderID   string     `json:"gatewayOrderId" validate:"required"`
	Signature        string     `json:"signature" validate:"required"`
	StartDate        *time.Time `json:"startDate"`
	EndDate          *time.Time `json:"endDate"`
}

// PaymentSuccessResponse reports the created (or previously created, when the
// callback is a duplicate) subscription.
type PaymentSuccessResponse struct {
	Success        bool              `json:"success"`
	Duplicate      bool              `json:"duplicate,omitempty"`
	Subscription   *UserSubscription `json:"subscription,omitempty"`
	TransactionID  string            `json:"transactionId,omitempty"`
	SubscriptionID string            `json:"subscriptionId,omitempty"`
}

// SubscriptionActionRequest covers cancel/pause/resume/reactivate.
type SubscriptionActionRequest struct {
	UserID         string `json:"userId" validate:"required"`
	SubscriptionID string `json:"subscriptionId" validate:"required"`
}

// UpdateSubscriptionRequest swaps the plan on an active subscription. Usage
// already consumed under the old plan is not prorated.
type UpdateSubscriptionRequest struct {
	UserID         string `json:"userId" validate:"required"`
	SubscriptionID string `json:"subscriptionId" validate:"required"`
	NewPlanID      string `json:"newPlanId" validate:"required"`
}
