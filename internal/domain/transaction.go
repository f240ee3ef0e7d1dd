package domain

import "time"

// SubscriptionTransaction is an append-only payment record. The unique index
// on GatewayPaymentID is the idempotency guard against double-processing a
// confirmation callback.
type SubscriptionTransaction struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	PlanID           string    `json:"planId"`
	GatewayPaymentID string    `json:"gatewayPaymentId"`
	GatewayOrderID   string    `json:"gatewayOrderId"`
	AmountCents      int64     `json:"amountCents"`
	Currency         string    `json:"currency"`
	Status           string    `json:"status"`
	PaymentDate      time.Time `json:"paymentDate"`
	CreatedAt        time.Time `json:"createdAt"`
}
