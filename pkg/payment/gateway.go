package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Payment statuses reported by the gateway. Only captured or authorized
// payments may create subscriptions.
const (
	StatusCreated    = "created"
	StatusAuthorized = "authorized"
	StatusCaptured   = "captured"
	StatusFailed     = "failed"
)

// Order is a gateway order created ahead of checkout.
type Order struct {
	ID          string    `json:"id"`
	AmountCents int64     `json:"amount"`
	Currency    string    `json:"currency"`
	Receipt     string    `json:"receipt"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Payment is the gateway's record of a capture attempt.
type Payment struct {
	ID          string `json:"id"`
	OrderID     string `json:"orderId"`
	AmountCents int64  `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	Method      string `json:"method"`
}

// Gateway defines the payment provider surface this service consumes.
type Gateway interface {
	// CreateOrder registers an order for the given amount ahead of checkout.
	CreateOrder(ctx context.Context, amountCents int64, currency, receipt string) (*Order, error)
	// FetchPayment looks up a payment's status by its gateway ID.
	FetchPayment(ctx context.Context, paymentID string) (*Payment, error)
	// VerifySignature checks the confirmation signature for an order/payment pair.
	VerifySignature(orderID, paymentID, signature string) bool
}

// Confirmed reports whether a payment status represents money the gateway
// has actually secured.
func Confirmed(status string) bool {
	return status == StatusCaptured || status == StatusAuthorized
}

// Sign computes the confirmation signature the gateway issues: an
// HMAC-SHA256 over "orderId|paymentId" with the shared secret, hex encoded.
func Sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a confirmation signature in constant time.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	expected := Sign(orderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
