package payment

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MockGateway is an in-memory gateway for development and tests. Payments
// registered via AddPayment are returned by FetchPayment; signatures are
// verified with the mock's secret.
type MockGateway struct {
	secret string

	mu       sync.Mutex
	payments map[string]*Payment
}

// NewMockGateway creates a mock gateway with the given signing secret.
func NewMockGateway(secret string) *MockGateway {
	return &MockGateway{
		secret:   secret,
		payments: make(map[string]*Payment),
	}
}

// AddPayment registers a payment the mock will report.
func (g *MockGateway) AddPayment(p *Payment) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payments[p.ID] = p
}

func (g *MockGateway) CreateOrder(ctx context.Context, amountCents int64, currency, receipt string) (*Order, error) {
	return &Order{
		ID:          "order_" + uuid.New().String(),
		AmountCents: amountCents,
		Currency:    currency,
		Receipt:     receipt,
		Status:      StatusCreated,
	}, nil
}

func (g *MockGateway) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.payments[paymentID]; ok {
		return p, nil
	}
	// Unknown payments report as captured so local development works
	// without seeding the mock first.
	return &Payment{ID: paymentID, Status: StatusCaptured}, nil
}

func (g *MockGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(orderID, paymentID, signature, g.secret)
}
