package repository

import (
	"context"
	"fmt"

	"github.com/fitlens/backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionRepository handles the append-only payment record table.
type TransactionRepository struct {
	db *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts a transaction. Insertion rides the unique index on
// gateway_payment_id: ON CONFLICT DO NOTHING plus the affected-row count
// makes a racing duplicate callback lose cleanly instead of erroring.
// Returns inserted=false when a row with the same gateway payment ID exists.
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.SubscriptionTransaction) (bool, error) {
	query := `
		INSERT INTO subscription_transactions
			(id, user_id, plan_id, gateway_payment_id, gateway_order_id,
			 amount_cents, currency, status, payment_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (gateway_payment_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query,
		tx.ID, tx.UserID, tx.PlanID, tx.GatewayPaymentID, tx.GatewayOrderID,
		tx.AmountCents, tx.Currency, tx.Status, tx.PaymentDate, tx.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// FindByGatewayPaymentID returns the transaction recorded for a gateway
// payment ID, or nil when the payment has not been processed yet.
func (r *TransactionRepository) FindByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*domain.SubscriptionTransaction, error) {
	query := `
		SELECT id, user_id, plan_id, gateway_payment_id, gateway_order_id,
			amount_cents, currency, status, payment_date, created_at
		FROM subscription_transactions WHERE gateway_payment_id = $1
	`
	row := r.db.QueryRow(ctx, query, gatewayPaymentID)

	var tx domain.SubscriptionTransaction
	err := row.Scan(
		&tx.ID, &tx.UserID, &tx.PlanID, &tx.GatewayPaymentID, &tx.GatewayOrderID,
		&tx.AmountCents, &tx.Currency, &tx.Status, &tx.PaymentDate, &tx.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return &tx, nil
}
