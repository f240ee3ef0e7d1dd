package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fitlens/backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const subscriptionColumns = `
	id, user_id, plan_id, status, start_date, end_date,
	quota_used, monthly_quota, last_quota_reset,
	paused_at, resumed_at, cancelled_at, created_at, updated_at
`

// SubscriptionRepository handles database operations for user subscriptions.
type SubscriptionRepository struct {
	db *pgxpool.Pool
}

// NewSubscriptionRepository creates a new SubscriptionRepository.
func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func scanSubscription(row pgx.Row) (*domain.UserSubscription, error) {
	var s domain.UserSubscription
	err := row.Scan(
		&s.ID, &s.UserID, &s.PlanID, &s.Status, &s.StartDate, &s.EndDate,
		&s.QuotaUsed, &s.MonthlyQuota, &s.LastQuotaReset,
		&s.PausedAt, &s.ResumedAt, &s.CancelledAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new subscription row.
func (r *SubscriptionRepository) Create(ctx context.Context, sub *domain.UserSubscription) error {
	query := `
		INSERT INTO user_subscriptions
			(id, user_id, plan_id, status, start_date, end_date,
			 quota_used, monthly_quota, last_quota_reset, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		sub.ID, sub.UserID, sub.PlanID, sub.Status, sub.StartDate, sub.EndDate,
		sub.QuotaUsed, sub.MonthlyQuota, sub.LastQuotaReset, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// FindActiveByUserID returns the user's active subscription, or nil when the
// user has none.
func (r *SubscriptionRepository) FindActiveByUserID(ctx context.Context, userID string) (*domain.UserSubscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM user_subscriptions
		WHERE user_id = $1 AND status = 'active'
		ORDER BY created_at DESC LIMIT 1
	`
	sub, err := scanSubscription(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // no active subscription
		}
		return nil, fmt.Errorf("failed to find active subscription: %w", err)
	}
	return sub, nil
}

// FindByID returns a subscription by ID, or nil when absent.
func (r *SubscriptionRepository) FindByID(ctx context.Context, id string) (*domain.UserSubscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM user_subscriptions WHERE id = $1`
	sub, err := scanSubscription(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}
	return sub, nil
}

// ConsumeQuota performs the check-and-increment as one conditional UPDATE.
// The monthly rollover is folded into the same statement: when the reset
// boundary has passed, usage restarts at 1 and the anchor advances to NOW()
// in the same write that counts the consume. Zero matched rows means the
// quota is exhausted and nothing was mutated.
func (r *SubscriptionRepository) ConsumeQuota(ctx context.Context, subscriptionID string) (*domain.UserSubscription, bool, error) {
	query := `
		UPDATE user_subscriptions
		SET quota_used = CASE
				WHEN last_quota_reset + INTERVAL '30 days' <= NOW() THEN 1
				ELSE quota_used + 1
			END,
			last_quota_reset = CASE
				WHEN last_quota_reset + INTERVAL '30 days' <= NOW() THEN NOW()
				ELSE last_quota_reset
			END,
			updated_at = NOW()
		WHERE id = $1
			AND status = 'active'
			AND (quota_used < monthly_quota OR last_quota_reset + INTERVAL '30 days' <= NOW())
		RETURNING ` + subscriptionColumns + `
	`
	sub, err := scanSubscription(r.db.QueryRow(ctx, query, subscriptionID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, false, nil // exhausted, no mutation
		}
		return nil, false, fmt.Errorf("failed to consume quota: %w", err)
	}
	return sub, true, nil
}

// Cancel marks a subscription cancelled. Only active or paused rows match;
// ok=false means the subscription was already cancelled (or missing).
func (r *SubscriptionRepository) Cancel(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE user_subscriptions
		SET status = 'cancelled', cancelled_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status IN ('active', 'paused')
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to cancel subscription: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Pause moves an active subscription to paused.
func (r *SubscriptionRepository) Pause(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE user_subscriptions
		SET status = 'paused', paused_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'active'
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to pause subscription: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Resume moves a paused subscription back to active.
func (r *SubscriptionRepository) Resume(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE user_subscriptions
		SET status = 'active', resumed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'paused'
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to resume subscription: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Reactivate revives a cancelled subscription with a fresh billing window and
// a zeroed quota counter. Only cancelled rows match.
func (r *SubscriptionRepository) Reactivate(ctx context.Context, id string, endDate time.Time) (bool, error) {
	// endDate is computed by the service from the plan billing cycle.
	query := `
		UPDATE user_subscriptions
		SET status = 'active', cancelled_at = NULL, resumed_at = NOW(),
			start_date = NOW(), end_date = $2,
			quota_used = 0, last_quota_reset = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'cancelled'
	`
	tag, err := r.db.Exec(ctx, query, id, endDate)
	if err != nil {
		return false, fmt.Errorf("failed to reactivate subscription: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// UpdatePlan swaps the plan on an active subscription without prorating
// usage already consumed under the old plan.
func (r *SubscriptionRepository) UpdatePlan(ctx context.Context, id, planID string, monthlyQuota int) (bool, error) {
	query := `
		UPDATE user_subscriptions
		SET plan_id = $2, monthly_quota = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'active'
	`
	tag, err := r.db.Exec(ctx, query, id, planID, monthlyQuota)
	if err != nil {
		return false, fmt.Errorf("failed to update subscription plan: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
