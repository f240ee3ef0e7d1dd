package repository

import (
	"context"
	"fmt"

	"github.com/fitlens/backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlanRepository handles database operations for the plan catalog.
type PlanRepository struct {
	db *pgxpool.Pool
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(db *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{db: db}
}

// Seed inserts the default catalog, leaving existing rows untouched so admin
// price edits survive restarts.
func (r *PlanRepository) Seed(ctx context.Context, plans []domain.SubscriptionPlan) error {
	query := `
		INSERT INTO subscription_plans (id, name, price_cents, currency, monthly_quota, features)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	for _, p := range plans {
		if _, err := r.db.Exec(ctx, query, p.ID, p.Name, p.PriceCents, p.Currency, p.MonthlyQuota, p.Features); err != nil {
			return fmt.Errorf("failed to seed plan %s: %w", p.ID, err)
		}
	}
	return nil
}

func scanPlan(row pgx.Row) (*domain.SubscriptionPlan, error) {
	var p domain.SubscriptionPlan
	err := row.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Currency, &p.MonthlyQuota, &p.Features, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const planColumns = `id, name, price_cents, currency, monthly_quota, features, created_at, updated_at`

// FindByID returns a plan by ID, or nil when absent.
func (r *PlanRepository) FindByID(ctx context.Context, id string) (*domain.SubscriptionPlan, error) {
	p, err := scanPlan(r.db.QueryRow(ctx, `SELECT `+planColumns+` FROM subscription_plans WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find plan: %w", err)
	}
	return p, nil
}

// FindByName returns a plan by its unique name, or nil when absent. Callers
// resolve aliases before looking up.
func (r *PlanRepository) FindByName(ctx context.Context, name string) (*domain.SubscriptionPlan, error) {
	p, err := scanPlan(r.db.QueryRow(ctx, `SELECT `+planColumns+` FROM subscription_plans WHERE name = $1`, name))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find plan by name: %w", err)
	}
	return p, nil
}

// List returns the full catalog ordered by price.
func (r *PlanRepository) List(ctx context.Context) ([]*domain.SubscriptionPlan, error) {
	rows, err := r.db.Query(ctx, `SELECT `+planColumns+` FROM subscription_plans ORDER BY price_cents ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []*domain.SubscriptionPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// Update applies an administrative plan mutation. Nil fields keep their
// current value.
func (r *PlanRepository) Update(ctx context.Context, id string, req *domain.UpdatePlanRequest) (*domain.SubscriptionPlan, error) {
	query := `
		UPDATE subscription_plans
		SET price_cents   = COALESCE($2, price_cents),
			currency      = COALESCE($3, currency),
			monthly_quota = COALESCE($4, monthly_quota),
			features      = COALESCE($5, features),
			updated_at    = NOW()
		WHERE id = $1
		RETURNING ` + planColumns + `
	`
	var features interface{}
	if req.Features != nil {
		features = req.Features
	}
	p, err := scanPlan(r.db.QueryRow(ctx, query, id, req.PriceCents, req.Currency, req.MonthlyQuota, features))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}
	return p, nil
}
