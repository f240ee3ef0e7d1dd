package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewDB creates a new PostgreSQL connection pool.
func NewDB(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// RunMigrations executes the initial schema migration. The unique index on
// gateway_payment_id is load-bearing: it is the idempotency guard for
// payment confirmations, not just an optimization.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		CREATE TABLE IF NOT EXISTS users (
			id           TEXT PRIMARY KEY,
			email        TEXT NOT NULL DEFAULT '',
			display_name TEXT NOT NULL DEFAULT '',
			country_code TEXT NOT NULL DEFAULT '',
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS subscription_plans (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL UNIQUE,
			price_cents   BIGINT NOT NULL,
			currency      TEXT NOT NULL DEFAULT 'USD',
			monthly_quota INT NOT NULL,
			features      TEXT[] NOT NULL DEFAULT '{}',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS user_subscriptions (
			id               TEXT PRIMARY KEY,
			user_id          TEXT NOT NULL,
			plan_id          TEXT NOT NULL,
			status           TEXT NOT NULL DEFAULT 'active',
			start_date       TIMESTAMPTZ NOT NULL,
			end_date         TIMESTAMPTZ NOT NULL,
			quota_used       INT NOT NULL DEFAULT 0,
			monthly_quota    INT NOT NULL,
			last_quota_reset TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			paused_at        TIMESTAMPTZ,
			resumed_at       TIMESTAMPTZ,
			cancelled_at     TIMESTAMPTZ,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_user_subscriptions_user_status
			ON user_subscriptions(user_id, status);

		CREATE TABLE IF NOT EXISTS user_trials (
			user_id          TEXT PRIMARY KEY,
			analyses_used    INT NOT NULL DEFAULT 0,
			trial_started_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS subscription_transactions (
			id                 TEXT PRIMARY KEY,
			user_id            TEXT NOT NULL,
			plan_id            TEXT NOT NULL,
			gateway_payment_id TEXT NOT NULL,
			gateway_order_id   TEXT NOT NULL DEFAULT '',
			amount_cents       BIGINT NOT NULL,
			currency           TEXT NOT NULL DEFAULT 'USD',
			status             TEXT NOT NULL,
			payment_date       TIMESTAMPTZ NOT NULL,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_gateway_payment_id
			ON subscription_transactions(gateway_payment_id);
	`
	_, err := pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
