package repository

import (
	"context"
	"fmt"

	"github.com/fitlens/backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TrialRepository handles database operations for free-trial records.
type TrialRepository struct {
	db *pgxpool.Pool
}

// NewTrialRepository creates a new TrialRepository.
func NewTrialRepository(db *pgxpool.Pool) *TrialRepository {
	return &TrialRepository{db: db}
}

// EnsureAndGet returns the trial record for a user, creating a zero-usage row
// for unseen users. The upsert also clamps stored usage down to the limit so
// drift from any external bug is repaired before the caller sees it.
func (r *TrialRepository) EnsureAndGet(ctx context.Context, userID string, limit int) (*domain.UserTrial, error) {
	query := `
		INSERT INTO user_trials (user_id, analyses_used, trial_started_at)
		VALUES ($1, 0, NOW())
		ON CONFLICT (user_id) DO UPDATE
			SET analyses_used = LEAST(user_trials.analyses_used, $2)
		RETURNING user_id, analyses_used, trial_started_at
	`
	row := r.db.QueryRow(ctx, query, userID, limit)

	var t domain.UserTrial
	if err := row.Scan(&t.UserID, &t.AnalysesUsed, &t.TrialStartedAt); err != nil {
		return nil, fmt.Errorf("failed to upsert trial record: %w", err)
	}
	return &t, nil
}

// ConsumeIfBelow increments analyses_used by one, but only while the stored
// value is below the limit. The condition lives in the UPDATE itself so two
// concurrent consumes cannot both pass a read-then-write check. Returns
// ok=false (and no mutation) when the allowance is already spent.
func (r *TrialRepository) ConsumeIfBelow(ctx context.Context, userID string, limit int) (*domain.UserTrial, bool, error) {
	query := `
		UPDATE user_trials
		SET analyses_used = analyses_used + 1
		WHERE user_id = $1 AND analyses_used < $2
		RETURNING user_id, analyses_used, trial_started_at
	`
	row := r.db.QueryRow(ctx, query, userID, limit)

	var t domain.UserTrial
	err := row.Scan(&t.UserID, &t.AnalysesUsed, &t.TrialStartedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, false, nil // exhausted (or missing; caller ensures the row first)
		}
		return nil, false, fmt.Errorf("failed to consume trial allowance: %w", err)
	}
	return &t, true, nil
}
