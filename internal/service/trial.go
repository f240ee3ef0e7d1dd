package service

import (
	"context"

	"github.com/fitlens/backend/internal/domain"
)

// TrialStore is the persistence surface the trial ledger needs. Both
// operations are single atomic statements in the pgx implementation.
type TrialStore interface {
	// EnsureAndGet returns the trial row, creating a zero-usage row for
	// unseen users and clamping stored usage down to limit.
	EnsureAndGet(ctx context.Context, userID string, limit int) (*domain.UserTrial, error)
	// ConsumeIfBelow increments usage only while it is below limit.
	// ok=false means the allowance was already spent and nothing changed.
	ConsumeIfBelow(ctx context.Context, userID string, limit int) (*domain.UserTrial, bool, error)
}

// TrialService is the free-trial ledger: a fixed lifetime allowance for
// users without a paid plan.
type TrialService struct {
	store TrialStore
}

// NewTrialService creates a new TrialService.
func NewTrialService(store TrialStore) *TrialService {
	return &TrialService{store: store}
}

// Check returns the user's trial status, lazily creating the record. A
// transient storage error propagates; it is never conflated with "new user"
// because the upsert distinguishes the two at the statement level.
func (s *TrialService) Check(ctx context.Context, userID string) (*domain.TrialStatus, error) {
	trial, err := s.store.EnsureAndGet(ctx, userID, domain.TrialAnalysisLimit)
	if err != nil {
		return nil, domain.ErrInternal("failed to load trial status", err)
	}
	return trialStatus(trial), nil
}

// Consume spends one trial analysis. When the allowance is already spent it
// returns the capped state with TrialEnded set and does not mutate storage;
// the caller maps that to a 403, not an error.
func (s *TrialService) Consume(ctx context.Context, userID string) (*domain.TrialStatus, error) {
	// Ensure the row exists (and is clamped) so the conditional update
	// below can only fail for one reason: the allowance is spent.
	trial, err := s.store.EnsureAndGet(ctx, userID, domain.TrialAnalysisLimit)
	if err != nil {
		return nil, domain.ErrInternal("failed to load trial status", err)
	}

	updated, ok, err := s.store.ConsumeIfBelow(ctx, userID, domain.TrialAnalysisLimit)
	if err != nil {
		return nil, domain.ErrInternal("failed to consume trial allowance", err)
	}
	if !ok {
		// Lost the allowance between the ensure and the consume (or it was
		// already spent); report the current capped state.
		if current, err := s.store.EnsureAndGet(ctx, userID, domain.TrialAnalysisLimit); err == nil {
			trial = current
		}
		status := trialStatus(trial)
		status.TrialEnded = true
		return status, nil
	}
	return trialStatus(updated), nil
}

func trialStatus(t *domain.UserTrial) *domain.TrialStatus {
	used := t.AnalysesUsed
	if used > domain.TrialAnalysisLimit {
		used = domain.TrialAnalysisLimit
	}
	return &domain.TrialStatus{
		IsOnFreeTrial:     used < domain.TrialAnalysisLimit,
		AnalysesUsed:      used,
		AnalysesLimit:     domain.TrialAnalysisLimit,
		AnalysesRemaining: domain.TrialAnalysisLimit - used,
		TrialStartedAt:    t.TrialStartedAt,
	}
}
