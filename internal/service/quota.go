package service

import (
	"context"

	"github.com/fitlens/backend/internal/domain"
)

// QuotaStore is the persistence surface the paid-plan quota ledger needs.
type QuotaStore interface {
	FindActiveByUserID(ctx context.Context, userID string) (*domain.UserSubscription, error)
	FindByID(ctx context.Context, id string) (*domain.UserSubscription, error)
	// ConsumeQuota is the single-statement check-and-increment with the
	// 30-day rollover folded in. ok=false means exhausted, no mutation.
	ConsumeQuota(ctx context.Context, subscriptionID string) (*domain.UserSubscription, bool, error)
}

// QuotaService is the paid-plan quota ledger: per-user consumption against
// the monthly allowance of the active subscription.
type QuotaService struct {
	subs QuotaStore
}

// NewQuotaService creates a new QuotaService.
func NewQuotaService(subs QuotaStore) *QuotaService {
	return &QuotaService{subs: subs}
}

// CheckAndConsume resolves the user's active subscription and spends one
// analysis against it. Exhaustion is not an error: the returned status has
// Success=false and RequiresUpgrade=true and the caller maps it to a 403.
// Concurrent calls cannot overshoot the limit because the store performs the
// check and the increment in one conditional statement.
func (s *QuotaService) CheckAndConsume(ctx context.Context, userID string) (*domain.QuotaStatus, error) {
	sub, err := s.subs.FindActiveByUserID(ctx, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to resolve subscription", err)
	}
	if sub == nil {
		return nil, domain.ErrNotFound("no active subscription")
	}

	updated, ok, err := s.subs.ConsumeQuota(ctx, sub.ID)
	if err != nil {
		return nil, domain.ErrInternal("failed to consume quota", err)
	}
	if !ok {
		// Re-read for the 403 payload; the counters are informational
		// only, the rejection itself already happened atomically.
		current, err := s.subs.FindByID(ctx, sub.ID)
		if err != nil || current == nil {
			current = sub
		}
		status := quotaStatus(current)
		status.Success = false
		status.RequiresUpgrade = true
		return status, nil
	}

	status := quotaStatus(updated)
	status.Success = true
	return status, nil
}

func quotaStatus(sub *domain.UserSubscription) *domain.QuotaStatus {
	remaining := sub.MonthlyQuota - sub.QuotaUsed
	if remaining < 0 {
		remaining = 0
	}
	return &domain.QuotaStatus{
		QuotaUsed:      sub.QuotaUsed,
		QuotaLimit:     sub.MonthlyQuota,
		QuotaRemaining: remaining,
		ResetDate:      sub.ResetDate(),
	}
}
