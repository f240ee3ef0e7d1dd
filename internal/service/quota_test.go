package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fitlens/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSubStore mirrors the single-statement check-and-consume (with folded
// rollover) of the pgx implementation, guarded by a mutex so concurrent
// consumes serialize the way the database would.
type fakeSubStore struct {
	mu   sync.Mutex
	subs map[string]*domain.UserSubscription
}

func newFakeSubStore(subs ...*domain.UserSubscription) *fakeSubStore {
	f := &fakeSubStore{subs: make(map[string]*domain.UserSubscription)}
	for _, s := range subs {
		f.subs[s.ID] = s
	}
	return f
}

func (f *fakeSubStore) FindActiveByUserID(ctx context.Context, userID string) (*domain.UserSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subs {
		if s.UserID == userID && s.Status == domain.SubscriptionActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeSubStore) FindByID(ctx context.Context, id string) (*domain.UserSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.subs[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeSubStore) ConsumeQuota(ctx context.Context, id string) (*domain.UserSubscription, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subs[id]
	if !ok || s.Status != domain.SubscriptionActive {
		return nil, false, nil
	}
	now := time.Now()
	rolled := !s.LastQuotaReset.Add(domain.BillingPeriod).After(now)
	if !rolled && s.QuotaUsed >= s.MonthlyQuota {
		return nil, false, nil
	}
	if rolled {
		s.QuotaUsed = 1
		s.LastQuotaReset = now
	} else {
		s.QuotaUsed++
	}
	s.UpdatedAt = now
	cp := *s
	return &cp, true, nil
}

func activeSub(userID string, used, quota int) *domain.UserSubscription {
	now := time.Now()
	return &domain.UserSubscription{
		ID:             "sub-" + userID,
		UserID:         userID,
		PlanID:         "pro",
		Status:         domain.SubscriptionActive,
		StartDate:      now,
		EndDate:        now.Add(domain.BillingPeriod),
		QuotaUsed:      used,
		MonthlyQuota:   quota,
		LastQuotaReset: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestQuotaConsumeSuccess(t *testing.T) {
	store := newFakeSubStore(activeSub("user-1", 0, 100))
	svc := NewQuotaService(store)

	status, err := svc.CheckAndConsume(context.Background(), "user-1")
	require.NoError(t, err)

	assert.True(t, status.Success)
	assert.Equal(t, 1, status.QuotaUsed)
	assert.Equal(t, 100, status.QuotaLimit)
	assert.Equal(t, 99, status.QuotaRemaining)
	assert.False(t, status.RequiresUpgrade)
	assert.False(t, status.ResetDate.IsZero())
}

func TestQuotaNoSubscription(t *testing.T) {
	svc := NewQuotaService(newFakeSubStore())

	_, err := svc.CheckAndConsume(context.Background(), "user-1")
	require.Error(t, err)

	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.Code)
}

func TestQuotaExhausted(t *testing.T) {
	store := newFakeSubStore(activeSub("user-1", 100, 100))
	svc := NewQuotaService(store)

	status, err := svc.CheckAndConsume(context.Background(), "user-1")
	require.NoError(t, err)

	assert.False(t, status.Success)
	assert.True(t, status.RequiresUpgrade)
	assert.Equal(t, 100, status.QuotaUsed)
	assert.Equal(t, 0, status.QuotaRemaining)
	// exhaustion must not mutate
	assert.Equal(t, 100, store.subs["sub-user-1"].QuotaUsed)
}

func TestQuotaRollover(t *testing.T) {
	sub := activeSub("user-1", 100, 100)
	sub.LastQuotaReset = time.Now().Add(-31 * 24 * time.Hour)
	store := newFakeSubStore(sub)
	svc := NewQuotaService(store)

	status, err := svc.CheckAndConsume(context.Background(), "user-1")
	require.NoError(t, err)

	assert.True(t, status.Success)
	assert.Equal(t, 1, status.QuotaUsed)
	assert.Equal(t, 99, status.QuotaRemaining)
	// anchor advanced
	assert.WithinDuration(t, time.Now().Add(domain.BillingPeriod), status.ResetDate, time.Minute)
}

func TestQuotaConcurrentNoOvershoot(t *testing.T) {
	// remaining quota 3, 4 concurrent requests: exactly 3 succeed
	store := newFakeSubStore(activeSub("user-1", 2, 5))
	svc := NewQuotaService(store)

	const workers = 4
	var wg sync.WaitGroup
	results := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, err := svc.CheckAndConsume(context.Background(), "user-1")
			if err != nil {
				results <- false
				return
			}
			results <- status.Success
		}()
	}
	wg.Wait()
	close(results)

	successes, rejections := 0, 0
	for ok := range results {
		if ok {
			successes++
		} else {
			rejections++
		}
	}
	assert.Equal(t, 3, successes)
	assert.Equal(t, 1, rejections)
	assert.Equal(t, 5, store.subs["sub-user-1"].QuotaUsed)
}
