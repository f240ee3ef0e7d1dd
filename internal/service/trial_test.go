package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fitlens/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTrialStore mirrors the conditional-update semantics of the pgx
// implementation: create-and-clamp on EnsureAndGet, increment-only-below
// on ConsumeIfBelow.
type fakeTrialStore struct {
	mu   sync.Mutex
	rows map[string]*domain.UserTrial
	err  error
}

func newFakeTrialStore() *fakeTrialStore {
	return &fakeTrialStore{rows: make(map[string]*domain.UserTrial)}
}

func (f *fakeTrialStore) EnsureAndGet(ctx context.Context, userID string, limit int) (*domain.UserTrial, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	row, ok := f.rows[userID]
	if !ok {
		row = &domain.UserTrial{UserID: userID, TrialStartedAt: time.Now()}
		f.rows[userID] = row
	}
	if row.AnalysesUsed > limit {
		row.AnalysesUsed = limit
	}
	cp := *row
	return &cp, nil
}

func (f *fakeTrialStore) ConsumeIfBelow(ctx context.Context, userID string, limit int) (*domain.UserTrial, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, false, f.err
	}
	row, ok := f.rows[userID]
	if !ok || row.AnalysesUsed >= limit {
		return nil, false, nil
	}
	row.AnalysesUsed++
	cp := *row
	return &cp, true, nil
}

func TestTrialCheckFreshUser(t *testing.T) {
	svc := NewTrialService(newFakeTrialStore())

	status, err := svc.Check(context.Background(), "user-1")
	require.NoError(t, err)

	assert.True(t, status.IsOnFreeTrial)
	assert.Equal(t, 0, status.AnalysesUsed)
	assert.Equal(t, 2, status.AnalysesLimit)
	assert.Equal(t, 2, status.AnalysesRemaining)
	assert.False(t, status.TrialEnded)
	assert.False(t, status.TrialStartedAt.IsZero())
}

func TestTrialCheckRepairsDrift(t *testing.T) {
	store := newFakeTrialStore()
	store.rows["user-1"] = &domain.UserTrial{UserID: "user-1", AnalysesUsed: 7, TrialStartedAt: time.Now()}
	svc := NewTrialService(store)

	status, err := svc.Check(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 2, status.AnalysesUsed)
	assert.Equal(t, 0, status.AnalysesRemaining)
	assert.False(t, status.IsOnFreeTrial)
	// stored value corrected down, not just the response
	assert.Equal(t, 2, store.rows["user-1"].AnalysesUsed)
}

func TestTrialConsumeSequence(t *testing.T) {
	store := newFakeTrialStore()
	svc := NewTrialService(store)
	ctx := context.Background()

	first, err := svc.Consume(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, first.AnalysesUsed)
	assert.Equal(t, 1, first.AnalysesRemaining)

	second, err := svc.Consume(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, second.AnalysesUsed)
	assert.Equal(t, 0, second.AnalysesRemaining)
	assert.False(t, second.TrialEnded)

	third, err := svc.Consume(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, third.TrialEnded)
	assert.Equal(t, 2, third.AnalysesUsed)
	assert.Equal(t, 0, third.AnalysesRemaining)

	// no silent increment past the limit
	assert.Equal(t, 2, store.rows["user-1"].AnalysesUsed)
}

func TestTrialConsumeConcurrent(t *testing.T) {
	store := newFakeTrialStore()
	svc := NewTrialService(store)

	const workers = 10
	var wg sync.WaitGroup
	successes := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, err := svc.Consume(context.Background(), "user-1")
			if err == nil && !status.TrialEnded {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	count := 0
	for range successes {
		count++
	}
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, store.rows["user-1"].AnalysesUsed)
}

func TestTrialStorageErrorPropagates(t *testing.T) {
	store := newFakeTrialStore()
	store.err = errors.New("connection reset")
	svc := NewTrialService(store)

	_, err := svc.Check(context.Background(), "user-1")
	require.Error(t, err)

	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 500, appErr.Code)
}
