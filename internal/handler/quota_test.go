package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/fitlens/backend/internal/domain"
	"github.com/fitlens/backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memQuotaStore struct {
	mu  sync.Mutex
	sub *domain.UserSubscription
}

func (f *memQuotaStore) FindActiveByUserID(ctx context.Context, userID string) (*domain.UserSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sub != nil && f.sub.UserID == userID && f.sub.Status == domain.SubscriptionActive {
		cp := *f.sub
		return &cp, nil
	}
	return nil, nil
}

func (f *memQuotaStore) FindByID(ctx context.Context, id string) (*domain.UserSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sub != nil && f.sub.ID == id {
		cp := *f.sub
		return &cp, nil
	}
	return nil, nil
}

func (f *memQuotaStore) ConsumeQuota(ctx context.Context, id string) (*domain.UserSubscription, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sub == nil || f.sub.ID != id || f.sub.QuotaUsed >= f.sub.MonthlyQuota {
		return nil, false, nil
	}
	f.sub.QuotaUsed++
	cp := *f.sub
	return &cp, true, nil
}

func quotaSub(used, limit int) *domain.UserSubscription {
	now := time.Now()
	return &domain.UserSubscription{
		ID:             "sub-1",
		UserID:         "user-1",
		PlanID:         "pro",
		Status:         domain.SubscriptionActive,
		QuotaUsed:      used,
		MonthlyQuota:   limit,
		LastQuotaReset: now,
		StartDate:      now,
		EndDate:        now.AddDate(0, 1, 0),
	}
}

func TestQuotaHandlerSuccess(t *testing.T) {
	h := NewQuotaHandler(service.NewQuotaService(&memQuotaStore{sub: quotaSub(10, 100)}))

	rec := postJSON(t, h.CheckAndConsume, map[string]string{"userId": "user-1"}, "user-1")
	require.Equal(t, http.StatusOK, rec.Code)

	var status domain.QuotaStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Success)
	assert.Equal(t, 11, status.QuotaUsed)
	assert.Equal(t, 89, status.QuotaRemaining)
}

func TestQuotaHandlerExhaustedReturns403(t *testing.T) {
	h := NewQuotaHandler(service.NewQuotaService(&memQuotaStore{sub: quotaSub(100, 100)}))

	rec := postJSON(t, h.CheckAndConsume, map[string]string{"userId": "user-1"}, "user-1")
	require.Equal(t, http.StatusForbidden, rec.Code)

	var status domain.QuotaStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.False(t, status.Success)
	assert.True(t, status.RequiresUpgrade)
	assert.Equal(t, 0, status.QuotaRemaining)
}

func TestQuotaHandlerNoSubscription(t *testing.T) {
	h := NewQuotaHandler(service.NewQuotaService(&memQuotaStore{}))

	rec := postJSON(t, h.CheckAndConsume, map[string]string{"userId": "user-1"}, "user-1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
