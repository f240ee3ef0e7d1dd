package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePlanName(t *testing.T) {
	assert.Equal(t, "Pro", ResolvePlanName("Enterprise"))
	assert.Equal(t, "Ultimate", ResolvePlanName("Business"))
	assert.Equal(t, "Pro", ResolvePlanName("Pro"))
	assert.Equal(t, "Basic", ResolvePlanName("Basic"))
	assert.Equal(t, "Unknown", ResolvePlanName("Unknown"))
}

func TestDefaultPlansHaveQuotas(t *testing.T) {
	for _, p := range DefaultPlans() {
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.Name)
		assert.Greater(t, p.MonthlyQuota, 0, "plan %s", p.ID)
		assert.Greater(t, p.PriceCents, int64(0), "plan %s", p.ID)
	}
}
