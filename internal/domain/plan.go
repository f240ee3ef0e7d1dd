package domain

import "time"

// SubscriptionPlan is a purchasable plan. Rows live in subscription_plans
// and change only through the admin API.
type SubscriptionPlan struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PriceCents   int64     `json:"priceCents"`
	Currency     string    `json:"currency"`
	MonthlyQuota int       `json:"monthlyQuota"`
	Features     []string  `json:"features"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// planAliases maps legacy plan names sold under a different label onto the
// catalog name they resolve to. Consulted once at subscription-creation time.
var planAliases = map[string]string{
	"Enterprise": "Pro",
	"Business":   "Ultimate",
}

// ResolvePlanName maps an alias to its canonical catalog name. Names without
// an alias pass through unchanged.
func ResolvePlanName(name string) string {
	if canonical, ok := planAliases[name]; ok {
		return canonical
	}
	return name
}

// DefaultPlans returns the catalog seeded on first startup.
func DefaultPlans() []SubscriptionPlan {
	return []SubscriptionPlan{
		{
			ID:           "basic",
			Name:         "Basic",
			PriceCents:   900, // $9/mo
			Currency:     "USD",
			MonthlyQuota: 30,
			Features:     []string{"30 analyses / month", "Form score breakdown"},
		},
		{
			ID:           "pro",
			Name:         "Pro",
			PriceCents:   1900, // $19/mo
			Currency:     "USD",
			MonthlyQuota: 100,
			Features:     []string{"100 analyses / month", "Form score breakdown", "Progress tracking"},
		},
		{
			ID:           "ultimate",
			Name:         "Ultimate",
			PriceCents:   3900, // $39/mo
			Currency:     "USD",
			MonthlyQuota: 500,
			Features:     []string{"500 analyses / month", "Everything in Pro", "Priority processing"},
		},
	}
}

// UpdatePlanRequest is the admin input for mutating pricing data.
type UpdatePlanRequest struct {
	PriceCents   *int64   `json:"priceCents" validate:"omitempty,gte=0"`
	Currency     *string  `json:"currency" validate:"omitempty,len=3"`
	MonthlyQuota *int     `json:"monthlyQuota" validate:"omitempty,gte=0"`
	Features     []string `json:"features"`
}
