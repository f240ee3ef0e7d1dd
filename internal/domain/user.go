package domain

import "time"

// User is a cached profile for an identity-provider subject. The ID is the
// opaque stable string issued by the provider; no credentials are stored.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CountryCode string    `json:"countryCode,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
