// Package geo looks up a client's country for currency display. Lookups are
// best-effort: any upstream failure yields the fallback defaults, never an
// error.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Location is the currency-display information derived from an IP lookup.
type Location struct {
	CountryCode    string  `json:"countryCode"`
	IsIndia        bool    `json:"isIndia"`
	Currency       string  `json:"currency"`
	CurrencySymbol string  `json:"currencySymbol"`
	ConversionRate float64 `json:"conversionRate"`
}

// Fallback is returned whenever the upstream lookup fails.
func Fallback() Location {
	return Location{
		CountryCode:    "US",
		IsIndia:        false,
		Currency:       "USD",
		CurrencySymbol: "$",
		ConversionRate: 1.0,
	}
}

// Client queries an IP geolocation service.
type Client struct {
	baseURL string
	http    *http.Client

	// ConversionRate applied for INR display pricing. Display-only; the
	// gateway charges in the plan currency.
	inrRate float64
}

// NewClient creates a geolocation client. baseURL has no trailing slash.
func NewClient(baseURL string, inrRate float64) *Client {
	if inrRate <= 0 {
		inrRate = 83.0
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
		inrRate: inrRate,
	}
}

// Lookup resolves an IP to currency-display information. It never returns an
// error: failures degrade to Fallback().
func (c *Client) Lookup(ctx context.Context, ip string) Location {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/json", c.baseURL, ip), nil)
	if err != nil {
		return Fallback()
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Fallback()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Fallback()
	}

	var payload struct {
		CountryCode string `json:"country_code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.CountryCode == "" {
		return Fallback()
	}

	loc := Location{
		CountryCode:    payload.CountryCode,
		Currency:       "USD",
		CurrencySymbol: "$",
		ConversionRate: 1.0,
	}
	if payload.CountryCode == "IN" {
		loc.IsIndia = true
		loc.Currency = "INR"
		loc.CurrencySymbol = "₹"
		loc.ConversionRate = c.inrRate
	}
	return loc
}
