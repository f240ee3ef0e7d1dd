package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port        int
	DatabaseURL string
	JWTSecret   string
	AdminKey    string
	CORSOrigins []string

	// Payment gateway. When GatewayKeyID is empty the mock gateway is used
	// (local development only); GatewaySecret still signs confirmations.
	GatewayBaseURL string
	GatewayKeyID   string
	GatewaySecret  string

	// Geolocation (currency display only).
	GeoBaseURL string
	GeoINRRate float64
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	port, _ := strconv.Atoi(getEnv("PORT", "4001"))

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	gatewaySecret := getEnv("GATEWAY_SECRET", "")
	if gatewaySecret == "" {
		return nil, fmt.Errorf("GATEWAY_SECRET is required (signs payment confirmations)")
	}

	origins := strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,https://fitlens.app"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	inrRate, err := strconv.ParseFloat(getEnv("GEO_INR_RATE", "83.0"), 64)
	if err != nil {
		return nil, fmt.Errorf("GEO_INR_RATE must be a number: %w", err)
	}

	return &Config{
		Port:           port,
		DatabaseURL:    dbURL,
		JWTSecret:      jwtSecret,
		AdminKey:       getEnv("ADMIN_KEY", ""),
		CORSOrigins:    origins,
		GatewayBaseURL: getEnv("GATEWAY_BASE_URL", "https://api.razorpay.com/v1"),
		GatewayKeyID:   getEnv("GATEWAY_KEY_ID", ""),
		GatewaySecret:  gatewaySecret,
		GeoBaseURL:     getEnv("GEO_BASE_URL", "https://ipapi.co"),
		GeoINRRate:     inrRate,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
