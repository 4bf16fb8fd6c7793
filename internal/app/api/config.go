package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.temporal.io/sdk/client"
)

// Default projected inflation applied when the caller supplies no rate and
// the store has insufficient history.
const defaultProjectedInflationPercent = 12.0

// Config carries environment-driven settings for the API process.
type Config struct {
	Port                      string
	PostgresDSN               string
	WebhookSecret             string
	BasePublicURL             string
	DefaultCountry            string
	DefaultProjectedInflation float64
	TemporalAddress           string
	TemporalNamespace         string
	TemporalDisabled          bool
}

// LoadConfig reads environment variables, applies defaults, and validates
// basic constraints. A missing PAYMENT_WEBHOOK_SECRET is tolerated here and
// rejected per webhook delivery, so read-only deployments still boot.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:                      envDefault("PORT", "8080"),
		PostgresDSN:               strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		WebhookSecret:             strings.TrimSpace(os.Getenv("PAYMENT_WEBHOOK_SECRET")),
		BasePublicURL:             envDefault("BASE_PUBLIC_URL", "http://localhost:8080"),
		DefaultCountry:            envDefault("DEFAULT_COUNTRY", "NG"),
		DefaultProjectedInflation: defaultProjectedInflationPercent,
		TemporalAddress:           envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:         envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:          isTruthy(os.Getenv("TEMPORAL_DISABLED")),
	}
	if raw := strings.TrimSpace(os.Getenv("DEFAULT_PROJECTED_INFLATION")); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Config{}, fmt.Errorf("DEFAULT_PROJECTED_INFLATION must be a number")
		}
		cfg.DefaultProjectedInflation = rate
	}
	return cfg, nil
}

// AccessExplanationURL is the page unentitled visitors are pointed at.
func (c Config) AccessExplanationURL() string {
	return strings.TrimRight(c.BasePublicURL, "/") + "/access"
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
