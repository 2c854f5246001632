package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port               string
	Environment        string
	Layout             string
	HourlyRate         int
	PricingMode        string
	AssignmentStrategy string
	TicketHistorySize  int
	OTelConfig         OTelConfig
}

type OTelConfig struct {
	ServiceName  string
	OTLPEndpoint string
}

func Load() *Config {
	return &Config{
		Port:               envOr("APP_PORT", "8080"),
		Environment:        envOr("ENVIRONMENT", "development"),
		Layout:             envOr("PARKING_LAYOUT", "SML"),
		HourlyRate:         envOrInt("HOURLY_RATE", 20),
		PricingMode:        envOr("PRICING_MODE", "started-hour"),
		AssignmentStrategy: envOr("ASSIGNMENT_STRATEGY", "first-fit"),
		TicketHistorySize:  envOrInt("TICKET_HISTORY_SIZE", 1024),
		OTelConfig: OTelConfig{
			ServiceName:  envOr("OTEL_SERVICE_NAME", "parking-lot-service"),
			OTLPEndpoint: envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		},
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// envOrInt ignores values that are not positive integers.
func envOrInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}
