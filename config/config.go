package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Environment string
	AppURL      string

	// Redis configuration
	RedisURL string

	// Payment gateway configuration
	GatewayProvider   string
	GatewayBaseURL    string
	GatewayMerchantID string
	GatewayClientID   string
	GatewayClientKey  string
	GatewayHMACKey    string
	WebhookSecret     string

	// Checkout configuration
	Currency              string
	CheckoutExpiryMinutes int

	// PubNub configuration (app-side notifications)
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubUserID       string

	// PubNub configuration (gateway settlement push)
	GatewayPNSubscribeKey string
	GatewayPNUserID       string
	GatewayPNChannel      string

	// Hold sweeper configuration
	HoldSweepInterval time.Duration
	HoldSweepAge      time.Duration

	// Rate limiting
	CheckoutRateLimit int64

	// Monitoring
	EnableMetrics bool
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Environment: getEnv("ENVIRONMENT", "development"),
		AppURL:      getEnv("APP_URL", "http://localhost:8090"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "localhost:6379"),

		// Payment gateway
		GatewayProvider:   getEnv("GATEWAY_PROVIDER", "sandbox"),
		GatewayBaseURL:    getEnv("GATEWAY_BASE_URL", ""),
		GatewayMerchantID: getEnv("GATEWAY_MERCHANT_ID", ""),
		GatewayClientID:   getEnv("GATEWAY_CLIENT_ID", ""),
		GatewayClientKey:  getEnv("GATEWAY_CLIENT_KEY", ""),
		GatewayHMACKey:    getEnv("GATEWAY_HMAC_KEY", ""),
		WebhookSecret:     getEnv("WEBHOOK_SECRET", "dev-webhook-secret"),

		// Checkout
		Currency:              getEnv("CURRENCY", "INR"),
		CheckoutExpiryMinutes: getEnvAsInt("CHECKOUT_EXPIRY_MINUTES", 15),

		// PubNub (app-side)
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubUserID:       getEnv("PUBNUB_USER_ID", "turf-booking"),

		// PubNub (gateway settlement push)
		GatewayPNSubscribeKey: getEnv("GATEWAY_PN_SUBSCRIBE_KEY", ""),
		GatewayPNUserID:       getEnv("GATEWAY_PN_USER_ID", "turf-booking-gw"),
		GatewayPNChannel:      getEnv("GATEWAY_PN_CHANNEL", "settlement-notifications"),

		// Hold sweeper
		HoldSweepInterval: getEnvAsDuration("HOLD_SWEEP_INTERVAL", "1m"),
		HoldSweepAge:      getEnvAsDuration("HOLD_SWEEP_AGE", "30m"),

		// Rate limiting
		CheckoutRateLimit: int64(getEnvAsInt("CHECKOUT_RATE_LIMIT", 10)),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
