package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	TenantURL    string // Required: identity tenant base URL
	ClientID     string // Required: OAuth client id on the tenant
	ClientSecret string // Required: OAuth client secret on the tenant

	IdentitySourceID string // Optional: identity source for password logins
	RelyingPartyID   string // Optional: FIDO2 relying party id
	QRProfileID      string // Optional: QR login registration profile id

	DatabaseFile        string        // Optional: path to SQLite database file (default: ./demo.db)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		TenantURL:    os.Getenv("TENANT_URL"),
		ClientID:     os.Getenv("CLIENT_ID"),
		ClientSecret: os.Getenv("CLIENT_SECRET"),

		IdentitySourceID: os.Getenv("IDENTITY_SOURCE_ID"),
		RelyingPartyID:   os.Getenv("RELYING_PARTY_ID"),
		QRProfileID:      os.Getenv("QR_PROFILE_ID"),

		DatabaseFile:        getEnvOrDefault("DEMO_DB_FILE", "demo.db"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
