package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	CORSAllowedOrigins []string

	DatabaseURL string

	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration

	APIKeySecret string

	APIKeyDisplayPrefix   string
	APIKeyPrefixBodyChars int
	APIKeySecretLength    int

	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	FromEmail  string
	AppBaseURL string

	NotificationWebhookURL string
	NotificationTimeout    time.Duration
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "*"
	}

	origins := strings.Split(corsOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}

	// DATABASE_URL takes precedence; otherwise build from DB_* parts.
	// Empty means run on the in-memory store.
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		if host := os.Getenv("DB_HOST"); host != "" {
			databaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
				envOr("DB_USER", "postgres"),
				os.Getenv("DB_PASSWORD"),
				host,
				envOr("DB_PORT", "5432"),
				envOr("DB_NAME", "testify"),
				envOr("DB_SSLMODE", "disable"),
			)
		}
	}

	smtpPort := envInt("SMTP_PORT", 587)

	notificationTimeout := 5 * time.Second
	if timeout := envInt("NOTIFICATION_TIMEOUT_SECONDS", 0); timeout > 0 {
		notificationTimeout = time.Duration(timeout) * time.Second
	}

	return &Config{
		Port:               port,
		CORSAllowedOrigins: origins,

		DatabaseURL: databaseURL,

		JWTSecret:          os.Getenv("JWT_SECRET"),
		AccessTokenExpiry:  time.Duration(envInt("ACCESS_TOKEN_EXPIRY_SECONDS", 900)) * time.Second,
		RefreshTokenExpiry: time.Duration(envInt("REFRESH_TOKEN_EXPIRY_HOURS", 24*7)) * time.Hour,

		APIKeySecret: os.Getenv("API_KEY_SECRET"),

		APIKeyDisplayPrefix:   envOr("API_KEY_DISPLAY_PREFIX", "tsy_"),
		APIKeyPrefixBodyChars: envInt("API_KEY_PREFIX_BODY_CHARS", 4),
		APIKeySecretLength:    envInt("API_KEY_SECRET_LENGTH", 48),

		SMTPHost:   os.Getenv("SMTP_HOST"),
		SMTPPort:   smtpPort,
		SMTPUser:   os.Getenv("SMTP_USER"),
		SMTPPass:   os.Getenv("SMTP_PASS"),
		FromEmail:  os.Getenv("FROM_EMAIL"),
		AppBaseURL: envOr("APP_BASE_URL", "http://localhost:"+port),

		NotificationWebhookURL: os.Getenv("NOTIFICATION_WEBHOOK_URL"),
		NotificationTimeout:    notificationTimeout,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
