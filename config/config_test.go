package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Load() port = %v, want 8080", cfg.Port)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Errorf("Load() origins = %v, want [*]", cfg.CORSAllowedOrigins)
	}
	if cfg.AccessTokenExpiry != 15*time.Minute {
		t.Errorf("Load() access expiry = %v, want 15m", cfg.AccessTokenExpiry)
	}
	if cfg.APIKeyDisplayPrefix != "tsy_" {
		t.Errorf("Load() display prefix = %v, want tsy_", cfg.APIKeyDisplayPrefix)
	}
	if cfg.APIKeyPrefixBodyChars != 4 {
		t.Errorf("Load() prefix body chars = %d, want 4", cfg.APIKeyPrefixBodyChars)
	}
	if cfg.APIKeySecretLength != 48 {
		t.Errorf("Load() secret length = %d, want 48", cfg.APIKeySecretLength)
	}
	if cfg.NotificationTimeout != 5*time.Second {
		t.Errorf("Load() notification timeout = %v, want 5s", cfg.NotificationTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("API_KEY_DISPLAY_PREFIX", "abc_")
	t.Setenv("NOTIFICATION_TIMEOUT_SECONDS", "10")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Load() port = %v, want 9090", cfg.Port)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example.com" {
		t.Errorf("Load() origins = %v, want trimmed pair", cfg.CORSAllowedOrigins)
	}
	if cfg.APIKeyDisplayPrefix != "abc_" {
		t.Errorf("Load() display prefix = %v, want abc_", cfg.APIKeyDisplayPrefix)
	}
	if cfg.NotificationTimeout != 10*time.Second {
		t.Errorf("Load() notification timeout = %v, want 10s", cfg.NotificationTimeout)
	}
}

func TestLoad_DatabaseURLFromParts(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "reviews")

	cfg := Load()

	want := "postgres://postgres:pw@db.internal:5432/reviews?sslmode=disable"
	if cfg.DatabaseURL != want {
		t.Errorf("Load() database url = %v, want %v", cfg.DatabaseURL, want)
	}
}

func TestLoad_DatabaseURLPrecedence(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://explicit")
	t.Setenv("DB_HOST", "ignored")

	cfg := Load()

	if cfg.DatabaseURL != "postgres://explicit" {
		t.Errorf("Load() database url = %v, want explicit value", cfg.DatabaseURL)
	}
}
