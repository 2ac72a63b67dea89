package config

import (
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("POSTGRES_HOST", "testhost")
	t.Setenv("CACHE_QUOTE_TTL", "30s")
	t.Setenv("OPERATIONS_BLOCK_SHORT_SELLING", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %v, want %v", cfg.Server.Port, "9090")
	}

	if cfg.Database.Postgres.Host != "testhost" {
		t.Errorf("Database.Postgres.Host = %v, want %v", cfg.Database.Postgres.Host, "testhost")
	}

	if cfg.Cache.QuoteTTL != 30*time.Second {
		t.Errorf("Cache.QuoteTTL = %v, want %v", cfg.Cache.QuoteTTL, 30*time.Second)
	}

	if !cfg.Operations.BlockShortSelling {
		t.Error("Operations.BlockShortSelling = false, want true")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != "3001" {
		t.Errorf("Server.Port = %v, want %v", cfg.Server.Port, "3001")
	}

	if cfg.Auth.TokenTTL != 8*time.Hour {
		t.Errorf("Auth.TokenTTL = %v, want %v", cfg.Auth.TokenTTL, 8*time.Hour)
	}

	if cfg.Auth.ResetTokenTTL != time.Hour {
		t.Errorf("Auth.ResetTokenTTL = %v, want %v", cfg.Auth.ResetTokenTTL, time.Hour)
	}

	if cfg.Cache.QuoteTTL != 5*time.Minute {
		t.Errorf("Cache.QuoteTTL = %v, want %v", cfg.Cache.QuoteTTL, 5*time.Minute)
	}

	if cfg.Cache.ChartTTL != time.Hour {
		t.Errorf("Cache.ChartTTL = %v, want %v", cfg.Cache.ChartTTL, time.Hour)
	}

	if cfg.Operations.BlockShortSelling {
		t.Error("Operations.BlockShortSelling = true, want false")
	}
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig() succeeded without JWT_SECRET, want error")
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue time.Duration
		want         time.Duration
	}{
		{"parses valid duration", "90s", time.Minute, 90 * time.Second},
		{"falls back on empty", "", time.Minute, time.Minute},
		{"falls back on garbage", "not-a-duration", time.Minute, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.envValue)
			if got := getEnvAsDuration("TEST_DURATION", tt.defaultValue); got != tt.want {
				t.Errorf("getEnvAsDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	if !getEnvAsBool("TEST_BOOL", false) {
		t.Error("getEnvAsBool() = false, want true")
	}

	t.Setenv("TEST_BOOL", "definitely")
	if getEnvAsBool("TEST_BOOL", false) {
		t.Error("getEnvAsBool() with garbage = true, want default false")
	}
}
