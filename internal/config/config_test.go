package config

import (
	"testing"
	"time"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		shouldSet    bool
		want         string
	}{
		{
			name:         "returns environment variable when set",
			key:          "TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			shouldSet:    true,
			want:         "custom",
		},
		{
			name:         "returns default when environment variable not set",
			key:          "TEST_VAR_MISSING",
			defaultValue: "default",
			envValue:     "",
			shouldSet:    false,
			want:         "default",
		},
		{
			name:         "returns default when environment variable is empty string",
			key:          "TEST_VAR_EMPTY",
			defaultValue: "default",
			envValue:     "",
			shouldSet:    true,
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue int
		envValue     string
		shouldSet    bool
		want         int
	}{
		{
			name:         "returns environment variable as int when set with valid integer",
			key:          "TEST_INT_VAR",
			defaultValue: 100,
			envValue:     "200",
			shouldSet:    true,
			want:         200,
		},
		{
			name:         "returns default when environment variable not set",
			key:          "TEST_INT_VAR_MISSING",
			defaultValue: 100,
			envValue:     "",
			shouldSet:    false,
			want:         100,
		},
		{
			name:         "returns default when environment variable is not a valid integer",
			key:          "TEST_INT_VAR_INVALID",
			defaultValue: 100,
			envValue:     "not_a_number",
			shouldSet:    true,
			want:         100,
		},
		{
			name:         "handles negative integers",
			key:          "TEST_INT_VAR_NEGATIVE",
			defaultValue: 100,
			envValue:     "-50",
			shouldSet:    true,
			want:         -50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnvAsInt(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvAsInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoad_defaults(t *testing.T) {
	t.Setenv("API_KEY", "test-api-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	if cfg.EmbeddingDimensions != 128 {
		t.Errorf("EmbeddingDimensions = %d, want 128", cfg.EmbeddingDimensions)
	}

	if cfg.SimilarUserCount != 5 {
		t.Errorf("SimilarUserCount = %d, want 5", cfg.SimilarUserCount)
	}

	if cfg.RecommendationCap != 10 {
		t.Errorf("RecommendationCap = %d, want 10", cfg.RecommendationCap)
	}

	if cfg.RateLimitWindow != time.Minute {
		t.Errorf("RateLimitWindow = %v, want 1m", cfg.RateLimitWindow)
	}

	if cfg.ExternalCallTimeout != 10*time.Second {
		t.Errorf("ExternalCallTimeout = %v, want 10s", cfg.ExternalCallTimeout)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %v, want 8080", cfg.Port)
	}

	if cfg.DatabaseMaxConns != 10 {
		t.Errorf("DatabaseMaxConns = %d, want 10", cfg.DatabaseMaxConns)
	}

	if !cfg.MetricsEnabled {
		t.Error("MetricsEnabled = false, want true by default")
	}
}

func TestGetEnvAsBool(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue bool
		envValue     string
		shouldSet    bool
		want         bool
	}{
		{
			name:         "returns parsed value when set",
			key:          "TEST_BOOL_VAR",
			defaultValue: true,
			envValue:     "false",
			shouldSet:    true,
			want:         false,
		},
		{
			name:         "returns default when not set",
			key:          "TEST_BOOL_VAR_MISSING",
			defaultValue: true,
			envValue:     "",
			shouldSet:    false,
			want:         true,
		},
		{
			name:         "returns default when unparseable",
			key:          "TEST_BOOL_VAR_INVALID",
			defaultValue: false,
			envValue:     "maybe",
			shouldSet:    true,
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnvAsBool(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvAsBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoad_requiresAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "")

	if _, err := Load(); err == nil {
		t.Error("Load() error = nil, want error when API_KEY missing")
	}
}

func TestLoad_rejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "zero dimensions", key: "EMBEDDING_DIMENSIONS", value: "0"},
		{name: "negative similar user count", key: "SIMILAR_USER_COUNT", value: "-1"},
		{name: "zero recommendation cap", key: "RECOMMENDATION_CAP", value: "0"},
		{name: "zero rate limit max", key: "RATE_LIMIT_MAX_REQUESTS", value: "0"},
		{name: "negative rate limit window", key: "RATE_LIMIT_WINDOW_MS", value: "-1000"},
		{name: "zero external timeout", key: "EXTERNAL_CALL_TIMEOUT_MS", value: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("API_KEY", "test-api-key")
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() error = nil, want error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_customWindow(t *testing.T) {
	t.Setenv("API_KEY", "test-api-key")
	t.Setenv("RATE_LIMIT_WINDOW_MS", "2500")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	if cfg.RateLimitWindow != 2500*time.Millisecond {
		t.Errorf("RateLimitWindow = %v, want 2.5s", cfg.RateLimitWindow)
	}
}
