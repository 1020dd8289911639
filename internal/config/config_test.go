package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	t.Setenv("TEST_JWT_SECRET", "s3cret")
	t.Setenv("TEST_GEMINI_KEY", "gem-key")

	path := writeConfig(t, `
auth:
  jwt_secret: ${TEST_JWT_SECRET}
ai:
  providers:
    - type: gemini
      api_key: ${TEST_GEMINI_KEY}
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.URL != "./data/stomatrack.db" {
		t.Errorf("database = %+v, want sqlite default", cfg.Database)
	}
	if cfg.Auth.JWTSecret != "s3cret" {
		t.Errorf("jwt secret not expanded: %q", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.TokenTTL != 72*time.Hour {
		t.Errorf("token ttl = %v, want 72h", cfg.Auth.TokenTTL)
	}
	if cfg.AI.Timeout != 20*time.Second {
		t.Errorf("ai timeout = %v, want 20s", cfg.AI.Timeout)
	}
	if got := cfg.AI.Providers[0]; got.APIKey != "gem-key" || got.MaxRetries != 1 {
		t.Errorf("provider = %+v, want expanded key and single attempt", got)
	}
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "Given no jwt secret When loading Then error",
			body: "server:\n  port: \"9000\"\n",
		},
		{
			name: "Given unknown driver When loading Then error",
			body: "auth:\n  jwt_secret: x\ndatabase:\n  driver: mysql\n  url: x\n",
		},
		{
			name: "Given postgres without url When loading Then error",
			body: "auth:\n  jwt_secret: x\ndatabase:\n  driver: postgres\n",
		},
		{
			name: "Given s3 enabled without bucket When loading Then error",
			body: "auth:\n  jwt_secret: x\nimages:\n  s3:\n    enabled: true\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.body)); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
