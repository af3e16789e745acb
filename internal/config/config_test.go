package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validYAML = `port: "8080"
databaseURL: "postgres://bankisha:pw@localhost:5432/bankisha"
redisAddr: "localhost:6379"
jwksURL: "https://id.example.com/.well-known/jwks.json"
tokenIssuer: "https://id.example.com"
tokenAudience: "bankisha"
minioEndpoint: "localhost:9000"
minioAccessKey: "minio"
minioSecretKey: "minio-secret"
minioBucket: "bankisha"
geminiApiKey: "gm-key"
serviceTokenSecret: "internal-secret"
publicRateLimit: 60
publicRateWindowSeconds: 60
corsOrigins:
  - "https://app.example.com"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.PublicRateLimit != 60 || cfg.PublicRateWindowSeconds != 60 {
		t.Errorf("rate limit = %d/%ds", cfg.PublicRateLimit, cfg.PublicRateWindowSeconds)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "https://app.example.com" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://override@db:5432/bankisha")
	t.Setenv("BANKISHA_AI_PROVIDER", "openai")
	t.Setenv("OPENAI_BASE_URL", "https://llm.internal/v1")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("BANKISHA_CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want env override", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://override@db:5432/bankisha" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.AIProvider != "openai" || cfg.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("ai config = %q/%q", cfg.AIProvider, cfg.OpenAIModel)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidationFailures(t *testing.T) {
	cases := []struct {
		name   string
		mangle func(string) string
		errHas string
	}{
		{"missing port", dropLine("port:"), "port is required"},
		{"missing database", dropLine("databaseURL:"), "databaseURL is required"},
		{"missing redis", dropLine("redisAddr:"), "redisAddr is required"},
		{"missing jwks", dropLine("jwksURL:"), "jwksURL is required"},
		{"missing minio", dropLine("minioBucket:"), "minio"},
		{"missing gemini key", dropLine("geminiApiKey:"), "geminiApiKey is required"},
		{"missing service secret", dropLine("serviceTokenSecret:"), "serviceTokenSecret is required"},
		{"unknown provider", func(s string) string { return s + "aiProvider: \"watson\"\n" }, "unknown aiProvider"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.mangle(validYAML)))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.errHas) {
				t.Fatalf("err = %v, want mention of %q", err, tc.errHas)
			}
		})
	}
}

func dropLine(prefix string) func(string) string {
	return func(s string) string {
		lines := strings.Split(s, "\n")
		kept := lines[:0]
		for _, line := range lines {
			if strings.HasPrefix(line, prefix) {
				continue
			}
			kept = append(kept, line)
		}
		return strings.Join(kept, "\n")
	}
}
