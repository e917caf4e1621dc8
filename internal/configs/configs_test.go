package configs

import "testing"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENVIRONMENT", "PORT", "ALLOWED_ORIGINS", "JWT_SECRET", "DATABASE_URL",
		"REDIS_ADDR", "REDIS_DB",
		"S3_BUCKET_NAME", "S3_ENDPOINT", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDevelopmentDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Environment != "development" {
		t.Fatalf("environment = %q, want development", cfg.Environment)
	}
	if cfg.Port != 8080 {
		t.Fatalf("port = %d, want 8080", cfg.Port)
	}
	if cfg.JWTSecret == "" {
		t.Fatalf("development run must fall back to a default JWT secret")
	}
	if cfg.DatabaseDSN == "" {
		t.Fatalf("development run must fall back to a default DSN")
	}
	if cfg.ExportsEnabled() {
		t.Fatalf("exports enabled without a bucket")
	}
}

func TestLoadConfigRequiresSecretsOutsideDevelopment(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DATABASE_URL", "postgres://app@db/thinksync")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("production config accepted without JWT_SECRET")
	}

	t.Setenv("JWT_SECRET", "sufficiently-secret")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.JWTSecret != "sufficiently-secret" {
		t.Fatalf("jwt secret = %q", cfg.JWTSecret)
	}
}

func TestLoadConfigRejectsBadPort(t *testing.T) {
	clearEnv(t)

	t.Setenv("PORT", "not-a-number")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("non-numeric port accepted")
	}

	t.Setenv("PORT", "80")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("privileged port accepted")
	}
}

func TestLoadConfigParsesOrigins(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://beta.example.com ,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	want := []string{"https://app.example.com", "https://beta.example.com"}
	if len(cfg.AllowedOrigins) != len(want) {
		t.Fatalf("origins = %v, want %v", cfg.AllowedOrigins, want)
	}
	for i := range want {
		if cfg.AllowedOrigins[i] != want[i] {
			t.Fatalf("origins[%d] = %q, want %q", i, cfg.AllowedOrigins[i], want[i])
		}
	}
}

func TestLoadConfigRequiresFullS3Settings(t *testing.T) {
	clearEnv(t)
	t.Setenv("S3_BUCKET_NAME", "thinksync-exports")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("bucket without endpoint and credentials accepted")
	}

	t.Setenv("S3_ENDPOINT", "https://s3.example.com")
	t.Setenv("S3_ACCESS_KEY_ID", "key")
	t.Setenv("S3_SECRET_ACCESS_KEY", "secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.ExportsEnabled() {
		t.Fatalf("exports disabled despite full S3 settings")
	}
}
