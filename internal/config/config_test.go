package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.App.Env != "dev" || cfg.Server.Addr != ":8080" || cfg.Log.Level != "info" {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.JWT.Issuer != "bookjohn" || cfg.MFA.Issuer != "BookJohn" || cfg.MFA.Window != 1 {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.AccessTTL() != 15*time.Minute || cfg.VerifyTokenTTL() != 24*time.Hour || cfg.ResetTokenTTL() != time.Hour {
		t.Fatal("TTL defaults wrong")
	}
	if cfg.Rate.Login.Limit != 10 || cfg.LoginRateWindow() != time.Minute {
		t.Fatalf("rate defaults: %+v", cfg.Rate)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
app:
  env: prod
server:
  addr: ":9090"
  cors_allowed_origins: ["https://app.example.com"]
jwt:
  issuer: custom
  secret: super-secret
  access_ttl: 30m
mfa:
  window: 2
rate:
  enabled: true
  login:
    limit: 5
    window: 2m
seed:
  enabled: true
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.App.Env != "prod" || cfg.Server.Addr != ":9090" {
		t.Fatalf("yaml not applied: %+v", cfg)
	}
	if len(cfg.Server.CORSAllowedOrigins) != 1 {
		t.Fatalf("cors origins: %v", cfg.Server.CORSAllowedOrigins)
	}
	if cfg.JWT.Issuer != "custom" || cfg.JWT.Secret != "super-secret" || cfg.AccessTTL() != 30*time.Minute {
		t.Fatalf("jwt: %+v", cfg.JWT)
	}
	if cfg.MFA.Window != 2 || !cfg.Rate.Enabled || cfg.Rate.Login.Limit != 5 || cfg.LoginRateWindow() != 2*time.Minute {
		t.Fatalf("mfa/rate: %+v %+v", cfg.MFA, cfg.Rate)
	}
	if !cfg.Seed.Enabled {
		t.Fatal("seed not enabled")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":9090\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ADDR", ":7070")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("MFA_TOTP_WINDOW", "3")
	t.Setenv("SEED_ENABLED", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Fatalf("env should override file: %s", cfg.Server.Addr)
	}
	if cfg.JWT.Secret != "from-env" || cfg.MFA.Window != 3 || !cfg.Seed.Enabled {
		t.Fatalf("env overrides missing: %+v", cfg)
	}
}

func TestLoad_ClampsBadWindow(t *testing.T) {
	t.Setenv("MFA_TOTP_WINDOW", "99")
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MFA.Window != 1 {
		t.Fatalf("oversized window not clamped: %d", cfg.MFA.Window)
	}
}

func TestLoad_BrokenYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("broken yaml accepted")
	}
}
