package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del servicio: YAML base + overrides
// por variables de entorno. Todo tiene default razonable; un proceso sin
// config.yaml ni env arranca igual (con secreto JWT efímero, ver Load).
type Config struct {
	App struct {
		// dev | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	JWT struct {
		Issuer    string `yaml:"issuer"`
		Secret    string `yaml:"secret"`
		AccessTTL string `yaml:"access_ttl"`
	} `yaml:"jwt"`

	MFA struct {
		Issuer string `yaml:"issuer"` // issuer del otpauth:// URL
		Window int    `yaml:"window"` // +/- time-steps de tolerancia
	} `yaml:"mfa"`

	Tokens struct {
		VerifyTTL string `yaml:"verify_ttl"` // tokens de verificación de email
		ResetTTL  string `yaml:"reset_ttl"`  // tokens de reset de password
	} `yaml:"tokens"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Login   struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
	} `yaml:"rate"`

	Seed struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"seed"`
}

// Load lee el YAML (si existe) y aplica overrides de entorno y defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// sin archivo: defaults + env
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	// Overrides por entorno
	overrideString(&cfg.App.Env, "APP_ENV")
	overrideString(&cfg.Server.Addr, "ADDR")
	overrideString(&cfg.Log.Level, "LOG_LEVEL")
	overrideString(&cfg.JWT.Issuer, "JWT_ISSUER")
	overrideString(&cfg.JWT.Secret, "JWT_SECRET")
	overrideString(&cfg.JWT.AccessTTL, "JWT_ACCESS_TTL")
	overrideString(&cfg.MFA.Issuer, "MFA_TOTP_ISSUER")
	overrideInt(&cfg.MFA.Window, "MFA_TOTP_WINDOW")
	overrideBool(&cfg.Rate.Enabled, "RATE_ENABLED")
	overrideBool(&cfg.Seed.Enabled, "SEED_ENABLED")

	// Defaults
	if cfg.App.Env == "" {
		cfg.App.Env = "dev"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "bookjohn"
	}
	if cfg.MFA.Issuer == "" {
		cfg.MFA.Issuer = "BookJohn"
	}
	if cfg.MFA.Window <= 0 || cfg.MFA.Window > 3 {
		cfg.MFA.Window = 1
	}
	if cfg.Rate.Login.Limit <= 0 {
		cfg.Rate.Login.Limit = 10
	}

	return cfg, nil
}

// AccessTTL parsea jwt.access_ttl; default 15m.
func (c *Config) AccessTTL() time.Duration {
	return parseDuration(c.JWT.AccessTTL, 15*time.Minute)
}

// VerifyTokenTTL parsea tokens.verify_ttl; default 24h.
func (c *Config) VerifyTokenTTL() time.Duration {
	return parseDuration(c.Tokens.VerifyTTL, 24*time.Hour)
}

// ResetTokenTTL parsea tokens.reset_ttl; default 1h.
func (c *Config) ResetTokenTTL() time.Duration {
	return parseDuration(c.Tokens.ResetTTL, time.Hour)
}

// LoginRateWindow parsea rate.login.window; default 1m.
func (c *Config) LoginRateWindow() time.Duration {
	return parseDuration(c.Rate.Login.Window, time.Minute)
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func overrideString(dst *string, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func overrideBool(dst *bool, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
