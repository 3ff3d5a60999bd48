package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks the loaded configuration. Load calls it before resolving
// the tenant zone.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("auth.access_token_ttl must be > 0 (got %s)", c.Auth.AccessTokenTTL)
	}
	if err := c.Tenant.validate(); err != nil {
		return fmt.Errorf("tenant: %w", err)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	return nil
}

func (t *TenantConfig) validate() error {
	if t.DefaultBackdateDays < 0 {
		return fmt.Errorf("default_backdate_days must be >= 0 (got %d)", t.DefaultBackdateDays)
	}
	if strings.TrimSpace(t.TimeZone) == "" {
		return fmt.Errorf("time_zone is required")
	}
	if _, err := time.LoadLocation(t.TimeZone); err != nil {
		return fmt.Errorf("time_zone %q: %w", t.TimeZone, err)
	}
	return nil
}
