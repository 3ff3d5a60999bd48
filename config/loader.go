package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config.yaml"

// Load reads configuration from a YAML file and environment variables,
// validates it and resolves the tenant time zone into Tenant.Location.
//
// Priority: ENV > YAML > defaults (env-default tags). The YAML path comes
// from CONFIG_PATH, falling back to ./config.yaml. A missing default file
// means ENV + defaults only; a missing explicit file is an error.
func Load() (*Config, error) {
	var cfg Config
	if err := read(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	if err := cfg.Tenant.resolve(); err != nil {
		return nil, fmt.Errorf("config: tenant: %w", err)
	}

	return &cfg, nil
}

func read(cfg *Config) error {
	path, explicit := configPath()

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
	case explicit:
		return fmt.Errorf("config: file %s: %w", path, statErr)
	default:
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return fmt.Errorf("config: read env: %w", err)
		}
	}
	return nil
}

func configPath() (path string, explicit bool) {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p, true
	}
	return defaultConfigPath, false
}

// resolve loads the configured zone. Entry splitting, the backdate guard
// and the local request form all run in this zone.
func (t *TenantConfig) resolve() error {
	loc, err := time.LoadLocation(t.TimeZone)
	if err != nil {
		return fmt.Errorf("time_zone %q: %w", t.TimeZone, err)
	}
	t.Location = loc
	return nil
}
