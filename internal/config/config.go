// Package config loads server settings from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds every setting the server reads at startup.
type Config struct {
	DB        string `yaml:"db"`
	Addr      string `yaml:"addr"`
	AdminUser string `yaml:"admin_user"`
	Log       string `yaml:"log"`

	// Cron expressions in the standard five-field form. Empty disables the job.
	LowStockSchedule   string `yaml:"low_stock_schedule"`
	TokenPurgeSchedule string `yaml:"token_purge_schedule"`

	// OTLPEndpoint is an http(s) URL for trace export. Empty disables tracing.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Default returns the settings used when neither a file nor a flag sets them.
func Default() Config {
	return Config{
		DB:                 "purchase-hub.sqlite3",
		Addr:               ":8080",
		AdminUser:          "Admin",
		LowStockSchedule:   "0 7 * * *",
		TokenPurgeSchedule: "@hourly",
	}
}

// Load reads the YAML file at path over the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. Keys absent
// from data keep their default values.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DB) == "" {
		errs = append(errs, errors.New("db: must not be empty"))
	}
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr: must not be empty"))
	}
	if strings.TrimSpace(c.AdminUser) == "" {
		errs = append(errs, errors.New("admin_user: must not be empty"))
	}
	if c.LowStockSchedule != "" {
		if _, err := cron.ParseStandard(c.LowStockSchedule); err != nil {
			errs = append(errs, fmt.Errorf("low_stock_schedule: %w", err))
		}
	}
	if c.TokenPurgeSchedule != "" {
		if _, err := cron.ParseStandard(c.TokenPurgeSchedule); err != nil {
			errs = append(errs, fmt.Errorf("token_purge_schedule: %w", err))
		}
	}
	if c.OTLPEndpoint != "" {
		u, err := url.Parse(c.OTLPEndpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("otlp_endpoint: %q is not an http(s) URL", c.OTLPEndpoint))
		}
	}
	return errors.Join(errs...)
}
