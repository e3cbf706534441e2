package app

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/iteachbot/core/config"
	coredatabase "github.com/m3rciful/iteachbot/core/database"
)

const (
	defaultTimezone  = "Asia/Tashkent"
	defaultSweepSpec = "@every 10m"
)

// SessionsConfig controls in-memory conversation sessions.
type SessionsConfig struct {
	// IdleTTL drops sessions untouched for longer; 0 keeps them until the flow ends.
	IdleTTL   time.Duration `yaml:"idle_ttl" envconfig:"SESSION_IDLE_TTL"`
	SweepSpec string        `yaml:"sweep_spec" envconfig:"SESSION_SWEEP_SPEC"`
}

// HealthConfig enables the probe server when Listen is set.
type HealthConfig struct {
	Listen string `yaml:"listen" envconfig:"HEALTH_LISTEN"`
}

// AcademyConfig holds domain settings.
type AcademyConfig struct {
	Timezone string `yaml:"timezone" envconfig:"ACADEMY_TIMEZONE"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Sessions SessionsConfig      `yaml:"sessions"`
	Health   HealthConfig        `yaml:"health"`
	Academy  AcademyConfig       `yaml:"academy"`

	location *time.Location
}

// CoreConfig implements cmd.ConfigCarrier.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// Location is the timezone used for administrator timestamps.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// LoadConfig reads path (optional) plus the environment and validates the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates every section and applies defaults.
func Normalize(cfg *Config) error {
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}
	if err := coredatabase.Normalize(&cfg.Database); err != nil {
		return err
	}

	if cfg.Sessions.IdleTTL < 0 {
		return fmt.Errorf("sessions.idle_ttl must be >= 0")
	}
	cfg.Sessions.SweepSpec = strings.TrimSpace(cfg.Sessions.SweepSpec)
	if cfg.Sessions.SweepSpec == "" {
		cfg.Sessions.SweepSpec = defaultSweepSpec
	}

	cfg.Health.Listen = strings.TrimSpace(cfg.Health.Listen)

	tz := strings.TrimSpace(cfg.Academy.Timezone)
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("academy.timezone %q: %w", tz, err)
	}
	cfg.Academy.Timezone = tz
	cfg.location = loc
	return nil
}
