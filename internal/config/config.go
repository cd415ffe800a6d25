// Package config loads the server configuration.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/evcraddock/visit-planner/internal/cep"
	"github.com/evcraddock/visit-planner/internal/db"
	"github.com/evcraddock/visit-planner/internal/schedule"
)

// EnvPrefix prefixes environment overrides. Nested keys are separated by
// a double underscore, e.g. VP_SERVER__PORT.
const EnvPrefix = "VP_"

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Log      LogConfig      `json:"log"`
	CEP      CEPConfig      `json:"cep"`
	Schedule ScheduleConfig `json:"schedule"`
	Seed     SeedConfig     `json:"seed"`
}

type ServerConfig struct {
	Port    int  `json:"port"`
	DevMode bool `json:"dev_mode"`
}

type DatabaseConfig struct {
	Path string `json:"path"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level"`
}

type CEPConfig struct {
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// Timeout returns the lookup timeout as a duration.
func (c CEPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ScheduleConfig mirrors schedule.Rules. Keys left out keep the defaults;
// an explicit 0 is kept.
type ScheduleConfig struct {
	MinutesPerForm    int `json:"minutes_per_form"`
	MinutesPerProduct int `json:"minutes_per_product"`
	MaxMinutesPerDay  int `json:"max_minutes_per_day"`
	AlertBelow        int `json:"alert_below"`
	GoodAbove         int `json:"good_above"`
	MaxSearchDays     int `json:"max_search_days"`
}

// Rules converts the section into scheduling rules.
func (c ScheduleConfig) Rules() schedule.Rules {
	return schedule.Rules{
		MinutesPerForm:    c.MinutesPerForm,
		MinutesPerProduct: c.MinutesPerProduct,
		MaxMinutesPerDay:  c.MaxMinutesPerDay,
		AlertBelow:        c.AlertBelow,
		GoodAbove:         c.GoodAbove,
		MaxSearchDays:     c.MaxSearchDays,
	}
}

type SeedConfig struct {
	// OnEmpty loads the sample visits when storage is empty or unreadable.
	OnEmpty bool `json:"on_empty"`
}

// Enabled reports whether seeding is on. It defaults to true.
func (c SeedConfig) Enabled() bool {
	return c.OnEmpty
}

// defaults is the bottom configuration layer, below file and environment.
func defaults() map[string]any {
	m := map[string]any{
		"server.port":                  8080,
		"server.dev_mode":              false,
		"log.level":                    "info",
		"cep.base_url":                 cep.DefaultBaseURL,
		"cep.timeout_seconds":          10,
		"schedule.minutes_per_form":    schedule.MinutesPerForm,
		"schedule.minutes_per_product": schedule.MinutesPerProduct,
		"schedule.max_minutes_per_day": schedule.MaxMinutesPerDay,
		"schedule.alert_below":         schedule.AlertBelow,
		"schedule.good_above":          schedule.GoodAbove,
		"schedule.max_search_days":     schedule.MaxSearchDays,
		"seed.on_empty":                true,
	}
	if path, err := db.DefaultPath(); err == nil {
		m["database.path"] = path
	}
	return m
}

// Load reads the configuration file at path, if any, then applies
// environment overrides and defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		var parser koanf.Parser
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg, err := unmarshal(k)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file or environment
// overrides are given.
func Default() *Config {
	k := koanf.New(".")
	// A confmap load of a plain map cannot fail.
	_ = k.Load(confmap.Provider(defaults(), "."), nil)
	cfg, err := unmarshal(k)
	if err != nil {
		return &Config{}
	}
	return cfg
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log.level %q", c.Log.Level)
	}
	if c.CEP.TimeoutSeconds < 0 {
		return fmt.Errorf("cep.timeout_seconds must not be negative")
	}
	if err := c.Schedule.Rules().Validate(); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	return nil
}
