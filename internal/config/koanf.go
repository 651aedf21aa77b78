// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/mediatiger/config.yaml",
	"/etc/mediatiger/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// envSections are the recognized environment variable prefixes.
// DATABASE_URL -> database.url, SCRAPER_MAX_DAYS_PER_REQUEST -> scraper.max_days_per_request.
var envSections = []string{"server", "database", "upstream", "scraper", "cron", "api", "logging"}

// defaultConfig returns a Config with all default values. These mirror the
// scraping defaults of the original deployment (30-day request cap, 1s
// inter-request delay, 2s cron delay, daily run at 02:00 UTC).
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
		},
		Database: DatabaseConfig{
			URL:             "",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnectTimeout:  5 * time.Second,
		},
		Upstream: UpstreamConfig{
			BaseURL: "http://localhost:8080",
			Timeout: 30 * time.Second,
		},
		Scraper: ScraperConfig{
			MaxDaysPerRequest: 30,
			Delay:             time.Second,
			OutputDir:         "./scraped_data",
			Persist:           true,
		},
		Cron: CronConfig{
			Enabled:          false,
			Schedule:         "0 2 * * *",
			Delay:            2 * time.Second,
			FallbackChannels: []string{},
			PIDFile:          "/tmp/mediatiger-cron.pid",
		},
		API: APIConfig{
			DefaultPageSize: 100,
			MaxPageSize:     1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration with layered sources: defaults, then an optional
// YAML config file, then environment variables (highest priority).
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("", ".", envTransform)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// envTransform maps environment variable names to koanf paths. Unrecognized
// variables are skipped so unrelated environment noise never lands in Config.
func envTransform(key string) string {
	lower := strings.ToLower(key)
	for _, section := range envSections {
		prefix := section + "_"
		if strings.HasPrefix(lower, prefix) {
			return section + "." + strings.TrimPrefix(lower, prefix)
		}
	}
	return ""
}

// findConfigFile returns the first config file found, or empty string.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
