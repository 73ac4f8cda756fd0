// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	Port           string  `env:"PORT" envDefault:"8000"`
	DBPath         string  `env:"DB_PATH" envDefault:"pitlane.db"`
	OpenF1BaseURL  string  `env:"OPENF1_BASE_URL" envDefault:"https://api.openf1.org/v1"`
	ScrapeBaseURL  string  `env:"SCRAPE_BASE_URL" envDefault:"https://www.formula1.com"`
	LogLevel       string  `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string  `env:"LOG_FORMAT" envDefault:"text"`
	RecentSessions int     `env:"RECENT_SESSIONS" envDefault:"3"`
	RequestRate    float64 `env:"OPENF1_REQUESTS_PER_SECOND" envDefault:"2"`
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	if c.OpenF1BaseURL == "" {
		errors = append(errors, "OPENF1_BASE_URL cannot be empty")
	} else if _, err := url.Parse(c.OpenF1BaseURL); err != nil {
		errors = append(errors, fmt.Sprintf("OPENF1_BASE_URL is not a valid URL: %s", c.OpenF1BaseURL))
	}

	if c.ScrapeBaseURL == "" {
		errors = append(errors, "SCRAPE_BASE_URL cannot be empty")
	} else if _, err := url.Parse(c.ScrapeBaseURL); err != nil {
		errors = append(errors, fmt.Sprintf("SCRAPE_BASE_URL is not a valid URL: %s", c.ScrapeBaseURL))
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if c.RecentSessions < 0 {
		errors = append(errors, fmt.Sprintf("RECENT_SESSIONS cannot be negative, got: %d", c.RecentSessions))
	}

	if c.RequestRate <= 0 {
		errors = append(errors, fmt.Sprintf("OPENF1_REQUESTS_PER_SECOND must be positive, got: %v", c.RequestRate))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}
