// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback), optionally seeded from a .env file
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	costs := cfg.CostTable()
//	port := cfg.API.Port
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/eshaffer321/bats-attribution/internal/domain/report"
)

// Config represents the entire application configuration
type Config struct {
	LeadCosts     map[string]float64  `yaml:"lead_costs"`
	API           APIConfig           `yaml:"api"`
	Ingest        IngestConfig        `yaml:"ingest"`
	Sessions      SessionsConfig      `yaml:"sessions"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// APIConfig holds HTTP server settings
type APIConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxUploadMB    int      `yaml:"max_upload_mb"`
}

// IngestConfig holds spreadsheet loading settings
type IngestConfig struct {
	PreviewRows int `yaml:"preview_rows"`
}

// SessionsConfig holds in-memory working session settings
type SessionsConfig struct {
	IdleTTL string `yaml:"idle_ttl"` // Go duration, e.g. "2h"
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	defaultPort        = 8080
	defaultPreviewRows = 30
	defaultMaxUploadMB = 32
	defaultIdleTTL     = 2 * time.Hour
)

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${LOG_LEVEL})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		API: APIConfig{
			Port:           getEnvInt("API_PORT", defaultPort),
			AllowedOrigins: splitList(getEnv("API_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
			MaxUploadMB:    getEnvInt("API_MAX_UPLOAD_MB", defaultMaxUploadMB),
		},
		Ingest: IngestConfig{
			PreviewRows: getEnvInt("INGEST_PREVIEW_ROWS", defaultPreviewRows),
		},
		Sessions: SessionsConfig{
			IdleTTL: getEnv("SESSION_IDLE_TTL", defaultIdleTTL.String()),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}

	if path := os.Getenv("LEAD_COSTS_FILE"); path != "" {
		if costs, err := LoadCosts(path); err == nil {
			cfg.LeadCosts = costs
		}
	}

	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnv_WithPath("config.yaml")
}

// LoadOrEnv_WithPath tries to load from specified path, falls back to environment variables.
// A .env file in the working directory is loaded first when present.
func LoadOrEnv_WithPath(path string) *Config {
	_ = godotenv.Load()

	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// LoadCosts reads a standalone lead cost file: a YAML mapping of source to cost,
// either at the top level or under a lead_costs key.
func LoadCosts(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		LeadCosts map[string]float64 `yaml:"lead_costs"`
	}
	if err := yaml.Unmarshal(data, &wrapped); err == nil && len(wrapped.LeadCosts) > 0 {
		return wrapped.LeadCosts, nil
	}

	var flat map[string]float64
	if err := yaml.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("parse lead costs %s: %w", path, err)
	}
	return flat, nil
}

// CostTable returns the configured lead costs.
func (c *Config) CostTable() report.CostTable {
	out := make(report.CostTable, len(c.LeadCosts))
	for k, v := range c.LeadCosts {
		out[k] = v
	}
	return out
}

// SessionIdleTTL parses the session idle TTL, falling back to the default.
func (c *Config) SessionIdleTTL() time.Duration {
	d, err := time.ParseDuration(c.Sessions.IdleTTL)
	if err != nil || d <= 0 {
		return defaultIdleTTL
	}
	return d
}

// Validate checks values that would make a run meaningless.
func (c *Config) Validate() error {
	for source, cost := range c.LeadCosts {
		if cost <= 0 {
			return fmt.Errorf("lead cost for %q must be positive, got %v", source, cost)
		}
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("invalid api port %d", c.API.Port)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.Port == 0 {
		c.API.Port = defaultPort
	}
	if c.API.MaxUploadMB <= 0 {
		c.API.MaxUploadMB = defaultMaxUploadMB
	}
	if c.Ingest.PreviewRows <= 0 {
		c.Ingest.PreviewRows = defaultPreviewRows
	}
	if c.Sessions.IdleTTL == "" {
		c.Sessions.IdleTTL = defaultIdleTTL.String()
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
