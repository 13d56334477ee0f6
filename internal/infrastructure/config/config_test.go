package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadExampleConfig(t *testing.T) {
	cfg, err := Load("../../../config.example.yaml")
	if err != nil {
		t.Skip("config.example.yaml not found in expected location")
	}

	assert.Equal(t, 8080, cfg.API.Port)
	assert.NotEmpty(t, cfg.LeadCosts)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
lead_costs:
  Facebook: 2.5
  "Google Ads": 4
api:
  port: 9090
sessions:
  idle_ttl: 30m
observability:
  logging:
    level: debug
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, 2.5, cfg.CostTable()["Facebook"])
	assert.Equal(t, 4.0, cfg.CostTable().Lookup("Google Ads"))
	assert.Equal(t, 1.0, cfg.CostTable().Lookup("Unknown"))
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTTL())
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	assert.Equal(t, "text", cfg.Observability.Logging.Format, "format falls back to default")
	assert.Equal(t, 30, cfg.Ingest.PreviewRows)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lead_costs: [not, a, map"), 0644))

	_, err := Load(path)

	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("API_PORT", "7070")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("API_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg := LoadFromEnv()

	assert.Equal(t, 7070, cfg.API.Port)
	assert.Equal(t, "warn", cfg.Observability.Logging.Level)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.API.AllowedOrigins)
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("API_PORT", "")
	t.Setenv("LEAD_COSTS_FILE", "")

	cfg := LoadFromEnv()

	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, 2*time.Hour, cfg.SessionIdleTTL())
	assert.Empty(t, cfg.LeadCosts)
}

func TestLoadFromEnv_LeadCostsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "costs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("FB: 2.5\nTikTok: 0.75\n"), 0644))
	t.Setenv("LEAD_COSTS_FILE", path)

	cfg := LoadFromEnv()

	assert.Equal(t, map[string]float64{"FB": 2.5, "TikTok": 0.75}, cfg.LeadCosts)
}

func TestLoadOrEnv_FallbackToEnv(t *testing.T) {
	t.Setenv("API_PORT", "6060")

	cfg := LoadOrEnv_WithPath("nonexistent.yaml")

	assert.NotNil(t, cfg)
	assert.Equal(t, 6060, cfg.API.Port)
}

func TestLoadCosts_Wrapped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "costs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lead_costs:\n  FB: 3\n"), 0644))

	costs, err := LoadCosts(path)

	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"FB": 3}, costs)
}

func TestEnvVarExpansion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("observability:\n  logging:\n    level: \"${TEST_LOG_LEVEL}\"\n"), 0644))
	t.Setenv("TEST_LOG_LEVEL", "error")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Observability.Logging.Level)
}

func TestValidate(t *testing.T) {
	cfg := LoadFromEnv()
	require.NoError(t, cfg.Validate())

	cfg.LeadCosts = map[string]float64{"FB": 0}
	assert.ErrorContains(t, cfg.Validate(), "must be positive")

	cfg.LeadCosts = nil
	cfg.API.Port = 70000
	assert.ErrorContains(t, cfg.Validate(), "invalid api port")
}

func TestCostTable_IsACopy(t *testing.T) {
	cfg := &Config{LeadCosts: map[string]float64{"FB": 2}}

	costs := cfg.CostTable()
	costs["FB"] = 99

	assert.Equal(t, 2.0, cfg.LeadCosts["FB"])
}
