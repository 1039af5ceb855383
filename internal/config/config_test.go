package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
general:
  instance_id: "atlas-test"
  log_level: "debug"
  log_format: "text"
  heartbeat_seconds: 30
data:
  path: "/data/taq/quotes.csv"
  bar_interval_seconds: 120
  min_obs_per_bucket: 5
volatility:
  ewma_lambda: 0.9
spread:
  baseline_delta: 0.05
  k0: 0.02
  k1: 2.0
  min_spread: 0.01
  phi: 0.002
engine:
  initial_cash: 1000
  seed: 7
  alpha_as: 0.01
sweep:
  alphas: [0.005, 0.002]
metrics:
  enabled: true
  prometheus_port: 9100
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "atlas-test", cfg.General.InstanceID)
	assert.Equal(t, "debug", cfg.General.LogLevel)
	assert.Equal(t, "text", cfg.General.LogFormat)
	assert.Equal(t, 30, cfg.General.HeartbeatSeconds)
	assert.Equal(t, "/data/taq/quotes.csv", cfg.Data.Path)
	assert.Equal(t, 120, cfg.Data.BarIntervalSeconds)
	assert.Equal(t, 5, cfg.Data.MinObsPerBucket)
	assert.Equal(t, 0.9, cfg.Volatility.EWMALambda)
	assert.Equal(t, 0.05, cfg.Spread.BaselineDelta)
	assert.Equal(t, 0.002, cfg.Spread.Phi)
	assert.Equal(t, 1000.0, cfg.Engine.InitialCash)
	assert.Equal(t, int64(7), cfg.Engine.Seed)
	assert.Equal(t, 0.01, cfg.Engine.AlphaAS)
	assert.Equal(t, []float64{0.005, 0.002}, cfg.Sweep.Alphas)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9100, cfg.Metrics.PrometheusPort)
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, `
data:
  path: "/data/quotes.csv"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "atlas-1", cfg.General.InstanceID)
	assert.Equal(t, "info", cfg.General.LogLevel)
	assert.Equal(t, "json", cfg.General.LogFormat)
	assert.Equal(t, 60, cfg.General.HeartbeatSeconds)
	assert.Equal(t, 60, cfg.Data.BarIntervalSeconds)
	assert.Equal(t, 1, cfg.Data.MinObsPerBucket)
	assert.Equal(t, 0.94, cfg.Volatility.EWMALambda)
	assert.Equal(t, 0.03, cfg.Spread.BaselineDelta)
	assert.Equal(t, 0.01, cfg.Spread.K0)
	assert.Equal(t, 1.0, cfg.Spread.K1)
	assert.Equal(t, 0.005, cfg.Spread.MinSpread)
	assert.Equal(t, 0.001, cfg.Spread.Phi)
	assert.Equal(t, int64(42), cfg.Engine.Seed)
	assert.Equal(t, 0.02, cfg.Engine.AlphaAS)
	assert.Equal(t, []float64{0.003, 0.001}, cfg.Sweep.Alphas)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9090, cfg.Metrics.PrometheusPort)
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("ATLAS_TEST_DATA_PATH", "/mnt/taq/2025-03-10.csv")

	path := writeConfig(t, `
data:
  path: "${ATLAS_TEST_DATA_PATH}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/mnt/taq/2025-03-10.csv", cfg.Data.Path)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "data: [unbalanced")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_MissingDataPath(t *testing.T) {
	path := writeConfig(t, `
general:
  log_level: "info"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data.path is required")
}

func TestLoad_LambdaOutOfRange(t *testing.T) {
	path := writeConfig(t, `
data:
  path: "/data/quotes.csv"
volatility:
  ewma_lambda: 1.5
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ewma_lambda")
}

func TestLoad_NegativeAlpha(t *testing.T) {
	path := writeConfig(t, `
data:
  path: "/data/quotes.csv"
engine:
  alpha_as: -0.5
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alpha_as")
}
