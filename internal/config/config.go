package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the atlas backtest pipeline.
type Config struct {
	General    GeneralConfig    `yaml:"general"`
	Data       DataConfig       `yaml:"data"`
	Volatility VolatilityConfig `yaml:"volatility"`
	Spread     SpreadConfig     `yaml:"spread"`
	Engine     EngineConfig     `yaml:"engine"`
	Sweep      SweepConfig      `yaml:"sweep"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

type GeneralConfig struct {
	InstanceID       string `yaml:"instance_id"`
	LogLevel         string `yaml:"log_level"`
	LogFormat        string `yaml:"log_format"` // json|text
	HeartbeatSeconds int    `yaml:"heartbeat_seconds"`
}

type DataConfig struct {
	Path               string `yaml:"path"`
	BarIntervalSeconds int    `yaml:"bar_interval_seconds"`
	MinObsPerBucket    int    `yaml:"min_obs_per_bucket"`
}

type VolatilityConfig struct {
	EWMALambda float64 `yaml:"ewma_lambda"`
}

type SpreadConfig struct {
	BaselineDelta float64 `yaml:"baseline_delta"` // constant half-spread for the baseline strategy
	K0            float64 `yaml:"k0"`             // vol-adaptive intercept
	K1            float64 `yaml:"k1"`             // vol-adaptive slope
	MinSpread     float64 `yaml:"min_spread"`
	Phi           float64 `yaml:"phi"` // inventory-skew coefficient
}

type EngineConfig struct {
	InitialCash float64 `yaml:"initial_cash"`
	Seed        int64   `yaml:"seed"`
	AlphaAS     float64 `yaml:"alpha_as"`
}

type SweepConfig struct {
	Alphas []float64 `yaml:"alphas"`
}

type MetricsConfig struct {
	Enabled        bool `yaml:"enabled"`
	PrometheusPort int  `yaml:"prometheus_port"`
}

// Load reads and parses a YAML configuration file. Environment variables in
// the file are expanded before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.General.InstanceID == "" {
		cfg.General.InstanceID = "atlas-1"
	}
	if cfg.General.LogLevel == "" {
		cfg.General.LogLevel = "info"
	}
	if cfg.General.LogFormat == "" {
		cfg.General.LogFormat = "json"
	}
	if cfg.General.HeartbeatSeconds == 0 {
		cfg.General.HeartbeatSeconds = 60
	}
	if cfg.Data.BarIntervalSeconds == 0 {
		cfg.Data.BarIntervalSeconds = 60
	}
	if cfg.Data.MinObsPerBucket == 0 {
		cfg.Data.MinObsPerBucket = 1
	}
	if cfg.Volatility.EWMALambda == 0 {
		cfg.Volatility.EWMALambda = 0.94
	}
	if cfg.Spread.BaselineDelta == 0 {
		cfg.Spread.BaselineDelta = 0.03
	}
	if cfg.Spread.K0 == 0 {
		cfg.Spread.K0 = 0.01
	}
	if cfg.Spread.K1 == 0 {
		cfg.Spread.K1 = 1.0
	}
	if cfg.Spread.MinSpread == 0 {
		cfg.Spread.MinSpread = 0.005
	}
	if cfg.Spread.Phi == 0 {
		cfg.Spread.Phi = 0.001
	}
	if cfg.Engine.Seed == 0 {
		cfg.Engine.Seed = 42
	}
	if cfg.Engine.AlphaAS == 0 {
		cfg.Engine.AlphaAS = 0.02
	}
	if len(cfg.Sweep.Alphas) == 0 {
		cfg.Sweep.Alphas = []float64{0.003, 0.001}
	}
	if cfg.Metrics.PrometheusPort == 0 {
		cfg.Metrics.PrometheusPort = 9090
	}
}

func validate(cfg *Config) error {
	if cfg.Data.Path == "" {
		return fmt.Errorf("config: data.path is required")
	}
	if cfg.Volatility.EWMALambda <= 0 || cfg.Volatility.EWMALambda >= 1 {
		return fmt.Errorf("config: volatility.ewma_lambda must be in (0,1), got %v", cfg.Volatility.EWMALambda)
	}
	if cfg.Spread.BaselineDelta < 0 || cfg.Spread.MinSpread < 0 {
		return fmt.Errorf("config: spread values must be non-negative")
	}
	if cfg.Engine.AlphaAS < 0 {
		return fmt.Errorf("config: engine.alpha_as must be >= 0")
	}
	return nil
}
