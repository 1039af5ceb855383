package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atlasmm/atlas/internal/config"
	"github.com/atlasmm/atlas/internal/observability"
	"github.com/atlasmm/atlas/internal/pipeline"
	"github.com/atlasmm/atlas/internal/report"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to YAML configuration")
	flag.Parse()

	// Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMicro
	log.Logger = zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "atlas-backtest").
		Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	applyLogConfig(cfg)

	log.Info().
		Str("instance_id", cfg.General.InstanceID).
		Str("data_path", cfg.Data.Path).
		Int64("seed", cfg.Engine.Seed).
		Float64("alpha_as", cfg.Engine.AlphaAS).
		Msg("configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Warn().Str("signal", sig.String()).Msg("shutdown signal received")
		cancel()
	}()

	if cfg.Metrics.Enabled {
		observability.ServeMetrics(ctx, cfg.Metrics.PrometheusPort)
	}
	hb := observability.StartHeartbeat(ctx, time.Duration(cfg.General.HeartbeatSeconds)*time.Second)
	defer hb.Stop()

	session, err := pipeline.Prepare(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("pipeline preparation failed")
	}

	results, err := pipeline.RunStrategies(cfg, session, cfg.Engine.AlphaAS)
	if err != nil {
		log.Fatal().Err(err).Msg("strategy runs failed")
	}

	report.WriteComparison(os.Stdout, "STRATEGY COMPARISON", pipeline.Columns(results))
	log.Info().Msg("pipeline complete")
}

func applyLogConfig(cfg *config.Config) {
	if level, err := zerolog.ParseLevel(cfg.General.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	if cfg.General.LogFormat == "text" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
