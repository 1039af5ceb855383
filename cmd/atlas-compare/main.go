// atlas-compare sweeps the adverse-selection coefficient over one session
// and prints a strategy comparison per alpha. Each strategy in each sweep
// step gets a fresh, identically seeded engine so random draws are
// independent but reproducible across invocations.
package main

import (
	"context"
	"flag"
	"fmt"
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

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMicro
	log.Logger = zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "atlas-compare").
		Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.General.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	if cfg.General.LogFormat == "text" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Warn().Str("signal", sig.String()).Msg("shutdown signal received")
		cancel()
	}()

	hb := observability.StartHeartbeat(ctx, time.Duration(cfg.General.HeartbeatSeconds)*time.Second)
	defer hb.Stop()

	session, err := pipeline.Prepare(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("pipeline preparation failed")
	}

	for _, alpha := range cfg.Sweep.Alphas {
		log.Info().Float64("alpha_as", alpha).Msg("sweep step")

		results, err := pipeline.RunStrategies(cfg, session, alpha)
		if err != nil {
			log.Fatal().Err(err).Float64("alpha_as", alpha).Msg("strategy runs failed")
		}

		title := fmt.Sprintf("STRATEGY COMPARISON  |  seed=%d  |  alpha_as=%v", cfg.Engine.Seed, alpha)
		report.WriteComparison(os.Stdout, title, pipeline.Columns(results))
	}

	log.Info().Int("sweep_steps", len(cfg.Sweep.Alphas)).Msg("sweep complete")
}
