// Package observability carries the pipeline's operational tooling: the
// liveness heartbeat and Prometheus metrics. Nothing here feeds back into
// simulation results.
//
// Exposed metrics:
//   - atlas_runs_total{strategy}    – completed simulation runs
//   - atlas_bars_processed_total    – bars pushed through the engine
//   - atlas_fills_total{strategy}   – accepted fills across runs
//   - atlas_last_run_seconds        – wall time of the most recent run
package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	mtxRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_runs_total",
			Help: "Completed simulation runs",
		},
		[]string{"strategy"},
	)

	mtxBars = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "atlas_bars_processed_total",
			Help: "Bars pushed through the simulation engine",
		},
	)

	mtxFills = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_fills_total",
			Help: "Accepted fills across simulation runs",
		},
		[]string{"strategy"},
	)

	mtxLastRunSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "atlas_last_run_seconds",
			Help: "Wall time of the most recent simulation run",
		},
	)
)

func init() {
	prometheus.MustRegister(mtxRuns, mtxBars, mtxFills, mtxLastRunSeconds)
}

// RecordRun updates the run counters after a simulation completes.
func RecordRun(strategy string, bars int, fills int64, wall time.Duration) {
	mtxRuns.WithLabelValues(strategy).Inc()
	mtxBars.Add(float64(bars))
	mtxFills.WithLabelValues(strategy).Add(float64(fills))
	mtxLastRunSeconds.Set(wall.Seconds())
}

// ServeMetrics exposes /metrics on the given port until ctx is cancelled.
// Serve errors are logged, not fatal: metrics are best-effort.
func ServeMetrics(ctx context.Context, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		log.Info().Int("port", port).Msg("metrics endpoint listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn().Err(err).Msg("metrics endpoint failed")
		}
	}()
}
