package observability

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Heartbeat logs a liveness line at a fixed interval while a long pipeline
// runs. It is operational tooling only: it shares no state with the
// simulation and stopping it has no effect on results.
type Heartbeat struct {
	interval time.Duration
	start    time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

// StartHeartbeat launches the heartbeat goroutine. It stops when ctx is
// cancelled or Stop is called.
func StartHeartbeat(ctx context.Context, interval time.Duration) *Heartbeat {
	if interval <= 0 {
		interval = time.Minute
	}
	ctx, cancel := context.WithCancel(ctx)
	h := &Heartbeat{
		interval: interval,
		start:    time.Now(),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go h.loop(ctx)
	return h
}

// Stop terminates the heartbeat and waits for the goroutine to exit.
func (h *Heartbeat) Stop() {
	h.cancel()
	<-h.done
}

func (h *Heartbeat) loop(ctx context.Context) {
	defer close(h.done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			elapsed := time.Since(h.start).Round(time.Second)
			log.Info().
				Dur("elapsed", elapsed).
				Msg("still running")
		}
	}
}
