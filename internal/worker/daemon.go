package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wallet-ledger/internal/logging"
	"github.com/wallet-ledger/internal/models"
)

// Daemon periodically refreshes every active wallet. It is the process
// behind cmd/worker; the API server triggers the same orchestrator on
// demand.
type Daemon struct {
	orch     *Orchestrator
	interval time.Duration
	logger   *logging.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewDaemon creates a sync daemon with the given poll interval.
func NewDaemon(orch *Orchestrator, interval time.Duration, logger *logging.Logger) *Daemon {
	return &Daemon{
		orch:     orch,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the poll loop. It errors if the daemon already runs; a
// stopped daemon may be started again.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("sync daemon is already running")
	}
	d.running = true
	// Fresh channels per run, so a restart never touches the closed pair
	// from the previous loop.
	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})
	stopCh, doneCh := d.stopCh, d.doneCh
	d.mu.Unlock()

	d.logger.WithField("interval", d.interval.String()).Info("sync daemon starting")
	go d.pollLoop(ctx, stopCh, doneCh)
	return nil
}

// Stop signals the loop to exit and waits for the in-flight pass to end.
func (d *Daemon) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	stopCh, doneCh := d.stopCh, d.doneCh
	d.mu.Unlock()

	close(stopCh)
	<-doneCh
}

func (d *Daemon) pollLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	// First pass immediately, then on the ticker.
	d.runPass(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.runPass(ctx)
		case <-stopCh:
			d.logger.Info("sync daemon stopped")
			return
		case <-ctx.Done():
			d.logger.Info("sync daemon context cancelled")
			return
		}
	}
}

func (d *Daemon) runPass(ctx context.Context) {
	start := time.Now()
	results, err := d.orch.SyncAll(ctx)
	if err != nil {
		d.logger.WithError(err).Error("sync-all pass failed to start")
		return
	}

	var synced, skipped, failed int
	for _, r := range results {
		switch r.Outcome {
		case models.OutcomeSynced:
			synced++
		case models.OutcomeSkipped:
			skipped++
		default:
			failed++
		}
	}

	d.logger.WithFields(map[string]interface{}{
		"wallets":  len(results),
		"synced":   synced,
		"skipped":  skipped,
		"failed":   failed,
		"duration": time.Since(start).String(),
	}).Info("sync-all pass complete")
}
