package seats

import (
	"context"
	"sync"
	"time"

	"ticketcore/pkg/logger"
)

// JobProcessor runs the hold-expiry sweep and the lease renewal in the background
type JobProcessor struct {
	ledger   *Ledger
	config   *JobConfig
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// JobConfig contains configuration for background jobs
type JobConfig struct {
	SweepInterval time.Duration
}

// DefaultJobConfig returns default job configuration
func DefaultJobConfig() *JobConfig {
	return &JobConfig{
		SweepInterval: 5 * time.Second,
	}
}

func NewJobProcessor(ledger *Ledger, config *JobConfig) *JobProcessor {
	if config == nil || config.SweepInterval <= 0 {
		config = DefaultJobConfig()
	}

	return &JobProcessor{
		ledger: ledger,
		config: config,
		done:   make(chan struct{}),
	}
}

// Start starts the sweeper
func (jp *JobProcessor) Start(ctx context.Context) {
	jp.wg.Add(1)
	go jp.startSweeper(ctx)
	logger.GetDefault().Info("seat ledger sweeper started", "interval", jp.config.SweepInterval.String())
}

// Stop stops the sweeper and waits for the current pass to finish
func (jp *JobProcessor) Stop() {
	jp.stopOnce.Do(func() { close(jp.done) })
	jp.wg.Wait()
	logger.GetDefault().Info("seat ledger sweeper stopped")
}

func (jp *JobProcessor) startSweeper(ctx context.Context) {
	defer jp.wg.Done()

	ticker := time.NewTicker(jp.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			jp.runOnce(ctx)
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (jp *JobProcessor) runOnce(ctx context.Context) {
	if expired := jp.ledger.Sweep(jp.ledger.Now()); expired > 0 {
		logger.GetDefault().Info("expired holds reclaimed", "holds", expired)
	}

	renewCtx, cancel := context.WithTimeout(ctx, jp.config.SweepInterval)
	defer cancel()
	jp.ledger.RenewLeases(renewCtx)
}
