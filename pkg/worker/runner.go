// Package worker runs named background workers on fixed intervals with
// graceful shutdown.
package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/rsi-screener/pkg/logger"
)

// Worker is one unit of periodic work
type Worker interface {
	// Name identifies the worker in logs
	Name() string
	// Run executes a single cycle. Errors are logged, not fatal; the
	// schedule continues.
	Run(ctx context.Context) error
}

// PeriodicWorker drives a Worker on a ticker. The first cycle runs
// immediately on Start, not after the first interval.
type PeriodicWorker struct {
	worker   Worker
	interval time.Duration
	done     chan struct{}
}

// NewPeriodicWorker creates a periodic wrapper around a worker
func NewPeriodicWorker(worker Worker, interval time.Duration) *PeriodicWorker {
	return &PeriodicWorker{
		worker:   worker,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start launches the worker loop
func (pw *PeriodicWorker) Start(ctx context.Context) {
	go pw.loop(ctx)
}

// Stop blocks until the in-flight cycle finishes or the timeout expires.
// Cancel the Start context first; Stop only waits.
func (pw *PeriodicWorker) Stop(timeout time.Duration) {
	select {
	case <-pw.done:
		logger.Info("worker stopped",
			zap.String("worker", pw.worker.Name()),
		)
	case <-time.After(timeout):
		logger.Warn("worker did not stop in time",
			zap.String("worker", pw.worker.Name()),
			zap.Duration("timeout", timeout),
		)
	}
}

func (pw *PeriodicWorker) loop(ctx context.Context) {
	defer close(pw.done)

	logger.Info("worker started",
		zap.String("worker", pw.worker.Name()),
		zap.Duration("interval", pw.interval),
	)

	pw.runOnce(ctx)

	ticker := time.NewTicker(pw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pw.runOnce(ctx)
		}
	}
}

func (pw *PeriodicWorker) runOnce(ctx context.Context) {
	start := time.Now()
	if err := pw.worker.Run(ctx); err != nil {
		logger.Error("worker cycle failed",
			zap.String("worker", pw.worker.Name()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
	}
}

// WorkerGroup owns a set of periodic workers sharing one lifecycle
type WorkerGroup struct {
	mu      sync.Mutex
	workers []*PeriodicWorker
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewWorkerGroup creates a group bound to the parent context
func NewWorkerGroup(ctx context.Context) *WorkerGroup {
	ctx, cancel := context.WithCancel(ctx)
	return &WorkerGroup{ctx: ctx, cancel: cancel}
}

// Add registers a worker with its interval. Call before Start.
func (g *WorkerGroup) Add(worker Worker, interval time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.workers = append(g.workers, NewPeriodicWorker(worker, interval))
}

// Start launches every registered worker
func (g *WorkerGroup) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, pw := range g.workers {
		pw.Start(g.ctx)
	}
	logger.Info("worker group started",
		zap.Int("workers", len(g.workers)),
	)
}

// Stop cancels the group context and waits for each worker, giving every
// worker up to timeout individually
func (g *WorkerGroup) Stop(timeout time.Duration) {
	g.cancel()

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, pw := range g.workers {
		pw.Stop(timeout)
	}
	logger.Info("worker group stopped")
}
