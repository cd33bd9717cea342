// Package runner schedules queued runs. Workers default to one because a
// storefront cart is a single-session state machine; the per-merchant lease
// keeps even multi-worker deployments from driving one storefront twice at
// the same time.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/asaply/orderflow/internal/engine"
	"github.com/asaply/orderflow/internal/lease"
	"github.com/asaply/orderflow/internal/merchant"
	"github.com/asaply/orderflow/internal/plan"
	"github.com/asaply/orderflow/internal/run"
)

var ErrQueueFull = errors.New("run queue is full")

// Executor performs one plan execution end to end and returns the engine
// outcome plus an optional screenshot artifact URL.
type Executor interface {
	ExecuteRun(ctx context.Context, runID string, cfg *merchant.Config, p plan.Plan) (engine.Outcome, string, error)
}

// MerchantSource resolves a merchant id to its stored config.
type MerchantSource interface {
	Get(ctx context.Context, id string) (*merchant.Config, error)
}

type Config struct {
	QueueSize        int
	Workers          int
	LeaseTTL         time.Duration
	LeaseWaitTimeout time.Duration
	PollInterval     time.Duration
}

type Runner struct {
	runs      run.Service
	merchants MerchantSource
	executor  Executor
	leases    lease.Manager
	cfg       Config
	logger    *log.Logger

	queue   chan string
	startWG sync.WaitGroup
}

func New(runs run.Service, merchants MerchantSource, executor Executor, leases lease.Manager, cfg Config, logger *log.Logger) *Runner {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = 5 * time.Minute
	}
	if cfg.LeaseWaitTimeout <= 0 {
		cfg.LeaseWaitTimeout = 2 * time.Minute
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 250 * time.Millisecond
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Runner{
		runs:      runs,
		merchants: merchants,
		executor:  executor,
		leases:    leases,
		cfg:       cfg,
		logger:    logger,
		queue:     make(chan string, cfg.QueueSize),
	}
}

func (r *Runner) Start(ctx context.Context) {
	for workerID := 1; workerID <= r.cfg.Workers; workerID++ {
		id := workerID
		r.startWG.Add(1)
		go func() {
			defer r.startWG.Done()
			r.worker(ctx, id)
		}()
	}
}

// Wait blocks until all workers have stopped. Call after the Start context
// is cancelled.
func (r *Runner) Wait() {
	r.startWG.Wait()
}

func (r *Runner) Enqueue(ctx context.Context, runID string) error {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return errors.New("run id is required")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case r.queue <- runID:
		return nil
	default:
		return ErrQueueFull
	}
}

func (r *Runner) worker(ctx context.Context, workerID int) {
	r.logger.Printf("runner worker %d started", workerID)
	for {
		select {
		case <-ctx.Done():
			r.logger.Printf("runner worker %d stopping", workerID)
			return
		case runID := <-r.queue:
			r.processRun(ctx, workerID, runID)
		}
	}
}

func (r *Runner) processRun(ctx context.Context, workerID int, runID string) {
	record, err := r.runs.Get(ctx, runID)
	if err != nil {
		r.logger.Printf("worker %d unable to load run %s: %v", workerID, runID, err)
		return
	}
	if record.Status != run.StatusQueued {
		return
	}

	cfg, err := r.merchants.Get(ctx, record.MerchantID)
	if err != nil {
		r.failRun(ctx, runID, nil, fmt.Errorf("load merchant %s: %w", record.MerchantID, err))
		return
	}

	if err := r.acquireMerchantLease(ctx, record.MerchantID, runID); err != nil {
		r.failRun(ctx, runID, nil, fmt.Errorf("merchant busy: %w", err))
		return
	}
	defer func() {
		_ = r.leases.Release(context.Background(), record.MerchantID, runID)
	}()

	started, err := r.runs.Start(ctx, runID, time.Now().UTC())
	if err != nil {
		r.failRun(ctx, runID, nil, fmt.Errorf("start run: %w", err))
		return
	}

	outcome, screenshotURL, err := r.executor.ExecuteRun(ctx, started.ID, cfg, started.Plan)
	if err != nil {
		r.failRun(ctx, runID, outcome.Log, err)
		return
	}

	if _, err := r.runs.Complete(ctx, run.CompleteInput{
		RunID:         started.ID,
		Completed:     time.Now().UTC(),
		Outcome:       outcome,
		ScreenshotURL: screenshotURL,
	}); err != nil {
		r.failRun(ctx, runID, outcome.Log, fmt.Errorf("complete run: %w", err))
	}
}

// acquireMerchantLease polls until the merchant lease frees up or the wait
// budget is spent. Runs against distinct merchants never contend.
func (r *Runner) acquireMerchantLease(ctx context.Context, merchantID, runID string) error {
	waitCtx, cancel := context.WithTimeout(ctx, r.cfg.LeaseWaitTimeout)
	defer cancel()

	for {
		acquired, err := r.leases.Acquire(waitCtx, merchantID, runID, r.cfg.LeaseTTL)
		if err != nil {
			return err
		}
		if acquired {
			return nil
		}

		select {
		case <-waitCtx.Done():
			return waitCtx.Err()
		case <-time.After(r.cfg.PollInterval):
		}
	}
}

func (r *Runner) failRun(ctx context.Context, runID string, logLines []string, err error) {
	r.logger.Printf("run %s failed: %v", runID, err)
	if _, failErr := r.runs.Fail(ctx, run.FailInput{
		RunID:     runID,
		Completed: time.Now().UTC(),
		Error:     err.Error(),
		Log:       logLines,
	}); failErr != nil {
		r.logger.Printf("run %s fail-state update failed: %v", runID, failErr)
	}
}
