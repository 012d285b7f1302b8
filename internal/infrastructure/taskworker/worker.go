package taskworker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/prediction-league/internal/domain/taskqueue"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

type Config struct {
	PollInterval time.Duration
	BatchSize    int
	PoolSize     int
	MaxAttempts  int
	RetryBackoff time.Duration
}

func DefaultConfig() Config {
	return Config{
		PollInterval: 5 * time.Second,
		BatchSize:    20,
		PoolSize:     8,
		MaxAttempts:  5,
		RetryBackoff: time.Minute,
	}
}

func normalizeConfig(cfg Config) Config {
	def := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = def.PoolSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = def.RetryBackoff
	}
	return cfg
}

// Worker polls the task table for due rows and executes them on a shared
// goroutine pool. A task that keeps failing is retried with a growing
// delay until the attempt cap, then parked as failed.
type Worker struct {
	tasks      taskqueue.Repository
	dispatcher *Dispatcher
	cfg        Config
	logger     *logging.Logger
	pool       *ants.Pool
	now        func() time.Time
}

func NewWorker(tasks taskqueue.Repository, dispatcher *Dispatcher, cfg Config, logger *logging.Logger) (*Worker, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	cfg = normalizeConfig(cfg)

	pool, err := ants.NewPool(cfg.PoolSize, ants.WithNonblocking(false))
	if err != nil {
		return nil, fmt.Errorf("create task worker pool: %w", err)
	}

	return &Worker{
		tasks:      tasks,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		now:        time.Now,
	}, nil
}

// Run blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()
	defer w.pool.Release()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil {
				w.logger.ErrorContext(ctx, "task worker poll failed", "error", err)
			}
		}
	}
}

// RunOnce claims one batch of due tasks and waits for them to finish.
func (w *Worker) RunOnce(ctx context.Context) error {
	claimed, err := w.tasks.ClaimDue(ctx, w.now().UTC(), w.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("claim due tasks: %w", err)
	}
	if len(claimed) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	for _, task := range claimed {
		task := task
		wg.Add(1)
		if err := w.pool.Submit(func() {
			defer wg.Done()
			w.execute(ctx, task)
		}); err != nil {
			// Pool rejected the submission; run inline rather than losing
			// the claimed row.
			w.execute(ctx, task)
			wg.Done()
		}
	}
	wg.Wait()
	return nil
}

func (w *Worker) execute(ctx context.Context, task taskqueue.Task) {
	err := w.dispatcher.Dispatch(ctx, task)
	now := w.now().UTC()

	if err == nil {
		if markErr := w.tasks.MarkCompleted(ctx, task.ID, now); markErr != nil {
			w.logger.WarnContext(ctx, "mark task completed failed",
				"task_id", task.ID, "kind", string(task.Kind), "error", markErr)
		}
		return
	}

	var retryAt *time.Time
	if task.Attempts < w.cfg.MaxAttempts {
		at := now.Add(w.cfg.RetryBackoff * time.Duration(task.Attempts))
		retryAt = &at
	}

	w.logger.WarnContext(ctx, "task execution failed",
		"task_id", task.ID,
		"kind", string(task.Kind),
		"match_id", task.MatchID,
		"attempts", task.Attempts,
		"will_retry", retryAt != nil,
		"error", err)

	if markErr := w.tasks.MarkFailed(ctx, task.ID, now, err.Error(), retryAt); markErr != nil {
		w.logger.ErrorContext(ctx, "mark task failed errored",
			"task_id", task.ID, "error", markErr)
	}
}
