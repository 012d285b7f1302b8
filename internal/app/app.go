package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/prediction-league/internal/config"
	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/taskqueue"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/notification"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/taskworker"
	"github.com/riskibarqy/prediction-league/internal/interfaces/httpapi"
	"github.com/riskibarqy/prediction-league/internal/platform/cache"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/resilience"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

// App owns the wired service graph: the HTTP server, the task worker
// and the periodic closure scheduler.
type App struct {
	cfg    config.Config
	logger *logging.Logger

	httpServer *http.Server
	worker     *taskworker.Worker
	windows    *usecase.WindowService
	db         *sqlx.DB
}

type repositories struct {
	matches      match.Repository
	predictions  prediction.Repository
	leaderboards leaderboard.Repository
	tasks        taskqueue.Repository
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, repos, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, err
	}

	var store *cache.Store
	cacheInvalidator := usecase.NewNoopCacheInvalidator()
	var cacheReader usecase.CacheReader
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.CacheTTL)
		cacheInvalidator = store
		cacheReader = store
	}

	notifier, err := buildNotifier(cfg, logger)
	if err != nil {
		return nil, err
	}

	leaderboardSvc := usecase.NewLeaderboardService(repos.predictions, repos.leaderboards, cacheReader, logger)
	predictionSvc := usecase.NewPredictionService(repos.matches, repos.predictions, cacheInvalidator, logger)
	windowSvc := usecase.NewWindowService(
		repos.matches,
		repos.predictions,
		repos.tasks,
		notifier,
		cacheInvalidator,
		usecase.WindowConfig{
			LookAheadHorizon: cfg.WindowLookAheadHorizon,
			CloseLead:        cfg.WindowCloseLead,
			ScoreDelay:       cfg.WindowScoreDelay,
		},
		logger,
	)
	scoringSvc := usecase.NewScoringService(
		repos.matches,
		repos.predictions,
		leaderboardSvc,
		repos.tasks,
		notifier,
		cacheInvalidator,
		usecase.ScoringConfig{RetryDelay: cfg.ScoringRetryDelay},
		logger,
	)
	resultSvc := usecase.NewResultService(repos.matches, repos.tasks, cacheInvalidator, logger)

	var worker *taskworker.Worker
	if cfg.WorkerEnabled {
		dispatcher := taskworker.NewDispatcher(windowSvc, scoringSvc)
		worker, err = taskworker.NewWorker(repos.tasks, dispatcher, taskworker.Config{
			PollInterval: cfg.WorkerPollInterval,
			BatchSize:    cfg.WorkerBatchSize,
			PoolSize:     cfg.WorkerPoolSize,
			MaxAttempts:  cfg.WorkerMaxAttempts,
			RetryBackoff: cfg.WorkerRetryBackoff,
		}, logger)
		if err != nil {
			return nil, err
		}
	}

	handler := httpapi.NewHandler(predictionSvc, leaderboardSvc, resultSvc, windowSvc, scoringSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		httpServer: server,
		worker:     worker,
		windows:    windowSvc,
		db:         db,
	}, nil
}

func buildRepositories(cfg config.Config, logger *logging.Logger) (*sqlx.DB, repositories, error) {
	if strings.TrimSpace(cfg.DBURL) == "" {
		logger.Info("database url empty, using in-memory repositories")
		matchRepo := memory.NewMatchRepository()
		return nil, repositories{
			matches:      matchRepo,
			predictions:  memory.NewPredictionRepository(matchRepo),
			leaderboards: memory.NewLeaderboardRepository(),
			tasks:        memory.NewTaskRepository(),
		}, nil
	}

	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Connect("postgres", dbURL,
		otelsql.WithDBName(dbNameFromURL(dbURL)),
	)
	if err != nil {
		return nil, repositories{}, fmt.Errorf("connect postgres: %w", err)
	}

	return db, repositories{
		matches:      postgres.NewMatchRepository(db),
		predictions:  postgres.NewPredictionRepository(db),
		leaderboards: postgres.NewLeaderboardRepository(db),
		tasks:        postgres.NewTaskRepository(db),
	}, nil
}

func buildNotifier(cfg config.Config, logger *logging.Logger) (usecase.Notifier, error) {
	if !cfg.PushEnabled {
		logger.Info("push notifications disabled", "reason", "PUSH_ENABLED=false")
		return usecase.NewNoopNotifier(), nil
	}

	return notification.NewPushClient(notification.PushClientConfig{
		BaseURL: cfg.PushBaseURL,
		Path:    cfg.PushPath,
		Token:   cfg.PushToken,
		Timeout: cfg.PushTimeout,
		Retries: cfg.PushRetries,
		Breaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.PushCircuitEnabled,
			FailureThreshold: cfg.PushCircuitFailureCount,
			OpenTimeout:      cfg.PushCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.PushCircuitHalfOpenMaxReq,
		},
	}, logger)
}

// Run starts the HTTP server, the task worker and the periodic closure
// scheduler, then blocks until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "addr", a.cfg.HTTPAddr)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if a.worker != nil {
		go func() {
			if err := a.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("task worker stopped", "error", err)
			}
		}()
	}

	go a.runScheduleLoop(ctx)

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// runScheduleLoop periodically enqueues close-window tasks for upcoming
// matches. Running it alongside the internal job endpoint is safe: the
// close-schedule column and dedup keys make repeats no-ops.
func (a *App) runScheduleLoop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.ScheduleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			scheduled, err := a.windows.ScheduleClosures(ctx)
			if err != nil {
				a.logger.ErrorContext(ctx, "schedule closures failed", "error", err)
				continue
			}
			if scheduled > 0 {
				a.logger.InfoContext(ctx, "scheduled window closures", "count", scheduled)
			}
		}
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close db: %w", err))
		}
	}
	return errors.Join(errs...)
}
