package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

// ResultService is the boundary for the external authoritative update:
// an administrator recording a final score. Recording a result marks the
// match finished and triggers scoring directly instead of waiting for
// the chained task.
type ResultService struct {
	matchRepo match.Repository
	queue     TaskQueue
	cache     CacheInvalidator
	logger    *logging.Logger
	now       func() time.Time
}

func NewResultService(
	matchRepo match.Repository,
	queue TaskQueue,
	cache CacheInvalidator,
	logger *logging.Logger,
) *ResultService {
	if queue == nil {
		queue = NewNoopTaskQueue()
	}
	if cache == nil {
		cache = NewNoopCacheInvalidator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ResultService{
		matchRepo: matchRepo,
		queue:     queue,
		cache:     cache,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *ResultService) RecordResult(ctx context.Context, matchID int64, homeGoals, awayGoals int) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.RecordResult")
	defer span.End()

	if homeGoals < 0 || awayGoals < 0 {
		return fmt.Errorf("%w: goals cannot be negative", ErrInvalidInput)
	}

	m, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return fmt.Errorf("get match for result: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: match=%d", ErrNotFound, matchID)
	}
	if !match.CanTransition(m.State, match.StateFinished) {
		return fmt.Errorf("%w: cannot finish match in state %s", ErrConflict, m.State)
	}

	now := s.now().UTC()
	result := match.Result{HomeGoals: homeGoals, AwayGoals: awayGoals}
	if err := s.matchRepo.RecordResult(ctx, matchID, result, now); err != nil {
		return fmt.Errorf("record result match=%d: %w", matchID, err)
	}

	if err := s.queue.Enqueue(ctx, newScoreMatchTask(matchID, now, true)); err != nil {
		// The chained kickoff+delay task is still pending, so scoring is
		// only delayed, not lost.
		s.logger.WarnContext(ctx, "enqueue immediate scoring failed",
			"match_id", matchID, "error", err)
	}

	bestEffort(ctx, s.logger, "invalidate result caches", func() error {
		s.cache.Invalidate(ctx, CacheKeyMatchPredictionCheck(matchID))
		return nil
	}, "match_id", matchID)

	s.logger.InfoContext(ctx, "match result recorded",
		"match_id", matchID, "home_goals", homeGoals, "away_goals", awayGoals)
	return nil
}
