package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

type WindowConfig struct {
	// LookAheadHorizon bounds how far ahead ScheduleClosures looks for
	// matches to schedule.
	LookAheadHorizon time.Duration
	// CloseLead is how long before kickoff the window closes.
	CloseLead time.Duration
	// ScoreDelay is the estimated match duration plus buffer between
	// kickoff and the scoring attempt.
	ScoreDelay time.Duration
}

// WindowService guarantees that no prediction can be accepted after the
// deadline and that scoring is eventually attempted after each match.
type WindowService struct {
	matchRepo      match.Repository
	predictionRepo prediction.Repository
	queue          TaskQueue
	notifier       Notifier
	cache          CacheInvalidator
	cfg            WindowConfig
	logger         *logging.Logger
	now            func() time.Time
}

func NewWindowService(
	matchRepo match.Repository,
	predictionRepo prediction.Repository,
	queue TaskQueue,
	notifier Notifier,
	cache CacheInvalidator,
	cfg WindowConfig,
	logger *logging.Logger,
) *WindowService {
	if queue == nil {
		queue = NewNoopTaskQueue()
	}
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	if cache == nil {
		cache = NewNoopCacheInvalidator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.LookAheadHorizon <= 0 {
		cfg.LookAheadHorizon = 7 * 24 * time.Hour
	}
	if cfg.CloseLead <= 0 {
		cfg.CloseLead = 15 * time.Minute
	}
	if cfg.ScoreDelay <= 0 {
		cfg.ScoreDelay = 120 * time.Minute
	}

	return &WindowService{
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		queue:          queue,
		notifier:       notifier,
		cache:          cache,
		cfg:            cfg,
		logger:         logger,
		now:            time.Now,
	}
}

// ScheduleClosures enqueues one close-window task per schedulable match
// and returns the number of newly scheduled closures. Matches that
// already carry a close instant are filtered out by the repository, so
// repeated invocation is a no-op for them.
func (s *WindowService) ScheduleClosures(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WindowService.ScheduleClosures")
	defer span.End()

	now := s.now().UTC()
	matches, err := s.matchRepo.ListSchedulable(ctx, now, s.cfg.LookAheadHorizon)
	if err != nil {
		return 0, fmt.Errorf("list schedulable matches: %w", err)
	}

	scheduled := 0
	for _, m := range matches {
		closeAt := m.KickoffAt.Add(-s.cfg.CloseLead)
		if !closeAt.After(now) {
			s.logger.DebugContext(ctx, "close instant already past, skipping",
				"match_id", m.ID, "kickoff_at", m.KickoffAt)
			continue
		}

		if err := s.matchRepo.RecordCloseSchedule(ctx, m.ID, closeAt); err != nil {
			return scheduled, fmt.Errorf("record close schedule match=%d: %w", m.ID, err)
		}
		if err := s.queue.Enqueue(ctx, newCloseWindowTask(m.ID, closeAt)); err != nil {
			return scheduled, fmt.Errorf("enqueue close-window match=%d: %w", m.ID, err)
		}
		scheduled++
	}

	s.logger.InfoContext(ctx, "closure scheduling pass finished",
		"candidates", len(matches), "scheduled", scheduled)
	return scheduled, nil
}

// CloseWindow is the delayed task body. It closes the window, records
// the actual close instant (even when fired late), invalidates caches,
// best-effort notifies affected users, and chains the scoring task.
// Only the closure write itself may fail the task; every side effect is
// absorbed because closure is the higher-priority guarantee.
func (s *WindowService) CloseWindow(ctx context.Context, matchID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.WindowService.CloseWindow")
	defer span.End()

	m, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return fmt.Errorf("get match for closure: %w", err)
	}
	if !exists {
		s.logger.WarnContext(ctx, "close-window task for unknown match", "match_id", matchID)
		return nil
	}
	if m.State == match.StateCancelled || !m.Active {
		s.logger.InfoContext(ctx, "match retired before closure, skipping", "match_id", matchID)
		return nil
	}

	now := s.now().UTC()
	if m.State == match.StateOpen {
		if err := s.matchRepo.RecordWindowClosed(ctx, m.ID, now); err != nil {
			return fmt.Errorf("record window closed match=%d: %w", m.ID, err)
		}
	}

	userIDs, err := s.predictionRepo.ListUserIDsByMatch(ctx, m.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "list predictors for closure notify failed",
			"match_id", m.ID, "error", err)
		userIDs = nil
	}

	keys := []string{CacheKeyMatchPredictionCheck(m.ID)}
	for _, userID := range userIDs {
		keys = append(keys, CacheKeyUserMatchPrediction(userID, m.ID))
	}
	if m.TournamentID != nil {
		keys = append(keys, CacheKeyTournamentLeaderboard(*m.TournamentID))
	}
	bestEffort(ctx, s.logger, "invalidate closure caches", func() error {
		s.cache.Invalidate(ctx, keys...)
		return nil
	}, "match_id", m.ID)

	if len(userIDs) > 0 {
		bestEffort(ctx, s.logger, "notify predictions closed", func() error {
			return s.notifier.Notify(ctx, Notification{
				UserIDs: userIDs,
				Title:   "Predictions closed",
				Message: fmt.Sprintf("Predictions for %s vs %s are now locked in.", m.HomeTeam, m.AwayTeam),
				Metadata: NotificationMetadata{
					Type:         NotificationTypePredictionsClosed,
					MatchID:      m.ID,
					TournamentID: m.TournamentID,
				},
			})
		}, "match_id", m.ID)
	}

	scoreAt := m.KickoffAt.Add(s.cfg.ScoreDelay)
	if err := s.queue.Enqueue(ctx, newScoreMatchTask(m.ID, scoreAt, true)); err != nil {
		s.logger.WarnContext(ctx, "chain scoring task failed",
			"match_id", m.ID, "score_at", scoreAt, "error", err)
	}

	return nil
}
