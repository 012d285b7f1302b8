package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

type ScoringConfig struct {
	// RetryDelay is the fixed backoff used when scoring fires before a
	// result has been recorded.
	RetryDelay time.Duration
}

// ScoringService converts a finished match's result into point awards,
// exactly once per prediction.
type ScoringService struct {
	matchRepo      match.Repository
	predictionRepo prediction.Repository
	aggregator     *LeaderboardService
	queue          TaskQueue
	notifier       Notifier
	cache          CacheInvalidator
	cfg            ScoringConfig
	logger         *logging.Logger
	now            func() time.Time
}

func NewScoringService(
	matchRepo match.Repository,
	predictionRepo prediction.Repository,
	aggregator *LeaderboardService,
	queue TaskQueue,
	notifier Notifier,
	cache CacheInvalidator,
	cfg ScoringConfig,
	logger *logging.Logger,
) *ScoringService {
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
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 30 * time.Minute
	}

	return &ScoringService{
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		aggregator:     aggregator,
		queue:          queue,
		notifier:       notifier,
		cache:          cache,
		cfg:            cfg,
		logger:         logger,
		now:            time.Now,
	}
}

// ScoreMatch settles every outstanding prediction on the match inside
// one transaction, then recomputes the touched leaderboards, notifies
// the affected users (best effort) and invalidates caches.
//
// A missing result is not an error: the task re-enqueues itself with a
// fixed delay and returns, covering the case where scoring was scheduled
// optimistically before an admin recorded the score.
func (s *ScoringService) ScoreMatch(ctx context.Context, matchID int64, notifyUsers bool) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ScoreMatch")
	defer span.End()

	m, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return fmt.Errorf("get match for scoring: %w", err)
	}
	if !exists {
		s.logger.WarnContext(ctx, "score task for unknown match", "match_id", matchID)
		return nil
	}
	if m.State == match.StateCancelled || !m.Active {
		s.logger.InfoContext(ctx, "match retired before scoring, skipping", "match_id", matchID)
		return nil
	}
	if !m.Scoreable() {
		retryAt := s.now().UTC().Add(s.cfg.RetryDelay)
		if err := s.queue.Enqueue(ctx, newScoreMatchRetryTask(m.ID, retryAt, notifyUsers)); err != nil {
			return fmt.Errorf("reschedule scoring match=%d: %w", m.ID, err)
		}
		s.logger.InfoContext(ctx, "result not recorded yet, scoring deferred",
			"match_id", m.ID, "retry_at", retryAt)
		return nil
	}

	// Only settled=false rows are fetched; rerunning against an already
	// settled match finds nothing and is a no-op.
	outstanding, err := s.predictionRepo.ListUnsettledByMatch(ctx, m.ID)
	if err != nil {
		return fmt.Errorf("list unsettled predictions match=%d: %w", m.ID, err)
	}
	if len(outstanding) == 0 {
		s.logger.DebugContext(ctx, "no outstanding predictions", "match_id", m.ID)
		return nil
	}

	result := *m.Result
	awards := make([]prediction.Award, 0, len(outstanding))
	pointsByUser := make(map[int64]int, len(outstanding))
	userIDs := make([]int64, 0, len(outstanding))
	for _, p := range outstanding {
		points := prediction.Score(p, result)
		awards = append(awards, prediction.Award{
			PredictionID: p.ID,
			UserID:       p.UserID,
			Points:       points,
		})
		if _, seen := pointsByUser[p.UserID]; !seen {
			userIDs = append(userIDs, p.UserID)
		}
		pointsByUser[p.UserID] += points
	}

	if err := s.predictionRepo.SettleMatch(ctx, m.ID, awards); err != nil {
		s.logger.ErrorContext(ctx, "settlement transaction failed",
			"match_id", m.ID, "predictions", len(awards), "error", err)
		return fmt.Errorf("settle match=%d: %w", m.ID, err)
	}

	s.recomputeAffected(ctx, m, userIDs)

	if notifyUsers {
		for _, userID := range userIDs {
			userID := userID
			earned := pointsByUser[userID]
			bestEffort(ctx, s.logger, "notify prediction result", func() error {
				return s.notifier.Notify(ctx, Notification{
					UserIDs: []int64{userID},
					Title:   "Match result",
					Message: fmt.Sprintf("%s %d - %d %s: you earned %d point(s).",
						m.HomeTeam, result.HomeGoals, result.AwayGoals, m.AwayTeam, earned),
					Metadata: NotificationMetadata{
						Type:         NotificationTypePredictionResult,
						MatchID:      m.ID,
						TournamentID: m.TournamentID,
						PointsEarned: &earned,
					},
				})
			}, "match_id", m.ID, "user_id", userID)
		}
	}

	keys := []string{CacheKeyGlobalLeaderboard}
	for _, userID := range userIDs {
		keys = append(keys,
			CacheKeyUserPredictions(userID),
			CacheKeyUserMatchPrediction(userID, m.ID),
		)
	}
	if m.TournamentID != nil {
		keys = append(keys, CacheKeyTournamentLeaderboard(*m.TournamentID))
	}
	bestEffort(ctx, s.logger, "invalidate scoring caches", func() error {
		s.cache.Invalidate(ctx, keys...)
		return nil
	}, "match_id", m.ID)

	s.logger.InfoContext(ctx, "match settled",
		"match_id", m.ID, "predictions", len(awards), "users", len(userIDs))
	return nil
}

// recomputeAffected refreshes the summary rows for every user touched by
// the settlement. The leaderboard is derived state fully recomputable
// from the ledger, so a failed recompute is logged and converges on the
// next settlement or rank pass instead of failing the already-committed
// settlement.
func (s *ScoringService) recomputeAffected(ctx context.Context, m match.Match, userIDs []int64) {
	if s.aggregator == nil {
		return
	}

	var wg conc.WaitGroup
	for _, userID := range userIDs {
		userID := userID
		wg.Go(func() {
			if err := s.aggregator.RecomputeGlobal(ctx, userID); err != nil {
				s.logger.WarnContext(ctx, "recompute global leaderboard failed",
					"user_id", userID, "error", err)
			}
			if m.TournamentID == nil {
				return
			}
			if err := s.aggregator.RecomputeTournament(ctx, *m.TournamentID, userID); err != nil {
				s.logger.WarnContext(ctx, "recompute tournament leaderboard failed",
					"tournament_id", *m.TournamentID, "user_id", userID, "error", err)
			}
		})
	}
	wg.Wait()
}
