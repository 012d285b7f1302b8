package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

type SubmitPredictionInput struct {
	UserID    int64
	MatchID   int64
	HomeGoals int
	AwayGoals int
	Wager     *int
}

// PredictionService accepts user predictions while the match window is
// open. The outcome is always derived server-side from the submitted
// scores; a client-supplied outcome string is never trusted.
type PredictionService struct {
	matchRepo      match.Repository
	predictionRepo prediction.Repository
	cache          CacheInvalidator
	logger         *logging.Logger
	now            func() time.Time
}

func NewPredictionService(
	matchRepo match.Repository,
	predictionRepo prediction.Repository,
	cache CacheInvalidator,
	logger *logging.Logger,
) *PredictionService {
	if cache == nil {
		cache = NewNoopCacheInvalidator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PredictionService{
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		cache:          cache,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *PredictionService) SubmitPrediction(ctx context.Context, input SubmitPredictionInput) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.SubmitPrediction")
	defer span.End()

	if input.UserID <= 0 {
		return prediction.Prediction{}, fmt.Errorf("%w: user id must be positive", ErrInvalidInput)
	}
	if input.HomeGoals < 0 || input.AwayGoals < 0 {
		return prediction.Prediction{}, fmt.Errorf("%w: predicted scores cannot be negative", ErrInvalidInput)
	}
	if input.Wager != nil && *input.Wager < 0 {
		return prediction.Prediction{}, fmt.Errorf("%w: wager cannot be negative", ErrInvalidInput)
	}

	m, exists, err := s.matchRepo.GetByID(ctx, input.MatchID)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get match for prediction: %w", err)
	}
	if !exists {
		return prediction.Prediction{}, fmt.Errorf("%w: match=%d", ErrNotFound, input.MatchID)
	}

	now := s.now().UTC()
	if !m.WindowOpen(now) {
		return prediction.Prediction{}, fmt.Errorf("%w: match=%d", ErrWindowClosed, input.MatchID)
	}
	if input.Wager != nil && m.TournamentID == nil {
		return prediction.Prediction{}, fmt.Errorf("%w: wagers are tournament-only", ErrInvalidInput)
	}

	created, err := s.predictionRepo.Create(ctx, prediction.Prediction{
		UserID:      input.UserID,
		MatchID:     input.MatchID,
		HomeGoals:   input.HomeGoals,
		AwayGoals:   input.AwayGoals,
		Outcome:     match.OutcomeOf(input.HomeGoals, input.AwayGoals),
		Wager:       input.Wager,
		SubmittedAt: now,
	})
	if err != nil {
		if errors.Is(err, prediction.ErrAlreadyExists) {
			return prediction.Prediction{}, fmt.Errorf("%w: prediction for user=%d match=%d", ErrConflict, input.UserID, input.MatchID)
		}
		return prediction.Prediction{}, fmt.Errorf("create prediction: %w", err)
	}

	bestEffort(ctx, s.logger, "invalidate prediction caches", func() error {
		s.cache.Invalidate(ctx,
			CacheKeyUserPredictions(input.UserID),
			CacheKeyUserMatchPrediction(input.UserID, input.MatchID),
			CacheKeyMatchPredictionCheck(input.MatchID),
		)
		return nil
	}, "match_id", input.MatchID, "user_id", input.UserID)

	return created, nil
}

// GetUserPrediction reads back a user's prediction for one match.
func (s *PredictionService) GetUserPrediction(ctx context.Context, userID, matchID int64) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.GetUserPrediction")
	defer span.End()

	p, exists, err := s.predictionRepo.GetByUserAndMatch(ctx, userID, matchID)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get prediction: %w", err)
	}
	if !exists {
		return prediction.Prediction{}, fmt.Errorf("%w: prediction user=%d match=%d", ErrNotFound, userID, matchID)
	}
	return p, nil
}
