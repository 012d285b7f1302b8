package usecase

import (
	"context"
	"strconv"
)

// CacheInvalidator is the explicit invalidation port; business logic
// never talks to a cache library directly.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, keys ...string)
}

type noopCacheInvalidator struct{}

func (noopCacheInvalidator) Invalidate(context.Context, ...string) {}

func NewNoopCacheInvalidator() CacheInvalidator {
	return noopCacheInvalidator{}
}

const CacheKeyGlobalLeaderboard = "leaderboard:global"

func CacheKeyTournamentLeaderboard(tournamentID int64) string {
	return "leaderboard:tournament:" + strconv.FormatInt(tournamentID, 10)
}

func CacheKeyUserPredictions(userID int64) string {
	return "predictions:user:" + strconv.FormatInt(userID, 10)
}

func CacheKeyUserMatchPrediction(userID, matchID int64) string {
	return "prediction:user:" + strconv.FormatInt(userID, 10) + ":match:" + strconv.FormatInt(matchID, 10)
}

func CacheKeyMatchPredictionCheck(matchID int64) string {
	return "match:prediction_check:" + strconv.FormatInt(matchID, 10)
}
