package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

// CacheReader is the cache-aside port used by the leaderboard read
// paths; the keys it caches under are the same ones the scoring flow
// invalidates.
type CacheReader interface {
	GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error)
}

// LeaderboardService keeps the per-user summary rows consistent with the
// authoritative prediction ledger. Every recompute is a full overwrite
// from the ledger, so concurrent recomputes for the same user converge.
type LeaderboardService struct {
	predictionRepo  prediction.Repository
	leaderboardRepo leaderboard.Repository
	cache           CacheReader
	logger          *logging.Logger
	now             func() time.Time
}

func NewLeaderboardService(
	predictionRepo prediction.Repository,
	leaderboardRepo leaderboard.Repository,
	cache CacheReader,
	logger *logging.Logger,
) *LeaderboardService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeaderboardService{
		predictionRepo:  predictionRepo,
		leaderboardRepo: leaderboardRepo,
		cache:           cache,
		logger:          logger,
		now:             time.Now,
	}
}

type summaryTotals struct {
	totalPoints  int
	total        int
	exactCount   int
	outcomeCount int
}

func summarize(items []prediction.Prediction) summaryTotals {
	out := summaryTotals{}
	for _, p := range items {
		out.total++
		out.totalPoints += p.Points
		switch {
		case p.Points == prediction.PointsExact:
			out.exactCount++
		case p.Points > 0:
			out.outcomeCount++
		}
	}
	return out
}

func (t summaryTotals) accuracy(decimals int) float64 {
	if t.total == 0 {
		return 0
	}
	correct := t.exactCount + t.outcomeCount
	return roundTo(float64(correct)/float64(t.total)*100, decimals)
}

func roundTo(value float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(value*pow) / pow
}

// RecomputeGlobal rebuilds the user's global row from every settled
// prediction and upserts it. Accuracy is rounded to 2 decimals.
func (s *LeaderboardService) RecomputeGlobal(ctx context.Context, userID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.RecomputeGlobal")
	defer span.End()

	settled, err := s.predictionRepo.ListSettledByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list settled predictions user=%d: %w", userID, err)
	}

	totals := summarize(settled)
	entry := leaderboard.Entry{
		UserID:           userID,
		TotalPoints:      totals.totalPoints,
		TotalPredictions: totals.total,
		ExactCount:       totals.exactCount,
		OutcomeCount:     totals.outcomeCount,
		Accuracy:         totals.accuracy(2),
		UpdatedAt:        s.now().UTC(),
	}
	if err := s.leaderboardRepo.UpsertGlobal(ctx, entry); err != nil {
		return fmt.Errorf("upsert global leaderboard user=%d: %w", userID, err)
	}
	return nil
}

// RecomputeTournament is the same computation restricted to the
// tournament's matches. Accuracy is rounded to 1 decimal here, not 2;
// the precision difference with the global table is part of the contract.
func (s *LeaderboardService) RecomputeTournament(ctx context.Context, tournamentID, userID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.RecomputeTournament")
	defer span.End()

	settled, err := s.predictionRepo.ListSettledByUserAndTournament(ctx, userID, tournamentID)
	if err != nil {
		return fmt.Errorf("list settled tournament predictions user=%d tournament=%d: %w", userID, tournamentID, err)
	}

	totals := summarize(settled)
	entry := leaderboard.TournamentEntry{
		TournamentID:     tournamentID,
		UserID:           userID,
		TotalPoints:      totals.totalPoints,
		TotalPredictions: totals.total,
		ExactCount:       totals.exactCount,
		OutcomeCount:     totals.outcomeCount,
		Accuracy:         totals.accuracy(1),
		UpdatedAt:        s.now().UTC(),
	}
	if err := s.leaderboardRepo.UpsertTournament(ctx, entry); err != nil {
		return fmt.Errorf("upsert tournament leaderboard user=%d tournament=%d: %w", userID, tournamentID, err)
	}
	return nil
}

// RecomputeRanks is the periodic full-leaderboard pass. Ordering is
// total points descending, accuracy descending, then user id ascending,
// which keeps the order total. Returns how many rows were ranked.
func (s *LeaderboardService) RecomputeRanks(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.RecomputeRanks")
	defer span.End()

	entries, err := s.leaderboardRepo.ListGlobal(ctx)
	if err != nil {
		return 0, fmt.Errorf("list global leaderboard for ranks: %w", err)
	}

	sortGlobalEntries(entries)
	for idx := range entries {
		rank := idx + 1
		entries[idx].Rank = &rank
	}
	if err := s.leaderboardRepo.UpdateGlobalRanks(ctx, entries); err != nil {
		return 0, fmt.Errorf("update global ranks: %w", err)
	}
	ranked := len(entries)

	tournamentIDs, err := s.leaderboardRepo.ListTournamentIDs(ctx)
	if err != nil {
		return ranked, fmt.Errorf("list tournaments for ranks: %w", err)
	}
	for _, tournamentID := range tournamentIDs {
		rows, err := s.leaderboardRepo.ListTournament(ctx, tournamentID)
		if err != nil {
			return ranked, fmt.Errorf("list tournament leaderboard tournament=%d: %w", tournamentID, err)
		}
		sortTournamentEntries(rows)
		for idx := range rows {
			rank := idx + 1
			rows[idx].Rank = &rank
		}
		if err := s.leaderboardRepo.UpdateTournamentRanks(ctx, tournamentID, rows); err != nil {
			return ranked, fmt.Errorf("update tournament ranks tournament=%d: %w", tournamentID, err)
		}
		ranked += len(rows)
	}

	s.logger.InfoContext(ctx, "rank recompute pass finished",
		"rows", ranked, "tournaments", len(tournamentIDs))
	return ranked, nil
}

func sortGlobalEntries(entries []leaderboard.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		if entries[i].Accuracy != entries[j].Accuracy {
			return entries[i].Accuracy > entries[j].Accuracy
		}
		return entries[i].UserID < entries[j].UserID
	})
}

func sortTournamentEntries(entries []leaderboard.TournamentEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		if entries[i].Accuracy != entries[j].Accuracy {
			return entries[i].Accuracy > entries[j].Accuracy
		}
		return entries[i].UserID < entries[j].UserID
	})
}

// GetGlobalLeaderboard serves the ranked global table through the cache.
func (s *LeaderboardService) GetGlobalLeaderboard(ctx context.Context) ([]leaderboard.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.GetGlobalLeaderboard")
	defer span.End()

	load := func(ctx context.Context) (any, error) {
		entries, err := s.leaderboardRepo.ListGlobal(ctx)
		if err != nil {
			return nil, fmt.Errorf("list global leaderboard: %w", err)
		}
		sortGlobalEntries(entries)
		return entries, nil
	}

	if s.cache == nil {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]leaderboard.Entry), nil
	}

	value, err := s.cache.GetOrLoad(ctx, CacheKeyGlobalLeaderboard, load)
	if err != nil {
		return nil, err
	}
	return value.([]leaderboard.Entry), nil
}

// GetTournamentLeaderboard serves a tournament table through the cache.
func (s *LeaderboardService) GetTournamentLeaderboard(ctx context.Context, tournamentID int64) ([]leaderboard.TournamentEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.GetTournamentLeaderboard")
	defer span.End()

	if tournamentID <= 0 {
		return nil, fmt.Errorf("%w: tournament id must be positive", ErrInvalidInput)
	}

	load := func(ctx context.Context) (any, error) {
		rows, err := s.leaderboardRepo.ListTournament(ctx, tournamentID)
		if err != nil {
			return nil, fmt.Errorf("list tournament leaderboard tournament=%d: %w", tournamentID, err)
		}
		sortTournamentEntries(rows)
		return rows, nil
	}

	if s.cache == nil {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]leaderboard.TournamentEntry), nil
	}

	value, err := s.cache.GetOrLoad(ctx, CacheKeyTournamentLeaderboard(tournamentID), load)
	if err != nil {
		return nil, err
	}
	return value.([]leaderboard.TournamentEntry), nil
}
