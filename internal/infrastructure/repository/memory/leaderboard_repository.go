package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
)

type tournamentKey struct {
	tournamentID int64
	userID       int64
}

type LeaderboardRepository struct {
	mu         sync.RWMutex
	global     map[int64]leaderboard.Entry
	tournament map[tournamentKey]leaderboard.TournamentEntry
}

func NewLeaderboardRepository() *LeaderboardRepository {
	return &LeaderboardRepository{
		global:     make(map[int64]leaderboard.Entry),
		tournament: make(map[tournamentKey]leaderboard.TournamentEntry),
	}
}

func (r *LeaderboardRepository) UpsertGlobal(_ context.Context, entry leaderboard.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.global[entry.UserID]; ok {
		entry.Rank = existing.Rank
	}
	r.global[entry.UserID] = entry
	return nil
}

func (r *LeaderboardRepository) ListGlobal(_ context.Context) ([]leaderboard.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]leaderboard.Entry, 0, len(r.global))
	for _, entry := range r.global {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *LeaderboardRepository) UpdateGlobalRanks(_ context.Context, entries []leaderboard.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range entries {
		existing, ok := r.global[entry.UserID]
		if !ok {
			continue
		}
		existing.Rank = entry.Rank
		r.global[entry.UserID] = existing
	}
	return nil
}

func (r *LeaderboardRepository) UpsertTournament(_ context.Context, entry leaderboard.TournamentEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := tournamentKey{tournamentID: entry.TournamentID, userID: entry.UserID}
	if existing, ok := r.tournament[key]; ok {
		entry.Rank = existing.Rank
	}
	r.tournament[key] = entry
	return nil
}

func (r *LeaderboardRepository) ListTournament(_ context.Context, tournamentID int64) ([]leaderboard.TournamentEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]leaderboard.TournamentEntry, 0)
	for key, entry := range r.tournament {
		if key.tournamentID == tournamentID {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *LeaderboardRepository) ListTournamentIDs(_ context.Context) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[int64]struct{})
	out := make([]int64, 0)
	for key := range r.tournament {
		if _, ok := seen[key.tournamentID]; ok {
			continue
		}
		seen[key.tournamentID] = struct{}{}
		out = append(out, key.tournamentID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r *LeaderboardRepository) UpdateTournamentRanks(_ context.Context, tournamentID int64, entries []leaderboard.TournamentEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range entries {
		key := tournamentKey{tournamentID: tournamentID, userID: entry.UserID}
		existing, ok := r.tournament[key]
		if !ok {
			continue
		}
		existing.Rank = entry.Rank
		r.tournament[key] = existing
	}
	return nil
}
