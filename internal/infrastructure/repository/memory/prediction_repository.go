package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
)

// PredictionRepository is an in-memory prediction ledger. It needs the
// match repository to resolve tournament membership for the scoped
// listing.
type PredictionRepository struct {
	mu      sync.RWMutex
	byID    map[int64]prediction.Prediction
	nextID  int64
	matches *MatchRepository
}

func NewPredictionRepository(matches *MatchRepository) *PredictionRepository {
	return &PredictionRepository{
		byID:    make(map[int64]prediction.Prediction),
		matches: matches,
	}
}

func (r *PredictionRepository) Create(_ context.Context, p prediction.Prediction) (prediction.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.UserID == p.UserID && existing.MatchID == p.MatchID {
			return prediction.Prediction{}, prediction.ErrAlreadyExists
		}
	}

	r.nextID++
	p.ID = r.nextID
	r.byID[p.ID] = p
	return p, nil
}

func (r *PredictionRepository) GetByUserAndMatch(_ context.Context, userID, matchID int64) (prediction.Prediction, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.byID {
		if p.UserID == userID && p.MatchID == matchID {
			return p, true, nil
		}
	}
	return prediction.Prediction{}, false, nil
}

func (r *PredictionRepository) ListUnsettledByMatch(_ context.Context, matchID int64) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, p := range r.byID {
		if p.MatchID == matchID && !p.Settled {
			out = append(out, p)
		}
	}
	sortByID(out)
	return out, nil
}

func (r *PredictionRepository) ListUserIDsByMatch(_ context.Context, matchID int64) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[int64]struct{})
	out := make([]int64, 0)
	for _, p := range r.byID {
		if p.MatchID != matchID {
			continue
		}
		if _, ok := seen[p.UserID]; ok {
			continue
		}
		seen[p.UserID] = struct{}{}
		out = append(out, p.UserID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r *PredictionRepository) SettleMatch(_ context.Context, matchID int64, awards []prediction.Award) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, award := range awards {
		p, ok := r.byID[award.PredictionID]
		if !ok || p.MatchID != matchID || p.Settled {
			continue
		}
		p.Points = award.Points
		p.Settled = true
		r.byID[p.ID] = p
	}
	return nil
}

func (r *PredictionRepository) ListSettledByUser(_ context.Context, userID int64) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, p := range r.byID {
		if p.UserID == userID && p.Settled {
			out = append(out, p)
		}
	}
	sortByID(out)
	return out, nil
}

func (r *PredictionRepository) ListSettledByUserAndTournament(ctx context.Context, userID, tournamentID int64) ([]prediction.Prediction, error) {
	settled, err := r.ListSettledByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]prediction.Prediction, 0, len(settled))
	for _, p := range settled {
		if r.matches == nil {
			continue
		}
		m, ok, _ := r.matches.GetByID(ctx, p.MatchID)
		if !ok || m.TournamentID == nil || *m.TournamentID != tournamentID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func sortByID(items []prediction.Prediction) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}
