package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
)

// MatchRepository is an in-memory match store used by tests and by the
// DB-less wiring mode.
type MatchRepository struct {
	mu     sync.RWMutex
	byID   map[int64]match.Match
	nextID int64
}

func NewMatchRepository(seed ...match.Match) *MatchRepository {
	repo := &MatchRepository{byID: make(map[int64]match.Match, len(seed))}
	for _, m := range seed {
		repo.Put(m)
	}
	return repo
}

// Put inserts or replaces a match, assigning an id when missing.
func (r *MatchRepository) Put(m match.Match) match.Match {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID == 0 {
		r.nextID++
		m.ID = r.nextID
	} else if m.ID > r.nextID {
		r.nextID = m.ID
	}
	if m.State == "" {
		m.State = match.StateOpen
	}
	r.byID[m.ID] = m
	return m
}

func (r *MatchRepository) GetByID(_ context.Context, id int64) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	return m, ok, nil
}

func (r *MatchRepository) ListSchedulable(_ context.Context, now time.Time, horizon time.Duration) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := now.Add(horizon)
	out := make([]match.Match, 0)
	for _, m := range r.byID {
		if !m.Active || !m.PredictionsEnabled || m.State != match.StateOpen {
			continue
		}
		if m.PredictionsCloseAt != nil {
			continue
		}
		if m.KickoffAt.After(limit) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *MatchRepository) RecordCloseSchedule(_ context.Context, id int64, closeAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("match %d not found", id)
	}
	m.PredictionsCloseAt = &closeAt
	r.byID[id] = m
	return nil
}

func (r *MatchRepository) RecordWindowClosed(_ context.Context, id int64, closedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("match %d not found", id)
	}
	if err := m.Transition(match.StateClosed); err != nil {
		return err
	}
	m.PredictionsCloseAt = &closedAt
	r.byID[id] = m
	return nil
}

func (r *MatchRepository) RecordResult(_ context.Context, id int64, result match.Result, finishedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("match %d not found", id)
	}
	if err := m.Transition(match.StateFinished); err != nil {
		return err
	}
	m.Result = &result
	m.FinishedAt = &finishedAt
	r.byID[id] = m
	return nil
}
