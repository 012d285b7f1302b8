package match

import (
	"fmt"
	"time"
)

// State is the prediction-window lifecycle of a match. It replaces the
// informal combination of status strings, boolean flags and nullable
// timestamps with one tagged state and validated transitions.
type State string

const (
	StateOpen      State = "open"
	StateClosed    State = "closed"
	StateFinished  State = "finished"
	StateCancelled State = "cancelled"
)

// Outcome is the final verdict of a score pair.
type Outcome string

const (
	OutcomeHome Outcome = "home"
	OutcomeAway Outcome = "away"
	OutcomeDraw Outcome = "draw"
)

// OutcomeOf derives the outcome from a score pair. Clients never supply
// an outcome directly.
func OutcomeOf(homeGoals, awayGoals int) Outcome {
	switch {
	case homeGoals > awayGoals:
		return OutcomeHome
	case awayGoals > homeGoals:
		return OutcomeAway
	default:
		return OutcomeDraw
	}
}

// Result is a recorded final score. Both goals are always present; a
// match without a result carries a nil *Result.
type Result struct {
	HomeGoals int
	AwayGoals int
}

func (r Result) Outcome() Outcome {
	return OutcomeOf(r.HomeGoals, r.AwayGoals)
}

// Match is one scheduled fixture between two teams.
type Match struct {
	ID                 int64
	HomeTeam           string
	AwayTeam           string
	TournamentID       *int64
	KickoffAt          time.Time
	State              State
	PredictionsCloseAt *time.Time
	Result             *Result
	Active             bool
	PredictionsEnabled bool
	FinishedAt         *time.Time
}

var allowedTransitions = map[State][]State{
	StateOpen:      {StateClosed, StateFinished, StateCancelled},
	StateClosed:    {StateFinished, StateCancelled},
	StateFinished:  {},
	StateCancelled: {},
}

func CanTransition(from, to State) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves the match to the target state, rejecting moves the
// lifecycle does not allow (finished and cancelled are terminal).
func (m *Match) Transition(to State) error {
	if !CanTransition(m.State, to) {
		return fmt.Errorf("invalid match state transition %s -> %s", m.State, to)
	}
	m.State = to
	return nil
}

// WindowOpen reports whether a prediction submitted at the given instant
// should be accepted.
func (m Match) WindowOpen(at time.Time) bool {
	if m.State != StateOpen || !m.Active || !m.PredictionsEnabled {
		return false
	}
	if m.PredictionsCloseAt != nil && !at.Before(*m.PredictionsCloseAt) {
		return false
	}
	return at.Before(m.KickoffAt)
}

// Scoreable reports whether the scoring engine precondition holds: the
// match concluded and carries a full result.
func (m Match) Scoreable() bool {
	return m.State == StateFinished && m.Result != nil
}
