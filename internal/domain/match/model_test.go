package match

import (
	"testing"
	"time"
)

func TestOutcomeOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		homeGoals int
		awayGoals int
		want      Outcome
	}{
		{"home win", 2, 1, OutcomeHome},
		{"away win", 0, 3, OutcomeAway},
		{"draw", 1, 1, OutcomeDraw},
		{"goalless draw", 0, 0, OutcomeDraw},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := OutcomeOf(tc.homeGoals, tc.awayGoals); got != tc.want {
				t.Fatalf("unexpected outcome: got=%s want=%s", got, tc.want)
			}
		})
	}
}

func TestTransition_AllowedPaths(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from State
		to   State
		ok   bool
	}{
		{StateOpen, StateClosed, true},
		{StateOpen, StateFinished, true},
		{StateOpen, StateCancelled, true},
		{StateClosed, StateFinished, true},
		{StateClosed, StateCancelled, true},
		{StateClosed, StateOpen, false},
		{StateFinished, StateClosed, false},
		{StateFinished, StateCancelled, false},
		{StateCancelled, StateOpen, false},
		{StateCancelled, StateFinished, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			t.Parallel()

			if got := CanTransition(tc.from, tc.to); got != tc.ok {
				t.Fatalf("unexpected CanTransition(%s, %s): got=%v want=%v", tc.from, tc.to, got, tc.ok)
			}

			m := Match{State: tc.from}
			err := m.Transition(tc.to)
			if tc.ok {
				if err != nil {
					t.Fatalf("transition %s -> %s: %v", tc.from, tc.to, err)
				}
				if m.State != tc.to {
					t.Fatalf("state not updated: got=%s want=%s", m.State, tc.to)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected rejection for %s -> %s", tc.from, tc.to)
			}
			if m.State != tc.from {
				t.Fatalf("state mutated on rejected transition: got=%s want=%s", m.State, tc.from)
			}
		})
	}
}

func TestWindowOpen(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2026, time.March, 14, 19, 0, 0, 0, time.UTC)
	closeAt := kickoff.Add(-15 * time.Minute)

	base := Match{
		ID:                 1,
		State:              StateOpen,
		Active:             true,
		PredictionsEnabled: true,
		KickoffAt:          kickoff,
		PredictionsCloseAt: &closeAt,
	}

	cases := []struct {
		name   string
		mutate func(m *Match)
		at     time.Time
		want   bool
	}{
		{"before close instant", nil, closeAt.Add(-time.Second), true},
		{"exactly at close instant", nil, closeAt, false},
		{"after close instant", nil, closeAt.Add(time.Second), false},
		{"no close instant, before kickoff", func(m *Match) { m.PredictionsCloseAt = nil }, kickoff.Add(-time.Second), true},
		{"no close instant, exactly at kickoff", func(m *Match) { m.PredictionsCloseAt = nil }, kickoff, false},
		{"closed state", func(m *Match) { m.State = StateClosed }, closeAt.Add(-time.Hour), false},
		{"cancelled state", func(m *Match) { m.State = StateCancelled }, closeAt.Add(-time.Hour), false},
		{"inactive", func(m *Match) { m.Active = false }, closeAt.Add(-time.Hour), false},
		{"predictions disabled", func(m *Match) { m.PredictionsEnabled = false }, closeAt.Add(-time.Hour), false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			m := base
			if tc.mutate != nil {
				tc.mutate(&m)
			}
			if got := m.WindowOpen(tc.at); got != tc.want {
				t.Fatalf("unexpected WindowOpen: got=%v want=%v", got, tc.want)
			}
		})
	}
}

func TestScoreable(t *testing.T) {
	t.Parallel()

	result := Result{HomeGoals: 2, AwayGoals: 1}

	if got := (Match{State: StateFinished, Result: &result}).Scoreable(); !got {
		t.Fatalf("finished match with result must be scoreable")
	}
	if got := (Match{State: StateFinished}).Scoreable(); got {
		t.Fatalf("finished match without result must not be scoreable")
	}
	if got := (Match{State: StateClosed, Result: &result}).Scoreable(); got {
		t.Fatalf("closed match must not be scoreable")
	}
}
