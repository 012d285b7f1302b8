package prediction

import (
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
)

// Point awards for a settled prediction.
const (
	PointsExact   = 3
	PointsOutcome = 1
	PointsMiss    = 0
)

// Prediction is one user's guessed final score for a match. The outcome
// is derived from the guessed scores at submission time and stored
// alongside them.
type Prediction struct {
	ID          int64
	UserID      int64
	MatchID     int64
	HomeGoals   int
	AwayGoals   int
	Outcome     match.Outcome
	Points      int
	Settled     bool
	Wager       *int
	SubmittedAt time.Time
}

// Award is the settlement verdict for a single prediction.
type Award struct {
	PredictionID int64
	UserID       int64
	Points       int
}

// Score computes the point award for a prediction against a final
// result. The exact-score check runs first, so a legacy row whose stored
// outcome disagrees with its scores still earns the full award when the
// scores match.
func Score(p Prediction, result match.Result) int {
	if p.HomeGoals == result.HomeGoals && p.AwayGoals == result.AwayGoals {
		return PointsExact
	}
	if p.Outcome == result.Outcome() {
		return PointsOutcome
	}
	return PointsMiss
}
