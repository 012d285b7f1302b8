package leaderboard

import "time"

// Entry is one user's aggregate over all settled predictions. Every
// field but Rank is derived entirely from the prediction ledger and is
// safe to recompute from scratch at any time.
type Entry struct {
	UserID           int64
	TotalPoints      int
	TotalPredictions int
	ExactCount       int
	// OutcomeCount counts correct-outcome-but-inexact predictions.
	OutcomeCount int
	// Accuracy is correct/total as a percentage, rounded to 2 decimals.
	Accuracy  float64
	Rank      *int
	UpdatedAt time.Time
}

// TournamentEntry is the same aggregate scoped to one tournament's
// matches. Accuracy is rounded to 1 decimal, not 2; the asymmetry with
// the global table is intentional and preserved.
type TournamentEntry struct {
	TournamentID     int64
	UserID           int64
	TotalPoints      int
	TotalPredictions int
	ExactCount       int
	OutcomeCount     int
	Accuracy         float64
	Rank             *int
	UpdatedAt        time.Time
}
