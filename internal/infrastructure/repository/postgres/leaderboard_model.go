package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
)

type globalEntryTableModel struct {
	UserID           int64         `db:"user_id"`
	TotalPoints      int           `db:"total_points"`
	TotalPredictions int           `db:"total_predictions"`
	ExactCount       int           `db:"exact_count"`
	OutcomeCount     int           `db:"outcome_count"`
	Accuracy         float64       `db:"accuracy"`
	Rank             sql.NullInt64 `db:"rank"`
	UpdatedAt        time.Time     `db:"updated_at"`
}

func (m globalEntryTableModel) toDomain() leaderboard.Entry {
	return leaderboard.Entry{
		UserID:           m.UserID,
		TotalPoints:      m.TotalPoints,
		TotalPredictions: m.TotalPredictions,
		ExactCount:       m.ExactCount,
		OutcomeCount:     m.OutcomeCount,
		Accuracy:         m.Accuracy,
		Rank:             nullInt64ToIntPtr(m.Rank),
		UpdatedAt:        m.UpdatedAt,
	}
}

type globalEntryInsertModel struct {
	UserID           int64     `db:"user_id"`
	TotalPoints      int       `db:"total_points"`
	TotalPredictions int       `db:"total_predictions"`
	ExactCount       int       `db:"exact_count"`
	OutcomeCount     int       `db:"outcome_count"`
	Accuracy         float64   `db:"accuracy"`
	UpdatedAt        time.Time `db:"updated_at"`
}

type tournamentEntryTableModel struct {
	TournamentID     int64         `db:"tournament_id"`
	UserID           int64         `db:"user_id"`
	TotalPoints      int           `db:"total_points"`
	TotalPredictions int           `db:"total_predictions"`
	ExactCount       int           `db:"exact_count"`
	OutcomeCount     int           `db:"outcome_count"`
	Accuracy         float64       `db:"accuracy"`
	Rank             sql.NullInt64 `db:"rank"`
	UpdatedAt        time.Time     `db:"updated_at"`
}

func (m tournamentEntryTableModel) toDomain() leaderboard.TournamentEntry {
	return leaderboard.TournamentEntry{
		TournamentID:     m.TournamentID,
		UserID:           m.UserID,
		TotalPoints:      m.TotalPoints,
		TotalPredictions: m.TotalPredictions,
		ExactCount:       m.ExactCount,
		OutcomeCount:     m.OutcomeCount,
		Accuracy:         m.Accuracy,
		Rank:             nullInt64ToIntPtr(m.Rank),
		UpdatedAt:        m.UpdatedAt,
	}
}

type tournamentEntryInsertModel struct {
	TournamentID     int64     `db:"tournament_id"`
	UserID           int64     `db:"user_id"`
	TotalPoints      int       `db:"total_points"`
	TotalPredictions int       `db:"total_predictions"`
	ExactCount       int       `db:"exact_count"`
	OutcomeCount     int       `db:"outcome_count"`
	Accuracy         float64   `db:"accuracy"`
	UpdatedAt        time.Time `db:"updated_at"`
}
