package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
)

type predictionTableModel struct {
	ID          int64         `db:"id"`
	UserID      int64         `db:"user_id"`
	MatchID     int64         `db:"match_id"`
	HomeGoals   int           `db:"home_goals"`
	AwayGoals   int           `db:"away_goals"`
	Outcome     string        `db:"outcome"`
	Points      int           `db:"points"`
	Settled     bool          `db:"settled"`
	Wager       sql.NullInt64 `db:"wager"`
	SubmittedAt time.Time     `db:"submitted_at"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

func (m predictionTableModel) toDomain() prediction.Prediction {
	return prediction.Prediction{
		ID:          m.ID,
		UserID:      m.UserID,
		MatchID:     m.MatchID,
		HomeGoals:   m.HomeGoals,
		AwayGoals:   m.AwayGoals,
		Outcome:     match.Outcome(m.Outcome),
		Points:      m.Points,
		Settled:     m.Settled,
		Wager:       nullInt64ToIntPtr(m.Wager),
		SubmittedAt: m.SubmittedAt,
	}
}

type predictionInsertModel struct {
	UserID      int64     `db:"user_id"`
	MatchID     int64     `db:"match_id"`
	HomeGoals   int       `db:"home_goals"`
	AwayGoals   int       `db:"away_goals"`
	Outcome     string    `db:"outcome"`
	Wager       *int      `db:"wager"`
	SubmittedAt time.Time `db:"submitted_at"`
}
