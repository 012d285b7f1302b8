package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
)

type matchTableModel struct {
	ID                 int64         `db:"id"`
	HomeTeam           string        `db:"home_team"`
	AwayTeam           string        `db:"away_team"`
	TournamentID       sql.NullInt64 `db:"tournament_id"`
	KickoffAt          time.Time     `db:"kickoff_at"`
	State              string        `db:"state"`
	PredictionsCloseAt sql.NullTime  `db:"predictions_close_at"`
	HomeGoals          sql.NullInt64 `db:"home_goals"`
	AwayGoals          sql.NullInt64 `db:"away_goals"`
	Active             bool          `db:"active"`
	PredictionsEnabled bool          `db:"predictions_enabled"`
	FinishedAt         sql.NullTime  `db:"finished_at"`
	CreatedAt          time.Time     `db:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at"`
}

func (m matchTableModel) toDomain() match.Match {
	out := match.Match{
		ID:                 m.ID,
		HomeTeam:           m.HomeTeam,
		AwayTeam:           m.AwayTeam,
		TournamentID:       nullInt64ToInt64Ptr(m.TournamentID),
		KickoffAt:          m.KickoffAt,
		State:              match.State(m.State),
		PredictionsCloseAt: nullTimeToTimePtr(m.PredictionsCloseAt),
		Active:             m.Active,
		PredictionsEnabled: m.PredictionsEnabled,
		FinishedAt:         nullTimeToTimePtr(m.FinishedAt),
	}
	if m.HomeGoals.Valid && m.AwayGoals.Valid {
		out.Result = &match.Result{
			HomeGoals: int(m.HomeGoals.Int64),
			AwayGoals: int(m.AwayGoals.Int64),
		}
	}
	return out
}
