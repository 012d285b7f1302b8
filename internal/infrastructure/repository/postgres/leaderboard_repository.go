package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

type LeaderboardRepository struct {
	db *sqlx.DB
}

func NewLeaderboardRepository(db *sqlx.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

func (r *LeaderboardRepository) UpsertGlobal(ctx context.Context, entry leaderboard.Entry) error {
	model := globalEntryInsertModel{
		UserID:           entry.UserID,
		TotalPoints:      entry.TotalPoints,
		TotalPredictions: entry.TotalPredictions,
		ExactCount:       entry.ExactCount,
		OutcomeCount:     entry.OutcomeCount,
		Accuracy:         entry.Accuracy,
		UpdatedAt:        entry.UpdatedAt.UTC(),
	}

	query, args, err := qb.InsertModel("leaderboard_global", model, `ON CONFLICT (user_id)
DO UPDATE SET
    total_points = EXCLUDED.total_points,
    total_predictions = EXCLUDED.total_predictions,
    exact_count = EXCLUDED.exact_count,
    outcome_count = EXCLUDED.outcome_count,
    accuracy = EXCLUDED.accuracy,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert global leaderboard query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert global leaderboard user=%d: %w", entry.UserID, err)
	}
	return nil
}

func (r *LeaderboardRepository) ListGlobal(ctx context.Context) ([]leaderboard.Entry, error) {
	query, args, err := qb.Select("*").From("leaderboard_global").
		OrderBy("total_points DESC", "accuracy DESC", "user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list global leaderboard query: %w", err)
	}

	var rows []globalEntryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list global leaderboard: %w", err)
	}

	out := make([]leaderboard.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *LeaderboardRepository) UpdateGlobalRanks(ctx context.Context, entries []leaderboard.Entry) error {
	for _, entry := range entries {
		if entry.Rank == nil {
			continue
		}
		query, args, err := qb.Update("leaderboard_global").
			Set("rank", *entry.Rank).
			Where(qb.Eq("user_id", entry.UserID)).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build update global rank query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update global rank user=%d: %w", entry.UserID, err)
		}
	}
	return nil
}

func (r *LeaderboardRepository) UpsertTournament(ctx context.Context, entry leaderboard.TournamentEntry) error {
	model := tournamentEntryInsertModel{
		TournamentID:     entry.TournamentID,
		UserID:           entry.UserID,
		TotalPoints:      entry.TotalPoints,
		TotalPredictions: entry.TotalPredictions,
		ExactCount:       entry.ExactCount,
		OutcomeCount:     entry.OutcomeCount,
		Accuracy:         entry.Accuracy,
		UpdatedAt:        entry.UpdatedAt.UTC(),
	}

	query, args, err := qb.InsertModel("leaderboard_tournament", model, `ON CONFLICT (tournament_id, user_id)
DO UPDATE SET
    total_points = EXCLUDED.total_points,
    total_predictions = EXCLUDED.total_predictions,
    exact_count = EXCLUDED.exact_count,
    outcome_count = EXCLUDED.outcome_count,
    accuracy = EXCLUDED.accuracy,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert tournament leaderboard query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert tournament leaderboard tournament=%d user=%d: %w", entry.TournamentID, entry.UserID, err)
	}
	return nil
}

func (r *LeaderboardRepository) ListTournament(ctx context.Context, tournamentID int64) ([]leaderboard.TournamentEntry, error) {
	query, args, err := qb.Select("*").From("leaderboard_tournament").
		Where(qb.Eq("tournament_id", tournamentID)).
		OrderBy("total_points DESC", "accuracy DESC", "user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list tournament leaderboard query: %w", err)
	}

	var rows []tournamentEntryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list tournament leaderboard tournament=%d: %w", tournamentID, err)
	}

	out := make([]leaderboard.TournamentEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *LeaderboardRepository) ListTournamentIDs(ctx context.Context) ([]int64, error) {
	query, args, err := qb.Select("DISTINCT tournament_id").From("leaderboard_tournament").
		OrderBy("tournament_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list tournament ids query: %w", err)
	}

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list tournament ids: %w", err)
	}
	return ids, nil
}

func (r *LeaderboardRepository) UpdateTournamentRanks(ctx context.Context, tournamentID int64, entries []leaderboard.TournamentEntry) error {
	for _, entry := range entries {
		if entry.Rank == nil {
			continue
		}
		query, args, err := qb.Update("leaderboard_tournament").
			Set("rank", *entry.Rank).
			Where(
				qb.Eq("tournament_id", tournamentID),
				qb.Eq("user_id", entry.UserID),
			).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build update tournament rank query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update tournament rank tournament=%d user=%d: %w", tournamentID, entry.UserID, err)
		}
	}
	return nil
}
