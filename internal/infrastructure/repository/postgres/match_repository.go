package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, id int64) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("select match id=%d: %w", id, err)
	}

	return row.toDomain(), true, nil
}

func (r *MatchRepository) ListSchedulable(ctx context.Context, now time.Time, horizon time.Duration) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("state", string(match.StateOpen)),
			qb.Eq("active", true),
			qb.Eq("predictions_enabled", true),
			qb.IsNull("predictions_close_at"),
			qb.Lte("kickoff_at", now.Add(horizon)),
		).
		OrderBy("kickoff_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list schedulable matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list schedulable matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *MatchRepository) RecordCloseSchedule(ctx context.Context, id int64, closeAt time.Time) error {
	query, args, err := qb.Update("matches").
		Set("predictions_close_at", closeAt.UTC()).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.IsNull("predictions_close_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build record close schedule query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("record close schedule match=%d: %w", id, err)
	}
	return nil
}

func (r *MatchRepository) RecordWindowClosed(ctx context.Context, id int64, closedAt time.Time) error {
	query, args, err := qb.Update("matches").
		Set("state", string(match.StateClosed)).
		Set("predictions_close_at", closedAt.UTC()).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.Eq("state", string(match.StateOpen)),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build record window closed query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("record window closed match=%d: %w", id, err)
	}
	return nil
}

func (r *MatchRepository) RecordResult(ctx context.Context, id int64, result match.Result, finishedAt time.Time) error {
	query, args, err := qb.Update("matches").
		Set("state", string(match.StateFinished)).
		Set("home_goals", result.HomeGoals).
		Set("away_goals", result.AwayGoals).
		Set("finished_at", finishedAt.UTC()).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.In("state", []any{string(match.StateOpen), string(match.StateClosed)}),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build record result query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("record result match=%d: %w", id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("record result match=%d: match is not in a finishable state", id)
	}
	return nil
}
