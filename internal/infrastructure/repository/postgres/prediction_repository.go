package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) Create(ctx context.Context, p prediction.Prediction) (prediction.Prediction, error) {
	model := predictionInsertModel{
		UserID:      p.UserID,
		MatchID:     p.MatchID,
		HomeGoals:   p.HomeGoals,
		AwayGoals:   p.AwayGoals,
		Outcome:     string(p.Outcome),
		Wager:       p.Wager,
		SubmittedAt: p.SubmittedAt.UTC(),
	}

	query, args, err := qb.InsertModel("predictions", model, "RETURNING id")
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("build insert prediction query: %w", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&p.ID); err != nil {
		if isUniqueViolation(err) {
			return prediction.Prediction{}, fmt.Errorf("insert prediction user=%d match=%d: %w", p.UserID, p.MatchID, prediction.ErrAlreadyExists)
		}
		return prediction.Prediction{}, fmt.Errorf("insert prediction user=%d match=%d: %w", p.UserID, p.MatchID, err)
	}

	return p, nil
}

func (r *PredictionRepository) GetByUserAndMatch(ctx context.Context, userID, matchID int64) (prediction.Prediction, bool, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("match_id", matchID),
		).
		ToSQL()
	if err != nil {
		return prediction.Prediction{}, false, fmt.Errorf("build select prediction query: %w", err)
	}

	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.Prediction{}, false, nil
		}
		return prediction.Prediction{}, false, fmt.Errorf("select prediction user=%d match=%d: %w", userID, matchID, err)
	}

	return row.toDomain(), true, nil
}

func (r *PredictionRepository) ListUnsettledByMatch(ctx context.Context, matchID int64) ([]prediction.Prediction, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(
			qb.Eq("match_id", matchID),
			qb.Eq("settled", false),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list unsettled predictions query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list unsettled predictions match=%d: %w", matchID, err)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PredictionRepository) ListUserIDsByMatch(ctx context.Context, matchID int64) ([]int64, error) {
	query, args, err := qb.Select("DISTINCT user_id").From("predictions").
		Where(qb.Eq("match_id", matchID)).
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list prediction user ids query: %w", err)
	}

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list prediction user ids match=%d: %w", matchID, err)
	}
	return ids, nil
}

func (r *PredictionRepository) SettleMatch(ctx context.Context, matchID int64, awards []prediction.Award) error {
	if len(awards) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx settle match: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, award := range awards {
		query, args, err := qb.Update("predictions").
			Set("points", award.Points).
			Set("settled", true).
			SetExpr("updated_at", "NOW()").
			Where(
				qb.Eq("id", award.PredictionID),
				qb.Eq("match_id", matchID),
				qb.Eq("settled", false),
			).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build settle prediction query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("settle prediction id=%d match=%d: %w", award.PredictionID, matchID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settle match tx: %w", err)
	}
	return nil
}

func (r *PredictionRepository) ListSettledByUser(ctx context.Context, userID int64) ([]prediction.Prediction, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("settled", true),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list settled predictions query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list settled predictions user=%d: %w", userID, err)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PredictionRepository) ListSettledByUserAndTournament(ctx context.Context, userID, tournamentID int64) ([]prediction.Prediction, error) {
	query, args, err := qb.Select("p.*").From("predictions p").
		Where(
			qb.Expr("p.match_id IN (SELECT id FROM matches WHERE tournament_id = ?)", tournamentID),
			qb.Eq("p.user_id", userID),
			qb.Eq("p.settled", true),
		).
		OrderBy("p.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list settled tournament predictions query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list settled tournament predictions user=%d tournament=%d: %w", userID, tournamentID, err)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
