package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/taskqueue"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

type TaskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Enqueue(ctx context.Context, task taskqueue.Task) error {
	payloadJSON, err := marshalTaskPayload(task.Payload)
	if err != nil {
		return fmt.Errorf("marshal task payload: %w", err)
	}

	model := taskInsertModel{
		DedupKey: task.DedupKey,
		Kind:     string(task.Kind),
		MatchID:  task.MatchID,
		Payload:  payloadJSON,
		RunAt:    task.RunAt.UTC(),
		Status:   string(taskqueue.StatusPending),
	}

	query, args, err := qb.InsertModel("tasks", model, "ON CONFLICT (dedup_key) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build enqueue task query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("enqueue task dedup_key=%s: %w", task.DedupKey, err)
	}
	return nil
}

func (r *TaskRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]taskqueue.Task, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx claim tasks: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	selectQuery, selectArgs, err := qb.Select("*").From("tasks").
		Where(
			qb.Eq("status", string(taskqueue.StatusPending)),
			qb.Lte("run_at", now.UTC()),
		).
		OrderBy("run_at", "id").
		Limit(limit).
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build claim tasks select query: %w", err)
	}

	var rows []taskTableModel
	if err := tx.SelectContext(ctx, &rows, selectQuery, selectArgs...); err != nil {
		return nil, fmt.Errorf("select due tasks: %w", err)
	}
	if len(rows) == 0 {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit claim tasks tx: %w", err)
		}
		return nil, nil
	}

	claimed := make([]taskqueue.Task, 0, len(rows))
	for _, row := range rows {
		updateQuery, updateArgs, err := qb.Update("tasks").
			Set("status", string(taskqueue.StatusRunning)).
			SetExpr("attempts", "attempts + 1").
			Set("updated_at", now.UTC()).
			Where(qb.Eq("id", row.ID)).
			ToSQL()
		if err != nil {
			return nil, fmt.Errorf("build claim task update query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, updateQuery, updateArgs...); err != nil {
			return nil, fmt.Errorf("claim task id=%d: %w", row.ID, err)
		}

		task, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		task.Status = taskqueue.StatusRunning
		task.Attempts++
		claimed = append(claimed, task)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit claim tasks tx: %w", err)
	}
	return claimed, nil
}

func (r *TaskRepository) MarkCompleted(ctx context.Context, id int64, at time.Time) error {
	query, args, err := qb.Update("tasks").
		Set("status", string(taskqueue.StatusCompleted)).
		Set("updated_at", at.UTC()).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark task completed query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark task completed id=%d: %w", id, err)
	}
	return nil
}

func (r *TaskRepository) MarkFailed(ctx context.Context, id int64, at time.Time, errMsg string, retryAt *time.Time) error {
	builder := qb.Update("tasks").
		Set("last_error", errMsg).
		Set("updated_at", at.UTC())

	if retryAt != nil {
		builder = builder.
			Set("status", string(taskqueue.StatusPending)).
			Set("run_at", retryAt.UTC())
	} else {
		builder = builder.Set("status", string(taskqueue.StatusFailed))
	}

	query, args, err := builder.Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build mark task failed query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark task failed id=%d: %w", id, err)
	}
	return nil
}
