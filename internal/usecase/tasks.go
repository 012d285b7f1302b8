package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/taskqueue"
)

// TaskQueue is the delayed-dispatch port. The persisted run_at gives
// at-least-once delivery; a duplicate dedup key is dropped by the
// implementation.
type TaskQueue interface {
	Enqueue(ctx context.Context, task taskqueue.Task) error
}

type noopTaskQueue struct{}

func (noopTaskQueue) Enqueue(context.Context, taskqueue.Task) error { return nil }

func NewNoopTaskQueue() TaskQueue {
	return noopTaskQueue{}
}

func newCloseWindowTask(matchID int64, runAt time.Time) taskqueue.Task {
	return taskqueue.Task{
		DedupKey: "close-window-" + strconv.FormatInt(matchID, 10),
		Kind:     taskqueue.KindCloseWindow,
		MatchID:  matchID,
		Payload:  map[string]any{"match_id": matchID},
		RunAt:    runAt.UTC(),
		Status:   taskqueue.StatusPending,
	}
}

func newScoreMatchTask(matchID int64, runAt time.Time, notifyUsers bool) taskqueue.Task {
	return taskqueue.Task{
		DedupKey: "score-match-" + strconv.FormatInt(matchID, 10),
		Kind:     taskqueue.KindScoreMatch,
		MatchID:  matchID,
		Payload:  map[string]any{"match_id": matchID, "notify_users": notifyUsers},
		RunAt:    runAt.UTC(),
		Status:   taskqueue.StatusPending,
	}
}

// newScoreMatchRetryTask carries a time-bucketed dedup key so a deferral
// lands as a fresh row instead of colliding with the original dispatch.
func newScoreMatchRetryTask(matchID int64, runAt time.Time, notifyUsers bool) taskqueue.Task {
	task := newScoreMatchTask(matchID, runAt, notifyUsers)
	slot := runAt.UTC().Truncate(time.Minute).Format("20060102T150405Z")
	task.DedupKey = task.DedupKey + "-" + slot
	return task
}
