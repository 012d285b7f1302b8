package memory

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/taskqueue"
)

func TestTaskRepository_EnqueueDropsDuplicateDedupKey(t *testing.T) {
	t.Parallel()

	repo := NewTaskRepository()
	ctx := context.Background()
	runAt := time.Date(2026, time.March, 14, 18, 45, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		err := repo.Enqueue(ctx, taskqueue.Task{
			DedupKey: "close-window-1",
			Kind:     taskqueue.KindCloseWindow,
			MatchID:  1,
			RunAt:    runAt,
		})
		if err != nil {
			t.Fatalf("enqueue attempt %d: %v", i+1, err)
		}
	}

	if got := len(repo.Tasks()); got != 1 {
		t.Fatalf("unexpected task count: got=%d want=1", got)
	}
}

func TestTaskRepository_ClaimDueOrderAndLimit(t *testing.T) {
	t.Parallel()

	repo := NewTaskRepository()
	ctx := context.Background()
	base := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

	for i, offset := range []time.Duration{-3 * time.Minute, -time.Minute, -2 * time.Minute, time.Hour} {
		err := repo.Enqueue(ctx, taskqueue.Task{
			DedupKey: "score-match-" + string(rune('a'+i)),
			Kind:     taskqueue.KindScoreMatch,
			MatchID:  int64(i + 1),
			RunAt:    base.Add(offset),
		})
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	claimed, err := repo.ClaimDue(ctx, base, 2)
	if err != nil {
		t.Fatalf("claim due: %v", err)
	}
	if len(claimed) != 2 {
		t.Fatalf("unexpected claim count: got=%d want=2", len(claimed))
	}
	if claimed[0].MatchID != 1 || claimed[1].MatchID != 3 {
		t.Fatalf("claims must come in run_at order: got=%d,%d", claimed[0].MatchID, claimed[1].MatchID)
	}
	for _, task := range claimed {
		if task.Status != taskqueue.StatusRunning {
			t.Fatalf("claimed task must be running: got=%s", task.Status)
		}
		if task.Attempts != 1 {
			t.Fatalf("claim must bump attempts: got=%d", task.Attempts)
		}
	}

	// Claimed rows are invisible to the next claim.
	again, err := repo.ClaimDue(ctx, base, 10)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if len(again) != 1 || again[0].MatchID != 2 {
		t.Fatalf("unexpected second claim: %+v", again)
	}
}

func TestTaskRepository_MarkFailedRetryAndPark(t *testing.T) {
	t.Parallel()

	repo := NewTaskRepository()
	ctx := context.Background()
	base := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

	err := repo.Enqueue(ctx, taskqueue.Task{
		DedupKey: "score-match-1",
		Kind:     taskqueue.KindScoreMatch,
		MatchID:  1,
		RunAt:    base.Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	claimed, _ := repo.ClaimDue(ctx, base, 1)
	retryAt := base.Add(time.Minute)
	if err := repo.MarkFailed(ctx, claimed[0].ID, base, "boom", &retryAt); err != nil {
		t.Fatalf("mark failed with retry: %v", err)
	}

	task := repo.Tasks()[0]
	if task.Status != taskqueue.StatusPending {
		t.Fatalf("retrying task must be pending: got=%s", task.Status)
	}
	if !task.RunAt.Equal(retryAt) {
		t.Fatalf("unexpected retry run_at: got=%v want=%v", task.RunAt, retryAt)
	}
	if task.LastError != "boom" {
		t.Fatalf("unexpected last error: %q", task.LastError)
	}

	claimed, _ = repo.ClaimDue(ctx, retryAt, 1)
	if err := repo.MarkFailed(ctx, claimed[0].ID, retryAt, "boom again", nil); err != nil {
		t.Fatalf("mark failed for good: %v", err)
	}
	if got := repo.Tasks()[0].Status; got != taskqueue.StatusFailed {
		t.Fatalf("parked task must be failed: got=%s", got)
	}
}

func TestTaskRepository_MarkCompleted(t *testing.T) {
	t.Parallel()

	repo := NewTaskRepository()
	ctx := context.Background()
	base := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

	if err := repo.Enqueue(ctx, taskqueue.Task{
		DedupKey: "close-window-1",
		Kind:     taskqueue.KindCloseWindow,
		MatchID:  1,
		RunAt:    base.Add(-time.Minute),
	}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	claimed, _ := repo.ClaimDue(ctx, base, 1)
	if err := repo.MarkCompleted(ctx, claimed[0].ID, base); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if got := repo.Tasks()[0].Status; got != taskqueue.StatusCompleted {
		t.Fatalf("unexpected status: got=%s", got)
	}
}
