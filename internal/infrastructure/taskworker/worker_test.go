package taskworker

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/taskqueue"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

func newWorkerFixture(t *testing.T, cfg Config, matches ...match.Match) (*Worker, *memory.TaskRepository, *memory.MatchRepository) {
	t.Helper()

	matchRepo := memory.NewMatchRepository(matches...)
	predictionRepo := memory.NewPredictionRepository(matchRepo)
	leaderboardRepo := memory.NewLeaderboardRepository()
	taskRepo := memory.NewTaskRepository()

	aggregator := usecase.NewLeaderboardService(predictionRepo, leaderboardRepo, nil, nil)
	windows := usecase.NewWindowService(matchRepo, predictionRepo, taskRepo, nil, nil, usecase.WindowConfig{}, nil)
	scoring := usecase.NewScoringService(matchRepo, predictionRepo, aggregator, taskRepo, nil, nil, usecase.ScoringConfig{}, nil)

	worker, err := NewWorker(taskRepo, NewDispatcher(windows, scoring), cfg, nil)
	if err != nil {
		t.Fatalf("create worker: %v", err)
	}
	return worker, taskRepo, matchRepo
}

func TestRunOnce_ExecutesDueCloseWindowTask(t *testing.T) {
	t.Parallel()

	kickoff := time.Now().UTC().Add(10 * time.Minute)
	worker, taskRepo, matchRepo := newWorkerFixture(t, Config{},
		match.Match{ID: 1, State: match.StateOpen, Active: true, PredictionsEnabled: true, KickoffAt: kickoff},
	)

	err := taskRepo.Enqueue(context.Background(), taskqueue.Task{
		DedupKey: "close-window-1",
		Kind:     taskqueue.KindCloseWindow,
		MatchID:  1,
		RunAt:    time.Now().UTC().Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}

	m, _, _ := matchRepo.GetByID(context.Background(), 1)
	if m.State != match.StateClosed {
		t.Fatalf("unexpected match state: got=%s want=%s", m.State, match.StateClosed)
	}

	tasks := taskRepo.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("expected completed closure plus chained scoring task: got=%d", len(tasks))
	}
	if tasks[0].Status != taskqueue.StatusCompleted {
		t.Fatalf("closure task not completed: got=%s", tasks[0].Status)
	}
	if tasks[1].Kind != taskqueue.KindScoreMatch || tasks[1].Status != taskqueue.StatusPending {
		t.Fatalf("chained scoring task missing: got=%+v", tasks[1])
	}
}

func TestRunOnce_NothingDueIsNoop(t *testing.T) {
	t.Parallel()

	worker, taskRepo, _ := newWorkerFixture(t, Config{})

	err := taskRepo.Enqueue(context.Background(), taskqueue.Task{
		DedupKey: "close-window-1",
		Kind:     taskqueue.KindCloseWindow,
		MatchID:  1,
		RunAt:    time.Now().UTC().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if got := taskRepo.Tasks()[0].Status; got != taskqueue.StatusPending {
		t.Fatalf("future task must stay pending: got=%s", got)
	}
}

func TestRunOnce_FailedTaskRetriesWithBackoff(t *testing.T) {
	t.Parallel()

	worker, taskRepo, _ := newWorkerFixture(t, Config{MaxAttempts: 2, RetryBackoff: time.Minute})

	base := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	now := base
	worker.now = func() time.Time { return now }

	err := taskRepo.Enqueue(context.Background(), taskqueue.Task{
		DedupKey: "bogus-1",
		Kind:     taskqueue.Kind("bogus"),
		MatchID:  1,
		RunAt:    base.Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	task := taskRepo.Tasks()[0]
	if task.Status != taskqueue.StatusPending {
		t.Fatalf("first failure must go back to pending: got=%s", task.Status)
	}
	if task.Attempts != 1 {
		t.Fatalf("unexpected attempts: got=%d want=1", task.Attempts)
	}
	if !task.RunAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("unexpected retry run_at: got=%v want=%v", task.RunAt, base.Add(time.Minute))
	}
	if task.LastError == "" {
		t.Fatalf("last error must be recorded")
	}

	// Past the retry instant, the second failure exhausts the attempt cap.
	now = base.Add(2 * time.Minute)
	if err := worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	task = taskRepo.Tasks()[0]
	if task.Status != taskqueue.StatusFailed {
		t.Fatalf("exhausted task must be parked as failed: got=%s", task.Status)
	}
	if task.Attempts != 2 {
		t.Fatalf("unexpected attempts: got=%d want=2", task.Attempts)
	}
}

func TestDispatcher_NotifyUsersFlag(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		payload map[string]any
		want    bool
	}{
		{"absent defaults to true", map[string]any{}, true},
		{"explicit false", map[string]any{"notify_users": false}, false},
		{"explicit true", map[string]any{"notify_users": true}, true},
		{"malformed defaults to true", map[string]any{"notify_users": "no"}, true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := notifyUsersFlag(taskqueue.Task{Payload: tc.payload})
			if got != tc.want {
				t.Fatalf("unexpected flag: got=%v want=%v", got, tc.want)
			}
		})
	}
}
