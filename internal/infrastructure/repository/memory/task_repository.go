package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/taskqueue"
)

type TaskRepository struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]taskqueue.Task
	dedup  map[string]int64
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{
		nextID: 1,
		tasks:  make(map[int64]taskqueue.Task),
		dedup:  make(map[string]int64),
	}
}

func (r *TaskRepository) Enqueue(_ context.Context, task taskqueue.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task.DedupKey != "" {
		if _, ok := r.dedup[task.DedupKey]; ok {
			return nil
		}
	}

	task.ID = r.nextID
	r.nextID++
	task.Status = taskqueue.StatusPending
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	task.UpdatedAt = task.CreatedAt

	r.tasks[task.ID] = task
	if task.DedupKey != "" {
		r.dedup[task.DedupKey] = task.ID
	}
	return nil
}

func (r *TaskRepository) ClaimDue(_ context.Context, now time.Time, limit int) ([]taskqueue.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	due := make([]taskqueue.Task, 0)
	for _, task := range r.tasks {
		if task.Status != taskqueue.StatusPending {
			continue
		}
		if task.RunAt.After(now) {
			continue
		}
		due = append(due, task)
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].RunAt.Equal(due[j].RunAt) {
			return due[i].RunAt.Before(due[j].RunAt)
		}
		return due[i].ID < due[j].ID
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	claimed := make([]taskqueue.Task, 0, len(due))
	for _, task := range due {
		task.Status = taskqueue.StatusRunning
		task.Attempts++
		task.UpdatedAt = now
		r.tasks[task.ID] = task
		claimed = append(claimed, task)
	}
	return claimed, nil
}

func (r *TaskRepository) MarkCompleted(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil
	}
	task.Status = taskqueue.StatusCompleted
	task.UpdatedAt = at
	r.tasks[id] = task
	return nil
}

func (r *TaskRepository) MarkFailed(_ context.Context, id int64, at time.Time, errMsg string, retryAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil
	}
	task.LastError = errMsg
	task.UpdatedAt = at
	if retryAt != nil {
		task.Status = taskqueue.StatusPending
		task.RunAt = *retryAt
	} else {
		task.Status = taskqueue.StatusFailed
	}
	r.tasks[id] = task
	return nil
}

// Tasks returns a snapshot ordered by ID, used by tests to inspect the queue.
func (r *TaskRepository) Tasks() []taskqueue.Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]taskqueue.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		out = append(out, task)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
