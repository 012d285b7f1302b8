package usecase

import (
	"context"
	"sync"

	"github.com/riskibarqy/prediction-league/internal/domain/taskqueue"
)

// recordingQueue captures enqueued tasks and drops dedup-key duplicates
// the way the persistent queue does.
type recordingQueue struct {
	mu    sync.Mutex
	tasks []taskqueue.Task
	seen  map[string]bool
}

func newRecordingQueue() *recordingQueue {
	return &recordingQueue{seen: make(map[string]bool)}
}

func (q *recordingQueue) Enqueue(_ context.Context, task taskqueue.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if task.DedupKey != "" {
		if q.seen[task.DedupKey] {
			return nil
		}
		q.seen[task.DedupKey] = true
	}
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *recordingQueue) all() []taskqueue.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]taskqueue.Task(nil), q.tasks...)
}

type recordingNotifier struct {
	mu            sync.Mutex
	notifications []Notification
}

func (n *recordingNotifier) Notify(_ context.Context, notification Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, notification)
	return nil
}

func (n *recordingNotifier) all() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.notifications...)
}

type recordingCache struct {
	mu   sync.Mutex
	keys []string
}

func (c *recordingCache) Invalidate(_ context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = append(c.keys, keys...)
}

func (c *recordingCache) invalidated() map[string]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]bool, len(c.keys))
	for _, key := range c.keys {
		out[key] = true
	}
	return out
}
