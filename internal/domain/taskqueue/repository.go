package taskqueue

import (
	"context"
	"time"
)

type Repository interface {
	// Enqueue inserts a pending task. A duplicate dedup key is silently
	// dropped, which is what makes repeated scheduling idempotent.
	Enqueue(ctx context.Context, task Task) error
	// ClaimDue atomically marks up to limit due pending tasks as running
	// and returns them. Two workers never claim the same row.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]Task, error)
	MarkCompleted(ctx context.Context, id int64, at time.Time) error
	// MarkFailed records the error; when retryAt is non-nil the task goes
	// back to pending with that run_at, otherwise it is failed for good.
	MarkFailed(ctx context.Context, id int64, at time.Time, errMsg string, retryAt *time.Time) error
}
