package match

import (
	"context"
	"time"
)

// Repository exposes the match reads and window/result writes this
// subsystem performs. Match creation belongs to the admin surface.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Match, bool, error)
	// ListSchedulable returns active matches with predictions enabled, no
	// close instant recorded yet, and kickoff no later than the horizon.
	ListSchedulable(ctx context.Context, now time.Time, horizon time.Duration) ([]Match, error)
	// RecordCloseSchedule stores the computed close instant without
	// closing the window; it is what makes repeated scheduling a no-op.
	RecordCloseSchedule(ctx context.Context, id int64, closeAt time.Time) error
	// RecordWindowClosed flips the window to closed and records the
	// actual close instant, even when the task fires late.
	RecordWindowClosed(ctx context.Context, id int64, closedAt time.Time) error
	// RecordResult stores a final score and marks the match finished.
	RecordResult(ctx context.Context, id int64, result Result, finishedAt time.Time) error
}
