package taskqueue

import "time"

// Kind identifies a delayed task body.
type Kind string

const (
	KindCloseWindow Kind = "close-window"
	KindScoreMatch  Kind = "score-match"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Task is one delayed unit of work with a visible run_at. Re-delaying
// (the scoring engine's precondition deferral) is just another pending
// row, not a special case.
type Task struct {
	ID        int64
	DedupKey  string
	Kind      Kind
	MatchID   int64
	Payload   map[string]any
	RunAt     time.Time
	Attempts  int
	Status    Status
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}
