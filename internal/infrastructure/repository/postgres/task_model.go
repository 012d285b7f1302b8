package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/prediction-league/internal/domain/taskqueue"
)

type taskTableModel struct {
	ID        int64          `db:"id"`
	DedupKey  string         `db:"dedup_key"`
	Kind      string         `db:"kind"`
	MatchID   int64          `db:"match_id"`
	Payload   string         `db:"payload"`
	RunAt     time.Time      `db:"run_at"`
	Attempts  int            `db:"attempts"`
	Status    string         `db:"status"`
	LastError sql.NullString `db:"last_error"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (m taskTableModel) toDomain() (taskqueue.Task, error) {
	payload := make(map[string]any)
	if m.Payload != "" && m.Payload != "{}" {
		if err := sonic.UnmarshalString(m.Payload, &payload); err != nil {
			return taskqueue.Task{}, fmt.Errorf("unmarshal task payload id=%d: %w", m.ID, err)
		}
	}
	return taskqueue.Task{
		ID:        m.ID,
		DedupKey:  m.DedupKey,
		Kind:      taskqueue.Kind(m.Kind),
		MatchID:   m.MatchID,
		Payload:   payload,
		RunAt:     m.RunAt,
		Attempts:  m.Attempts,
		Status:    taskqueue.Status(m.Status),
		LastError: nullStringToString(m.LastError),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

type taskInsertModel struct {
	DedupKey string    `db:"dedup_key"`
	Kind     string    `db:"kind"`
	MatchID  int64     `db:"match_id"`
	Payload  string    `db:"payload"`
	RunAt    time.Time `db:"run_at"`
	Status   string    `db:"status"`
}

func marshalTaskPayload(payload map[string]any) (string, error) {
	if len(payload) == 0 {
		return "{}", nil
	}
	raw, err := sonic.MarshalString(payload)
	if err != nil {
		return "", err
	}
	return raw, nil
}
