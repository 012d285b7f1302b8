package usecase

import (
	"context"

	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

const (
	NotificationTypePredictionsClosed = "predictions_closed"
	NotificationTypePredictionResult  = "prediction_result"
)

// NotificationMetadata is the typed metadata block of the push contract.
type NotificationMetadata struct {
	Type         string `json:"type"`
	MatchID      int64  `json:"match_id"`
	TournamentID *int64 `json:"tournament_id"`
	PointsEarned *int   `json:"points_earned,omitempty"`
}

// Notification is the payload handed to the external dispatcher.
type Notification struct {
	UserIDs  []int64              `json:"user_ids"`
	Title    string               `json:"title"`
	Message  string               `json:"message"`
	Metadata NotificationMetadata `json:"metadata"`
}

// Notifier is the fire-and-forget port to the notification dispatcher.
// Failures must never affect settlement.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, Notification) error { return nil }

func NewNoopNotifier() Notifier {
	return noopNotifier{}
}

// bestEffort runs a side-effect call and absorbs its failure as a
// warning. It is only ever wrapped around notification and cache calls,
// never around the transactional core.
func bestEffort(ctx context.Context, logger *logging.Logger, op string, fn func() error, args ...any) {
	if err := fn(); err != nil {
		fields := append([]any{"op", op, "error", err}, args...)
		logger.WarnContext(ctx, "best-effort side effect failed", fields...)
	}
}
