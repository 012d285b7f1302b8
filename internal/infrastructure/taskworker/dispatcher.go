package taskworker

import (
	"context"
	"fmt"

	"github.com/riskibarqy/prediction-league/internal/domain/taskqueue"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

// Dispatcher routes a claimed task to the usecase that executes it.
type Dispatcher struct {
	windows *usecase.WindowService
	scoring *usecase.ScoringService
}

func NewDispatcher(windows *usecase.WindowService, scoring *usecase.ScoringService) *Dispatcher {
	return &Dispatcher{windows: windows, scoring: scoring}
}

func (d *Dispatcher) Dispatch(ctx context.Context, task taskqueue.Task) error {
	switch task.Kind {
	case taskqueue.KindCloseWindow:
		return d.windows.CloseWindow(ctx, task.MatchID)
	case taskqueue.KindScoreMatch:
		return d.scoring.ScoreMatch(ctx, task.MatchID, notifyUsersFlag(task))
	default:
		return fmt.Errorf("unknown task kind %q", task.Kind)
	}
}

func notifyUsersFlag(task taskqueue.Task) bool {
	raw, ok := task.Payload["notify_users"]
	if !ok {
		return true
	}
	if flag, ok := raw.(bool); ok {
		return flag
	}
	return true
}
