package httpapi

import (
	"net/http"
)

// RunScheduleClosuresJob walks upcoming matches and enqueues a
// window-close task per match that has none yet.
func (h *Handler) RunScheduleClosuresJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunScheduleClosuresJob")
	defer span.End()

	scheduled, err := h.windowService.ScheduleClosures(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "schedule closures job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"scheduled": scheduled})
}

// RunRecomputeRanksJob reassigns dense rank numbers on the global and
// every tournament leaderboard.
func (h *Handler) RunRecomputeRanksJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRecomputeRanksJob")
	defer span.End()

	ranked, err := h.leaderboardService.RecomputeRanks(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "recompute ranks job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"ranked": ranked})
}

// RunScoreMatchJob forces the scoring pass for one match. Useful when a
// parked task needs a manual re-run after the underlying issue is fixed.
func (h *Handler) RunScoreMatchJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunScoreMatchJob")
	defer span.End()

	matchID, err := pathInt64(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.scoringService.ScoreMatch(ctx, matchID, true); err != nil {
		h.logger.ErrorContext(ctx, "score match job failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"match_id": matchID, "scored": true})
}
