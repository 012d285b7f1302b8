package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

func (h *Handler) RecordMatchResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordMatchResult")
	defer span.End()

	matchID, err := pathInt64(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req recordResultRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.resultService.RecordResult(ctx, matchID, req.HomeGoals, req.AwayGoals); err != nil {
		h.logger.WarnContext(ctx, "record match result failed",
			"match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"match_id": matchID, "recorded": true})
}

type recordResultRequest struct {
	HomeGoals int `json:"home_goals" validate:"gte=0,lte=99"`
	AwayGoals int `json:"away_goals" validate:"gte=0,lte=99"`
}
