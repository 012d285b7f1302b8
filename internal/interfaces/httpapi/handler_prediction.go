package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

func (h *Handler) SubmitPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPrediction")
	defer span.End()

	var req submitPredictionRequest
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

	item, err := h.predictionService.SubmitPrediction(ctx, usecase.SubmitPredictionInput{
		UserID:    req.UserID,
		MatchID:   req.MatchID,
		HomeGoals: req.HomeGoals,
		AwayGoals: req.AwayGoals,
		Wager:     req.Wager,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit prediction failed",
			"user_id", req.UserID, "match_id", req.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, predictionToDTO(item))
}

func (h *Handler) GetUserMatchPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUserMatchPrediction")
	defer span.End()

	userID, err := pathInt64(r, "userID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	matchID, err := pathInt64(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.predictionService.GetUserPrediction(ctx, userID, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get prediction failed",
			"user_id", userID, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, predictionToDTO(item))
}

func pathInt64(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}

type submitPredictionRequest struct {
	UserID    int64 `json:"user_id" validate:"required,gt=0"`
	MatchID   int64 `json:"match_id" validate:"required,gt=0"`
	HomeGoals int   `json:"home_goals" validate:"gte=0,lte=99"`
	AwayGoals int   `json:"away_goals" validate:"gte=0,lte=99"`
	Wager     *int  `json:"wager" validate:"omitempty,gt=0"`
}

type predictionDTO struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	MatchID     int64  `json:"match_id"`
	HomeGoals   int    `json:"home_goals"`
	AwayGoals   int    `json:"away_goals"`
	Outcome     string `json:"outcome"`
	Points      int    `json:"points"`
	Settled     bool   `json:"settled"`
	Wager       *int   `json:"wager,omitempty"`
	SubmittedAt string `json:"submitted_at_utc"`
}

func predictionToDTO(v prediction.Prediction) predictionDTO {
	return predictionDTO{
		ID:          v.ID,
		UserID:      v.UserID,
		MatchID:     v.MatchID,
		HomeGoals:   v.HomeGoals,
		AwayGoals:   v.AwayGoals,
		Outcome:     string(v.Outcome),
		Points:      v.Points,
		Settled:     v.Settled,
		Wager:       v.Wager,
		SubmittedAt: v.SubmittedAt.UTC().Format(time.RFC3339),
	}
}
