package httpapi

import (
	"net/http"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
)

func (h *Handler) GetGlobalLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGlobalLeaderboard")
	defer span.End()

	entries, err := h.leaderboardService.GetGlobalLeaderboard(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get global leaderboard failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leaderboardEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, globalEntryToDTO(entry))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetTournamentLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTournamentLeaderboard")
	defer span.End()

	tournamentID, err := pathInt64(r, "tournamentID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	entries, err := h.leaderboardService.GetTournamentLeaderboard(ctx, tournamentID)
	if err != nil {
		h.logger.ErrorContext(ctx, "get tournament leaderboard failed",
			"tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leaderboardEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, tournamentEntryToDTO(entry))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

type leaderboardEntryDTO struct {
	UserID           int64   `json:"user_id"`
	TournamentID     *int64  `json:"tournament_id,omitempty"`
	TotalPoints      int     `json:"total_points"`
	TotalPredictions int     `json:"total_predictions"`
	ExactCount       int     `json:"exact_count"`
	OutcomeCount     int     `json:"outcome_count"`
	Accuracy         float64 `json:"accuracy"`
	Rank             *int    `json:"rank,omitempty"`
	UpdatedAt        string  `json:"updated_at_utc"`
}

func globalEntryToDTO(v leaderboard.Entry) leaderboardEntryDTO {
	return leaderboardEntryDTO{
		UserID:           v.UserID,
		TotalPoints:      v.TotalPoints,
		TotalPredictions: v.TotalPredictions,
		ExactCount:       v.ExactCount,
		OutcomeCount:     v.OutcomeCount,
		Accuracy:         v.Accuracy,
		Rank:             v.Rank,
		UpdatedAt:        v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func tournamentEntryToDTO(v leaderboard.TournamentEntry) leaderboardEntryDTO {
	tournamentID := v.TournamentID
	return leaderboardEntryDTO{
		UserID:           v.UserID,
		TournamentID:     &tournamentID,
		TotalPoints:      v.TotalPoints,
		TotalPredictions: v.TotalPredictions,
		ExactCount:       v.ExactCount,
		OutcomeCount:     v.OutcomeCount,
		Accuracy:         v.Accuracy,
		Rank:             v.Rank,
		UpdatedAt:        v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
