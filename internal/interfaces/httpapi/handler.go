package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

type Handler struct {
	predictionService  *usecase.PredictionService
	leaderboardService *usecase.LeaderboardService
	resultService      *usecase.ResultService
	windowService      *usecase.WindowService
	scoringService     *usecase.ScoringService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	predictionService *usecase.PredictionService,
	leaderboardService *usecase.LeaderboardService,
	resultService *usecase.ResultService,
	windowService *usecase.WindowService,
	scoringService *usecase.ScoringService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		predictionService:  predictionService,
		leaderboardService: leaderboardService,
		resultService:      resultService,
		windowService:      windowService,
		scoringService:     scoringService,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
