package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

const testJobToken = "job-secret"

func newTestRouter(t *testing.T, matches ...match.Match) (http.Handler, *memory.MatchRepository) {
	t.Helper()

	matchRepo := memory.NewMatchRepository(matches...)
	predictionRepo := memory.NewPredictionRepository(matchRepo)
	leaderboardRepo := memory.NewLeaderboardRepository()
	taskRepo := memory.NewTaskRepository()

	leaderboards := usecase.NewLeaderboardService(predictionRepo, leaderboardRepo, nil, nil)
	predictions := usecase.NewPredictionService(matchRepo, predictionRepo, nil, nil)
	windows := usecase.NewWindowService(matchRepo, predictionRepo, taskRepo, nil, nil, usecase.WindowConfig{}, nil)
	scoring := usecase.NewScoringService(matchRepo, predictionRepo, leaderboards, taskRepo, nil, nil, usecase.ScoringConfig{}, nil)
	results := usecase.NewResultService(matchRepo, taskRepo, nil, nil)

	handler := NewHandler(predictions, leaderboards, results, windows, scoring, nil)
	return NewRouter(handler, nil, testJobToken), matchRepo
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	return body
}

func openMatch(id int64) match.Match {
	return match.Match{
		ID:                 id,
		HomeTeam:           "Persija Jakarta",
		AwayTeam:           "Persib Bandung",
		State:              match.StateOpen,
		Active:             true,
		PredictionsEnabled: true,
		KickoffAt:          time.Now().UTC().Add(24 * time.Hour),
	}
}

func TestRouter_SubmitAndFetchPrediction(t *testing.T) {
	router, _ := newTestRouter(t, openMatch(1))

	req := httptest.NewRequest(http.MethodPost, "/v1/predictions",
		strings.NewReader(`{"user_id":7,"match_id":1,"home_goals":2,"away_goals":1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got=%d want=%d body=%s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	data, _ := body["data"].(map[string]any)
	if got, _ := data["outcome"].(string); got != "home" {
		t.Fatalf("unexpected derived outcome: %v", data["outcome"])
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/users/7/matches/1/prediction", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	body = decodeEnvelope(t, rec)
	data, _ = body["data"].(map[string]any)
	if got, _ := data["home_goals"].(float64); got != 2 {
		t.Fatalf("unexpected home goals: %v", data["home_goals"])
	}
}

func TestRouter_SubmitPrediction_DuplicateConflict(t *testing.T) {
	router, _ := newTestRouter(t, openMatch(1))

	payload := `{"user_id":7,"match_id":1,"home_goals":2,"away_goals":1}`
	for i, wantStatus := range []int{http.StatusCreated, http.StatusConflict} {
		req := httptest.NewRequest(http.MethodPost, "/v1/predictions", strings.NewReader(payload))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != wantStatus {
			t.Fatalf("attempt %d: unexpected status got=%d want=%d", i+1, rec.Code, wantStatus)
		}
	}
}

func TestRouter_SubmitPrediction_RejectsUnknownFields(t *testing.T) {
	router, _ := newTestRouter(t, openMatch(1))

	req := httptest.NewRequest(http.MethodPost, "/v1/predictions",
		strings.NewReader(`{"user_id":7,"match_id":1,"home_goals":2,"away_goals":1,"outcome":"away"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("client-supplied outcome must be rejected: got=%d", rec.Code)
	}
}

func TestRouter_SubmitPrediction_WindowClosed(t *testing.T) {
	closed := openMatch(1)
	closeAt := time.Now().UTC().Add(-time.Hour)
	closed.PredictionsCloseAt = &closeAt

	router, _ := newTestRouter(t, closed)

	req := httptest.NewRequest(http.MethodPost, "/v1/predictions",
		strings.NewReader(`{"user_id":7,"match_id":1,"home_goals":2,"away_goals":1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusUnprocessableEntity)
	}
	body := decodeEnvelope(t, rec)
	errorObj, _ := body["error"].(map[string]any)
	if got, _ := errorObj["status"].(string); got != "FAILED_PRECONDITION" {
		t.Fatalf("unexpected error status: %v", errorObj["status"])
	}
}

func TestRouter_GlobalLeaderboard(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/leaderboards/global", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestRouter_InternalResultEndpoint(t *testing.T) {
	closed := openMatch(1)
	closed.State = match.StateClosed

	router, matchRepo := newTestRouter(t, closed)

	// Without the token the endpoint is sealed.
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/matches/1/result",
		strings.NewReader(`{"home_goals":2,"away_goals":1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status without token: got=%d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/internal/matches/1/result",
		strings.NewReader(`{"home_goals":2,"away_goals":1}`))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status with token: got=%d body=%s", rec.Code, rec.Body.String())
	}

	m, _, _ := matchRepo.GetByID(req.Context(), 1)
	if m.State != match.StateFinished {
		t.Fatalf("result endpoint must finish the match: got=%s", m.State)
	}
}

func TestRouter_InternalJobEndpoints(t *testing.T) {
	router, _ := newTestRouter(t, openMatch(1))

	for _, path := range []string{
		"/v1/internal/jobs/schedule-closures",
		"/v1/internal/jobs/recompute-ranks",
	} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("X-Internal-Job-Token", testJobToken)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status for %s: got=%d body=%s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestRouter_Healthz(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d", rec.Code)
	}
}
