package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/predictions", handler.SubmitPrediction)
	mux.HandleFunc("GET /v1/users/{userID}/matches/{matchID}/prediction", handler.GetUserMatchPrediction)
	mux.HandleFunc("GET /v1/leaderboards/global", handler.GetGlobalLeaderboard)
	mux.HandleFunc("GET /v1/leaderboards/tournaments/{tournamentID}", handler.GetTournamentLeaderboard)
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/matches/{matchID}/result",
		RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RecordMatchResult)))
	mux.Handle("POST /v1/internal/jobs/schedule-closures",
		RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunScheduleClosuresJob)))
	mux.Handle("POST /v1/internal/jobs/recompute-ranks",
		RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRecomputeRanksJob)))
	mux.Handle("POST /v1/internal/jobs/score-match/{matchID}",
		RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunScoreMatchJob)))
}
