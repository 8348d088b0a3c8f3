// cmd/server/server.go
package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/crtorres/canasta/internal/api"
	"github.com/crtorres/canasta/internal/api/games"
	"github.com/crtorres/canasta/internal/api/leagues"
	"github.com/crtorres/canasta/internal/api/players"
	"github.com/crtorres/canasta/internal/api/shots"
	"github.com/crtorres/canasta/internal/api/teams"
	"github.com/crtorres/canasta/internal/config"
	"github.com/crtorres/canasta/internal/db"
	"github.com/crtorres/canasta/internal/live"
	"github.com/crtorres/canasta/internal/ratelimit"
)

func newServer(cfg *config.Config, database *db.DB, hub *live.Hub) *http.Server {
	router := http.NewServeMux()

	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	teams.InitHandlers(database)
	players.InitHandlers(database)
	games.InitHandlers(database)
	shots.InitHandlers(database)
	leagues.InitHandlers(database)

	registerRoutes(router, hub)

	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, hub *live.Hub) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Teams and rosters
	mux.HandleFunc("GET /api/v1/teams", teams.HandleTeamsList)
	mux.HandleFunc("POST /api/v1/teams", teams.HandleTeamCreate)
	mux.HandleFunc("GET /api/v1/teams/{id}", teams.HandleTeamDetail)
	mux.HandleFunc("PUT /api/v1/teams/{id}", teams.HandleTeamUpdate)
	mux.HandleFunc("DELETE /api/v1/teams/{id}", teams.HandleTeamDelete)
	mux.HandleFunc("POST /api/v1/teams/{id}/players", teams.HandlePlayerCreate)

	// Players
	mux.HandleFunc("GET /api/v1/players/{id}", players.HandlePlayerDetail)
	mux.HandleFunc("PUT /api/v1/players/{id}", players.HandlePlayerUpdate)
	mux.HandleFunc("DELETE /api/v1/players/{id}", players.HandlePlayerDelete)

	// Games and scoring
	mux.HandleFunc("GET /api/v1/games", games.HandleGamesList)
	mux.HandleFunc("POST /api/v1/games", games.HandleGameCreate)
	mux.HandleFunc("GET /api/v1/games/{id}", games.HandleGameDetail)
	mux.HandleFunc("DELETE /api/v1/games/{id}", games.HandleGameDelete)
	mux.HandleFunc("PUT /api/v1/games/{id}/status", games.HandleStatusUpdate)
	mux.HandleFunc("PUT /api/v1/games/{id}/period", games.HandlePeriodUpdate)
	mux.HandleFunc("GET /api/v1/games/{id}/scoreboard", games.HandleScoreboard)

	// Stat writes go through the per-IP limiter.
	limiter := ratelimit.New(nil)
	mux.Handle("POST /api/v1/games/{id}/stats/batch", limiter.Middleware(http.HandlerFunc(games.HandleStatsBatch)))

	// Shot chart and per-action registration
	mux.HandleFunc("GET /api/v1/games/{id}/shots", shots.HandleShotsList)
	mux.Handle("POST /api/v1/games/{id}/shots", limiter.Middleware(http.HandlerFunc(shots.HandleShotRegister)))
	mux.Handle("POST /api/v1/games/{id}/events", limiter.Middleware(http.HandlerFunc(shots.HandleEventRegister)))

	// Live feed
	mux.HandleFunc("GET /api/v1/games/{id}/live", hub.ServeWS)

	// League tables
	mux.HandleFunc("GET /api/v1/league/standings", leagues.HandleStandings)
	mux.HandleFunc("GET /api/v1/league/leaders", leagues.HandleLeaders)
	mux.HandleFunc("POST /api/v1/league/schedule", leagues.HandleGenerateSchedule)
}
