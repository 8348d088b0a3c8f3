// internal/api/players/handlers.go
package players

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/crtorres/canasta/internal/api/apiutil"
	appdb "github.com/crtorres/canasta/internal/db"
	"github.com/crtorres/canasta/internal/models"
	"github.com/crtorres/canasta/internal/stats"
)

const playerQueryTimeout = 5 * time.Second

var database *appdb.DB

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(db *appdb.DB) {
	database = db
}

type playerRequest struct {
	Name         string `json:"name"`
	JerseyNumber int    `json:"jerseyNumber"`
	ImageURL     string `json:"imageUrl"`
}

// GET /api/v1/players/{id}
//
// Player detail: identity, team, per-game averages, and game log over
// finished games.
func HandlePlayerDetail(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	playerID := strings.TrimSpace(r.PathValue("id"))

	ctx, cancel := context.WithTimeout(r.Context(), playerQueryTimeout)
	defer cancel()

	player, err := database.Queries.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, appdb.ErrNotFound) {
			apiutil.WriteError(w, http.StatusNotFound, "player not found")
			return
		}
		logger.Error().Err(err).Str("player_id", playerID).Msg("Failed to load player")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to load player")
		return
	}

	team, err := database.Queries.GetTeam(ctx, player.TeamID)
	if err != nil {
		logger.Error().Err(err).Str("team_id", player.TeamID).Msg("Failed to load player team")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to load player team")
		return
	}

	statLines, err := database.Queries.GetStatsForPlayer(ctx, playerID)
	if err != nil {
		logger.Error().Err(err).Str("player_id", playerID).Msg("Failed to load player stats")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to load player stats")
		return
	}

	type gameLog struct {
		GameID    string `json:"gameId"`
		Points    int    `json:"points"`
		Rebounds  int    `json:"rebounds"`
		Assists   int    `json:"assists"`
		Fouls     int    `json:"fouls"`
		Valuation int    `json:"valuation"`
	}

	var lines []stats.GameLine
	var logs []gameLog
	for _, sl := range statLines {
		row, err := database.Queries.GetGameRow(ctx, sl.GameID)
		if err != nil {
			logger.Error().Err(err).Str("game_id", sl.GameID).Msg("Failed to load game for log")
			continue
		}
		if models.GameStatus(row.Status) != models.StatusFinished {
			continue
		}
		totals := stats.PlayerTotalsFor(sl.ByPeriod)
		lines = append(lines, stats.GameLine{PlayerID: playerID, Totals: totals})
		logs = append(logs, gameLog{
			GameID:    sl.GameID,
			Points:    totals.Points,
			Rebounds:  totals.Rebounds,
			Assists:   totals.Assists,
			Fouls:     totals.Fouls,
			Valuation: totals.Valuation,
		})
	}

	_ = apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"player": models.PlayerRef{
			ID:       player.ID,
			Name:     player.Name,
			Number:   player.JerseyNumber,
			ImageURL: player.ImageURL,
		},
		"team":     map[string]string{"id": team.ID, "name": team.Name},
		"averages": stats.PlayerAverages(lines),
		"gameLog":  logs,
	})
}

// PUT /api/v1/players/{id}
func HandlePlayerUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	playerID := strings.TrimSpace(r.PathValue("id"))

	var req playerRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "player name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), playerQueryTimeout)
	defer cancel()

	if err := database.Queries.UpdatePlayer(ctx, playerID, strings.TrimSpace(req.Name), req.JerseyNumber, req.ImageURL); err != nil {
		if errors.Is(err, appdb.ErrNotFound) {
			apiutil.WriteError(w, http.StatusNotFound, "player not found")
			return
		}
		logger.Error().Err(err).Str("player_id", playerID).Msg("Failed to update player")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to update player")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/v1/players/{id}
func HandlePlayerDelete(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	playerID := strings.TrimSpace(r.PathValue("id"))

	ctx, cancel := context.WithTimeout(r.Context(), playerQueryTimeout)
	defer cancel()

	if err := database.Queries.DeletePlayer(ctx, playerID); err != nil {
		if errors.Is(err, appdb.ErrNotFound) {
			apiutil.WriteError(w, http.StatusNotFound, "player not found")
			return
		}
		logger.Error().Err(err).Str("player_id", playerID).Msg("Failed to delete player")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to delete player")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
