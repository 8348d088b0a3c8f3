// internal/api/games/handlers.go
package games

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

const gameQueryTimeout = 5 * time.Second

var database *appdb.DB

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(db *appdb.DB) {
	database = db
}

type createGameRequest struct {
	HomeTeamID string `json:"homeTeamId"`
	AwayTeamID string `json:"awayTeamId"`
}

type statusRequest struct {
	Status models.GameStatus `json:"status"`
}

type periodRequest struct {
	Period int `json:"period"`
}

type batchRequest struct {
	Deltas []models.StatDelta `json:"deltas"`
}

type batchResponse struct {
	Success bool   `json:"success"`
	Applied int    `json:"applied"`
	Error   string `json:"error,omitempty"`
}

// GET /api/v1/games
func HandleGamesList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if database == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	status := models.GameStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	if status != "" && !status.Valid() {
		apiutil.WriteError(w, http.StatusBadRequest, "unknown status filter")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), gameQueryTimeout)
	defer cancel()

	games, err := database.ListGames(ctx, status)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list games")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to list games")
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, map[string]any{"games": games})
}

// POST /api/v1/games
func HandleGameCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req createGameRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.HomeTeamID == "" || req.AwayTeamID == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "both team ids are required")
		return
	}
	if req.HomeTeamID == req.AwayTeamID {
		apiutil.WriteError(w, http.StatusBadRequest, "a team cannot play itself")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), gameQueryTimeout)
	defer cancel()

	gameID, err := database.CreateGame(ctx, req.HomeTeamID, req.AwayTeamID)
	if err != nil {
		if errors.Is(err, appdb.ErrNotFound) {
			apiutil.WriteError(w, http.StatusNotFound, "team not found")
			return
		}
		logger.Error().Err(err).Msg("Failed to create game")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to create game")
		return
	}

	game, err := database.GetGame(ctx, gameID)
	if err != nil {
		logger.Error().Err(err).Str("game_id", gameID).Msg("Failed to load created game")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to load created game")
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusCreated, game)
}

// GET /api/v1/games/{id}
//
// The full game read: both rosters with all four periods of stats,
// status, and current period. Never partial or paginated.
func HandleGameDetail(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	gameID := strings.TrimSpace(r.PathValue("id"))
	if gameID == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "game id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), gameQueryTimeout)
	defer cancel()

	game, err := database.GetGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, appdb.ErrNotFound) {
			apiutil.WriteError(w, http.StatusNotFound, "game not found")
			return
		}
		logger.Error().Err(err).Str("game_id", gameID).Msg("Failed to load game")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to load game")
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, game)
}

// DELETE /api/v1/games/{id}
func HandleGameDelete(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	gameID := strings.TrimSpace(r.PathValue("id"))

	ctx, cancel := context.WithTimeout(r.Context(), gameQueryTimeout)
	defer cancel()

	if err := database.Queries.DeleteGame(ctx, gameID); err != nil {
		if errors.Is(err, appdb.ErrNotFound) {
			apiutil.WriteError(w, http.StatusNotFound, "game not found")
			return
		}
		logger.Error().Err(err).Str("game_id", gameID).Msg("Failed to delete game")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to delete game")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// validStatusTransition enforces the game lifecycle: scheduled and live
// may move between each other and into finished; finished is terminal.
func validStatusTransition(from, to models.GameStatus) bool {
	if from == to {
		return true
	}
	if from == models.StatusFinished {
		return false
	}
	return to.Valid()
}

// PUT /api/v1/games/{id}/status
func HandleStatusUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	gameID := strings.TrimSpace(r.PathValue("id"))

	var req statusRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Status.Valid() {
		apiutil.WriteError(w, http.StatusBadRequest, "unknown status")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), gameQueryTimeout)
	defer cancel()

	row, err := database.Queries.GetGameRow(ctx, gameID)
	if err != nil {
		if errors.Is(err, appdb.ErrNotFound) {
			apiutil.WriteError(w, http.StatusNotFound, "game not found")
			return
		}
		logger.Error().Err(err).Str("game_id", gameID).Msg("Failed to load game")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to load game")
		return
	}
	if !validStatusTransition(models.GameStatus(row.Status), req.Status) {
		apiutil.WriteError(w, http.StatusConflict, "finished games cannot change status")
		return
	}

	if err := database.Queries.UpdateGameStatus(ctx, gameID, req.Status); err != nil {
		logger.Error().Err(err).Str("game_id", gameID).Msg("Failed to update status")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to update status")
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, map[string]any{"status": req.Status})
}

// PUT /api/v1/games/{id}/period
func HandlePeriodUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	gameID := strings.TrimSpace(r.PathValue("id"))

	var req periodRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Period < 1 || req.Period > models.NumPeriods {
		apiutil.WriteError(w, http.StatusBadRequest, "period out of range")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), gameQueryTimeout)
	defer cancel()

	if err := database.Queries.UpdateGamePeriod(ctx, gameID, req.Period); err != nil {
		if errors.Is(err, appdb.ErrNotFound) {
			apiutil.WriteError(w, http.StatusNotFound, "game not found")
			return
		}
		logger.Error().Err(err).Str("game_id", gameID).Msg("Failed to update period")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to update period")
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, map[string]any{"currentPeriod": req.Period})
}

// POST /api/v1/games/{id}/stats/batch
//
// The persistence contract for the scoring client: the batch is
// aggregated into field-level increments and applied in one
// all-or-nothing transaction. An empty batch succeeds without effect.
func HandleStatsBatch(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	gameID := strings.TrimSpace(r.PathValue("id"))

	var req batchRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), gameQueryTimeout)
	defer cancel()

	if _, err := database.Queries.GetGameRow(ctx, gameID); err != nil {
		if errors.Is(err, appdb.ErrNotFound) {
			apiutil.WriteError(w, http.StatusNotFound, "game not found")
			return
		}
		logger.Error().Err(err).Str("game_id", gameID).Msg("Failed to load game")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to load game")
		return
	}

	if err := database.ApplyStatBatch(ctx, gameID, req.Deltas); err != nil {
		logger.Error().Err(err).
			Str("game_id", gameID).
			Int("deltas", len(req.Deltas)).
			Msg("Batch stat update failed")
		_ = apiutil.WriteJSON(w, http.StatusUnprocessableEntity, batchResponse{
			Success: false,
			Error:   "failed to update stats",
		})
		return
	}

	logger.Info().
		Str("game_id", gameID).
		Int("deltas", len(req.Deltas)).
		Msg("Batch stat update applied")
	_ = apiutil.WriteJSON(w, http.StatusOK, batchResponse{Success: true, Applied: len(req.Deltas)})
}

// GET /api/v1/games/{id}/scoreboard
//
// Public live view: status, period, and both scores recomputed from the
// stored stats.
func HandleScoreboard(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	gameID := strings.TrimSpace(r.PathValue("id"))

	ctx, cancel := context.WithTimeout(r.Context(), gameQueryTimeout)
	defer cancel()

	game, err := database.GetGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, appdb.ErrNotFound) {
			apiutil.WriteError(w, http.StatusNotFound, "game not found")
			return
		}
		logger.Error().Err(err).Str("game_id", gameID).Msg("Failed to load game")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to load game")
		return
	}

	_ = apiutil.WriteJSON(w, http.StatusOK, ScoreboardFor(game))
}

// ScoreboardFor reduces a full game to its public scoreboard summary.
func ScoreboardFor(game *models.Game) models.Scoreboard {
	return models.Scoreboard{
		GameID:        game.ID,
		Status:        game.Status,
		CurrentPeriod: game.CurrentPeriod,
		HomeTeam: models.TeamScore{
			ID:      game.HomeTeam.ID,
			Name:    game.HomeTeam.Name,
			LogoURL: game.HomeTeam.LogoURL,
			Score:   stats.TeamScore(game.HomeTeam.Players),
		},
		AwayTeam: models.TeamScore{
			ID:      game.AwayTeam.ID,
			Name:    game.AwayTeam.Name,
			LogoURL: game.AwayTeam.LogoURL,
			Score:   stats.TeamScore(game.AwayTeam.Players),
		},
	}
}
