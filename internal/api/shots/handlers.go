// internal/api/shots/handlers.go
package shots

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/crtorres/canasta/internal/api/apiutil"
	appdb "github.com/crtorres/canasta/internal/db"
	"github.com/crtorres/canasta/internal/models"
)

const shotQueryTimeout = 5 * time.Second

var database *appdb.DB

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(db *appdb.DB) {
	database = db
}

type shotRequest struct {
	PlayerID string  `json:"playerId"`
	Period   int     `json:"period"`
	Points   int     `json:"points"`
	Made     bool    `json:"made"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

type eventRequest struct {
	PlayerID string           `json:"playerId"`
	Period   int              `json:"period"`
	Event    models.EventType `json:"event"`
}

// POST /api/v1/games/{id}/shots
//
// Registers one shot immediately: the shot-chart record and the stat
// increment land in the same transaction. This is the connected-scorer
// path; offline work goes through the batch endpoint instead.
func HandleShotRegister(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	gameID := strings.TrimSpace(r.PathValue("id"))

	var req shotRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), shotQueryTimeout)
	defer cancel()

	if err := requireLiveGame(ctx, w, logger, gameID); err != nil {
		return
	}

	shot, err := database.RegisterShot(ctx, gameID, models.Shot{
		PlayerID: req.PlayerID,
		Period:   req.Period,
		Points:   req.Points,
		Made:     req.Made,
		X:        req.X,
		Y:        req.Y,
	})
	if err != nil {
		if errors.Is(err, appdb.ErrNotFound) {
			apiutil.WriteError(w, http.StatusNotFound, "player is not in this game")
			return
		}
		logger.Error().Err(err).
			Str("game_id", gameID).
			Str("player_id", req.PlayerID).
			Msg("Failed to register shot")
		apiutil.WriteError(w, http.StatusBadRequest, "failed to register shot")
		return
	}

	delta := models.NewShotDelta(req.PlayerID, req.Period, req.Points, req.Made)
	_ = apiutil.WriteJSON(w, http.StatusCreated, map[string]any{
		"shot":    shot,
		"summary": playSummary(ctx, req.PlayerID, delta),
	})
}

// POST /api/v1/games/{id}/events
func HandleEventRegister(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	gameID := strings.TrimSpace(r.PathValue("id"))

	var req eventRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), shotQueryTimeout)
	defer cancel()

	if err := requireLiveGame(ctx, w, logger, gameID); err != nil {
		return
	}

	delta := models.NewEventDelta(req.PlayerID, req.Period, req.Event)
	if err := database.RegisterEvent(ctx, gameID, delta); err != nil {
		if errors.Is(err, appdb.ErrNotFound) {
			apiutil.WriteError(w, http.StatusNotFound, "player is not in this game")
			return
		}
		logger.Error().Err(err).
			Str("game_id", gameID).
			Str("player_id", req.PlayerID).
			Msg("Failed to register event")
		apiutil.WriteError(w, http.StatusBadRequest, "failed to register event")
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusCreated, map[string]any{
		"summary": playSummary(ctx, req.PlayerID, delta),
	})
}

// GET /api/v1/games/{id}/shots
func HandleShotsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	gameID := strings.TrimSpace(r.PathValue("id"))

	ctx, cancel := context.WithTimeout(r.Context(), shotQueryTimeout)
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

	shots, err := database.Queries.ListShotsForGame(ctx, gameID)
	if err != nil {
		logger.Error().Err(err).Str("game_id", gameID).Msg("Failed to list shots")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to list shots")
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, map[string]any{"shots": shots})
}

// playSummary renders the play-by-play line for a registered action.
func playSummary(ctx context.Context, playerID string, delta models.StatDelta) string {
	name := playerID
	if player, err := database.Queries.GetPlayer(ctx, playerID); err == nil {
		name = player.Name
	}
	return models.DescribeDelta(name, delta)
}

// requireLiveGame rejects stat mutations on games that are not live. A
// non-nil return means the response has already been written.
func requireLiveGame(ctx context.Context, w http.ResponseWriter, logger *zerolog.Logger, gameID string) error {
	row, err := database.Queries.GetGameRow(ctx, gameID)
	if err != nil {
		if errors.Is(err, appdb.ErrNotFound) {
			apiutil.WriteError(w, http.StatusNotFound, "game not found")
			return err
		}
		logger.Error().Err(err).Str("game_id", gameID).Msg("Failed to load game")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to load game")
		return err
	}
	if models.GameStatus(row.Status) != models.StatusLive {
		apiutil.WriteError(w, http.StatusConflict, "game is not live")
		return errors.New("game is not live")
	}
	return nil
}
