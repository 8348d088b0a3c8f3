// internal/api/teams/handlers.go
package teams

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

const teamQueryTimeout = 5 * time.Second

var database *appdb.DB

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(db *appdb.DB) {
	database = db
}

type teamRequest struct {
	Name    string `json:"name"`
	LogoURL string `json:"logoUrl"`
}

type playerRequest struct {
	Name         string `json:"name"`
	JerseyNumber int    `json:"jerseyNumber"`
	ImageURL     string `json:"imageUrl"`
}

type teamResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logoUrl,omitempty"`
	Wins    int    `json:"wins"`
	Losses  int    `json:"losses"`
}

// GET /api/v1/teams
func HandleTeamsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), teamQueryTimeout)
	defer cancel()

	teams, err := database.Queries.ListTeams(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list teams")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to list teams")
		return
	}

	results, err := finishedGameResults(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load finished games")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to load team records")
		return
	}

	out := make([]teamResponse, 0, len(teams))
	for _, team := range teams {
		wins, losses := stats.WinLoss(team.ID, results)
		out = append(out, teamResponse{
			ID:      team.ID,
			Name:    team.Name,
			LogoURL: team.LogoURL,
			Wins:    wins,
			Losses:  losses,
		})
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, map[string]any{"teams": out})
}

// POST /api/v1/teams
func HandleTeamCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req teamRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "team name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamQueryTimeout)
	defer cancel()

	team, err := database.Queries.CreateTeam(ctx, strings.TrimSpace(req.Name), req.LogoURL)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create team")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to create team")
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusCreated, teamResponse{ID: team.ID, Name: team.Name, LogoURL: team.LogoURL})
}

// GET /api/v1/teams/{id}
//
// Team detail: identity, record, roster, and match history against the
// finished games.
func HandleTeamDetail(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	teamID := strings.TrimSpace(r.PathValue("id"))

	ctx, cancel := context.WithTimeout(r.Context(), teamQueryTimeout)
	defer cancel()

	team, err := database.Queries.GetTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, appdb.ErrNotFound) {
			apiutil.WriteError(w, http.StatusNotFound, "team not found")
			return
		}
		logger.Error().Err(err).Str("team_id", teamID).Msg("Failed to load team")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to load team")
		return
	}

	players, err := database.Queries.ListPlayersByTeam(ctx, teamID)
	if err != nil {
		logger.Error().Err(err).Str("team_id", teamID).Msg("Failed to load roster")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to load roster")
		return
	}

	finished, err := database.ListGames(ctx, models.StatusFinished)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load finished games")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to load match history")
		return
	}

	type matchEntry struct {
		GameID    string `json:"gameId"`
		HomeTeam  string `json:"homeTeam"`
		AwayTeam  string `json:"awayTeam"`
		HomeScore int    `json:"homeScore"`
		AwayScore int    `json:"awayScore"`
	}

	var history []matchEntry
	var results []stats.GameResult
	for _, game := range finished {
		home := stats.TeamScore(game.HomeTeam.Players)
		away := stats.TeamScore(game.AwayTeam.Players)
		results = append(results, stats.GameResult{
			HomeTeamID: game.HomeTeam.ID,
			AwayTeamID: game.AwayTeam.ID,
			HomeScore:  home,
			AwayScore:  away,
		})
		if game.HomeTeam.ID == teamID || game.AwayTeam.ID == teamID {
			history = append(history, matchEntry{
				GameID:    game.ID,
				HomeTeam:  game.HomeTeam.Name,
				AwayTeam:  game.AwayTeam.Name,
				HomeScore: home,
				AwayScore: away,
			})
		}
	}
	wins, losses := stats.WinLoss(teamID, results)

	roster := make([]models.PlayerRef, 0, len(players))
	for _, p := range players {
		roster = append(roster, models.PlayerRef{
			ID:       p.ID,
			Name:     p.Name,
			Number:   p.JerseyNumber,
			ImageURL: p.ImageURL,
		})
	}

	_ = apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"team":         teamResponse{ID: team.ID, Name: team.Name, LogoURL: team.LogoURL, Wins: wins, Losses: losses},
		"players":      roster,
		"matchHistory": history,
	})
}

// PUT /api/v1/teams/{id}
func HandleTeamUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	teamID := strings.TrimSpace(r.PathValue("id"))

	var req teamRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "team name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamQueryTimeout)
	defer cancel()

	if err := database.Queries.UpdateTeam(ctx, teamID, strings.TrimSpace(req.Name), req.LogoURL); err != nil {
		if errors.Is(err, appdb.ErrNotFound) {
			apiutil.WriteError(w, http.StatusNotFound, "team not found")
			return
		}
		logger.Error().Err(err).Str("team_id", teamID).Msg("Failed to update team")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to update team")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/v1/teams/{id}
func HandleTeamDelete(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	teamID := strings.TrimSpace(r.PathValue("id"))

	ctx, cancel := context.WithTimeout(r.Context(), teamQueryTimeout)
	defer cancel()

	if err := database.Queries.DeleteTeam(ctx, teamID); err != nil {
		if errors.Is(err, appdb.ErrNotFound) {
			apiutil.WriteError(w, http.StatusNotFound, "team not found")
			return
		}
		logger.Error().Err(err).Str("team_id", teamID).Msg("Failed to delete team")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to delete team")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/teams/{id}/players
func HandlePlayerCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	teamID := strings.TrimSpace(r.PathValue("id"))

	var req playerRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "player name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamQueryTimeout)
	defer cancel()

	if _, err := database.Queries.GetTeam(ctx, teamID); err != nil {
		if errors.Is(err, appdb.ErrNotFound) {
			apiutil.WriteError(w, http.StatusNotFound, "team not found")
			return
		}
		logger.Error().Err(err).Str("team_id", teamID).Msg("Failed to load team")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to load team")
		return
	}

	player, err := database.Queries.CreatePlayer(ctx, teamID, strings.TrimSpace(req.Name), req.JerseyNumber, req.ImageURL)
	if err != nil {
		logger.Error().Err(err).Str("team_id", teamID).Msg("Failed to create player")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to create player")
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusCreated, models.PlayerRef{
		ID:       player.ID,
		Name:     player.Name,
		Number:   player.JerseyNumber,
		ImageURL: player.ImageURL,
	})
}

func finishedGameResults(ctx context.Context) ([]stats.GameResult, error) {
	finished, err := database.ListGames(ctx, models.StatusFinished)
	if err != nil {
		return nil, err
	}
	results := make([]stats.GameResult, 0, len(finished))
	for _, game := range finished {
		results = append(results, stats.GameResult{
			HomeTeamID: game.HomeTeam.ID,
			AwayTeamID: game.AwayTeam.ID,
			HomeScore:  stats.TeamScore(game.HomeTeam.Players),
			AwayScore:  stats.TeamScore(game.AwayTeam.Players),
		})
	}
	return results, nil
}
