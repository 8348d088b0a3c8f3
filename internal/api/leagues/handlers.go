// internal/api/leagues/handlers.go
package leagues

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/crtorres/canasta/internal/api/apiutil"
	appdb "github.com/crtorres/canasta/internal/db"
	"github.com/crtorres/canasta/internal/leagues"
	"github.com/crtorres/canasta/internal/models"
	"github.com/crtorres/canasta/internal/stats"
)

const leagueQueryTimeout = 10 * time.Second

var database *appdb.DB

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(db *appdb.DB) {
	database = db
}

// GET /api/v1/league/standings
func HandleStandings(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	teams, finished, err := loadLeagueState(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load league state")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to load standings")
		return
	}

	standings, err := leagues.CalculateStandings(teams, finished)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to calculate standings")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to calculate standings")
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, map[string]any{"standings": standings})
}

// GET /api/v1/league/leaders
//
// Leaderboards for points, rebounds, and assists per game over
// finished games.
func HandleLeaders(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	_, finished, err := loadLeagueState(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load league state")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to load leaders")
		return
	}

	type entry struct {
		player models.PlayerRef
		team   string
		lines  []stats.GameLine
	}
	byPlayer := make(map[string]*entry)
	order := make([]string, 0)

	for _, game := range finished {
		for _, team := range []models.TeamInGame{game.HomeTeam, game.AwayTeam} {
			for _, p := range team.Players {
				e, ok := byPlayer[p.Player.ID]
				if !ok {
					e = &entry{player: p.Player, team: team.Name}
					byPlayer[p.Player.ID] = e
					order = append(order, p.Player.ID)
				}
				e.lines = append(e.lines, stats.GameLine{
					PlayerID: p.Player.ID,
					Totals:   stats.PlayerTotalsFor(p.StatsByPeriod),
				})
			}
		}
	}

	inputs := make([]stats.LeaderInput, 0, len(order))
	for _, id := range order {
		e := byPlayer[id]
		inputs = append(inputs, stats.LeaderInput{Player: e.player, Team: e.team, Lines: e.lines})
	}

	_ = apiutil.WriteJSON(w, http.StatusOK, stats.LeagueLeaders(inputs))
}

// POST /api/v1/league/schedule
//
// Generates a single round-robin over all registered teams and creates
// one scheduled game per fixture.
func HandleGenerateSchedule(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	teamRows, err := database.Queries.ListTeams(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list teams")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to list teams")
		return
	}

	teams := make([]models.TeamScore, 0, len(teamRows))
	for _, t := range teamRows {
		teams = append(teams, models.TeamScore{ID: t.ID, Name: t.Name, LogoURL: t.LogoURL})
	}

	fixtures, err := leagues.GenerateRoundRobin(teams)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	type createdFixture struct {
		leagues.Fixture
		GameID string `json:"gameId"`
	}
	created := make([]createdFixture, 0, len(fixtures))
	for _, f := range fixtures {
		gameID, err := database.CreateGame(ctx, f.HomeTeam.ID, f.AwayTeam.ID)
		if err != nil {
			logger.Error().Err(err).
				Str("home_team_id", f.HomeTeam.ID).
				Str("away_team_id", f.AwayTeam.ID).
				Msg("Failed to create fixture game")
			apiutil.WriteError(w, http.StatusInternalServerError, "failed to create fixtures")
			return
		}
		created = append(created, createdFixture{Fixture: f, GameID: gameID})
	}

	logger.Info().Int("fixtures", len(created)).Msg("League schedule generated")
	_ = apiutil.WriteJSON(w, http.StatusCreated, map[string]any{"fixtures": created})
}

func loadLeagueState(ctx context.Context) ([]models.TeamScore, []*models.Game, error) {
	teamRows, err := database.Queries.ListTeams(ctx)
	if err != nil {
		return nil, nil, err
	}
	teams := make([]models.TeamScore, 0, len(teamRows))
	for _, t := range teamRows {
		teams = append(teams, models.TeamScore{ID: t.ID, Name: t.Name, LogoURL: t.LogoURL})
	}

	finished, err := database.ListGames(ctx, models.StatusFinished)
	if err != nil {
		return nil, nil, err
	}
	return teams, finished, nil
}
