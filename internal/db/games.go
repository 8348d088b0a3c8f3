// internal/db/games.go
package db

import (
	"context"
	"fmt"

	"github.com/crtorres/canasta/internal/models"
)

// CreateGame inserts a scheduled game between two teams and seeds a
// zero-initialized stats row for every player on both rosters, all in
// one transaction.
func (db *DB) CreateGame(ctx context.Context, homeTeamID, awayTeamID string) (string, error) {
	var gameID string
	err := db.RunInTx(ctx, func(tx *DB) error {
		if _, err := tx.Queries.GetTeam(ctx, homeTeamID); err != nil {
			return fmt.Errorf("home team: %w", err)
		}
		if _, err := tx.Queries.GetTeam(ctx, awayTeamID); err != nil {
			return fmt.Errorf("away team: %w", err)
		}

		game, err := tx.Queries.InsertGame(ctx, homeTeamID, awayTeamID)
		if err != nil {
			return err
		}
		gameID = game.ID

		var playerIDs []string
		for _, teamID := range []string{homeTeamID, awayTeamID} {
			players, err := tx.Queries.ListPlayersByTeam(ctx, teamID)
			if err != nil {
				return err
			}
			for _, p := range players {
				playerIDs = append(playerIDs, p.ID)
			}
		}
		return tx.Queries.SeedGameStats(ctx, gameID, playerIDs)
	})
	if err != nil {
		return "", err
	}
	return gameID, nil
}

// GetGame assembles the full game state: both rosters with all four
// periods of stats, status, and current period. Plays are transient
// client data and never part of the server read.
func (db *DB) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	row, err := db.Queries.GetGameRow(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return db.assembleGame(ctx, row)
}

// ListGames assembles every game, newest first. An empty status lists
// all games.
func (db *DB) ListGames(ctx context.Context, status models.GameStatus) ([]*models.Game, error) {
	rows, err := db.Queries.ListGameRows(ctx, string(status))
	if err != nil {
		return nil, err
	}
	games := make([]*models.Game, 0, len(rows))
	for _, row := range rows {
		game, err := db.assembleGame(ctx, row)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, nil
}

func (db *DB) assembleGame(ctx context.Context, row GameRow) (*models.Game, error) {
	statsRows, err := db.Queries.GetStatsForGame(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	statsByPlayer := make(map[string][models.NumPeriods]models.PeriodStats, len(statsRows))
	for _, s := range statsRows {
		statsByPlayer[s.PlayerID] = s.ByPeriod
	}

	home, err := db.assembleTeam(ctx, row.HomeTeamID, statsByPlayer)
	if err != nil {
		return nil, err
	}
	away, err := db.assembleTeam(ctx, row.AwayTeamID, statsByPlayer)
	if err != nil {
		return nil, err
	}

	return &models.Game{
		ID:            row.ID,
		CreatedAt:     row.CreatedAt,
		HomeTeam:      home,
		AwayTeam:      away,
		CurrentPeriod: row.CurrentPeriod,
		Status:        models.GameStatus(row.Status),
	}, nil
}

func (db *DB) assembleTeam(ctx context.Context, teamID string, statsByPlayer map[string][models.NumPeriods]models.PeriodStats) (models.TeamInGame, error) {
	team, err := db.Queries.GetTeam(ctx, teamID)
	if err != nil {
		return models.TeamInGame{}, fmt.Errorf("team %s: %w", teamID, err)
	}
	players, err := db.Queries.ListPlayersByTeam(ctx, teamID)
	if err != nil {
		return models.TeamInGame{}, err
	}

	roster := make([]models.PlayerInGame, 0, len(players))
	for _, p := range players {
		// Missing rows fall back to the zero value so every player
		// always carries four zero-initialized periods.
		roster = append(roster, models.PlayerInGame{
			Player: models.PlayerRef{
				ID:       p.ID,
				Name:     p.Name,
				Number:   p.JerseyNumber,
				ImageURL: p.ImageURL,
			},
			StatsByPeriod: statsByPlayer[p.ID],
		})
	}

	return models.TeamInGame{
		ID:      team.ID,
		Name:    team.Name,
		LogoURL: team.LogoURL,
		Players: roster,
	}, nil
}
