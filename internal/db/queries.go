// internal/db/queries.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crtorres/canasta/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Queries is the hand-written query layer. It is bound to either a
// *sql.DB or a *sql.Tx through the DBTX interface.
type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

type Team struct {
	ID        string
	Name      string
	LogoURL   string
	CreatedAt time.Time
}

type Player struct {
	ID           string
	TeamID       string
	Name         string
	JerseyNumber int
	ImageURL     string
	CreatedAt    time.Time
}

type GameRow struct {
	ID            string
	HomeTeamID    string
	AwayTeamID    string
	Status        string
	CurrentPeriod int
	CreatedAt     time.Time
}

// PlayerGameStats is one player's full stat line for one game.
type PlayerGameStats struct {
	ID       int64
	GameID   string
	PlayerID string
	ByPeriod [models.NumPeriods]models.PeriodStats
}

// statColumns lists the per-period counters in scan order.
var statColumns = buildStatColumns()

func buildStatColumns() []string {
	cols := make([]string, 0, models.NumPeriods*9)
	for p := 1; p <= models.NumPeriods; p++ {
		prefix := fmt.Sprintf("p%d_", p)
		cols = append(cols,
			prefix+"points1_made", prefix+"points1_attempted",
			prefix+"points2_made", prefix+"points2_attempted",
			prefix+"points3_made", prefix+"points3_attempted",
			prefix+"rebounds", prefix+"assists", prefix+"fouls",
		)
	}
	return cols
}

// statScanTargets returns scan destinations matching statColumns order.
func statScanTargets(stats *[models.NumPeriods]models.PeriodStats) []any {
	targets := make([]any, 0, len(statColumns))
	for i := range stats {
		ps := &stats[i]
		targets = append(targets,
			&ps.Points1.Made, &ps.Points1.Attempted,
			&ps.Points2.Made, &ps.Points2.Attempted,
			&ps.Points3.Made, &ps.Points3.Attempted,
			&ps.Rebounds, &ps.Assists, &ps.Fouls,
		)
	}
	return targets
}

func joinColumns(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}

// --- Teams ---

func (q *Queries) CreateTeam(ctx context.Context, name, logoURL string) (Team, error) {
	team := Team{
		ID:        uuid.New().String(),
		Name:      name,
		LogoURL:   logoURL,
		CreatedAt: time.Now().UTC(),
	}
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO teams (id, name, logo_url, created_at) VALUES (?, ?, ?, ?)",
		team.ID, team.Name, team.LogoURL, team.CreatedAt,
	)
	if err != nil {
		return Team{}, fmt.Errorf("create team: %w", err)
	}
	return team, nil
}

func (q *Queries) GetTeam(ctx context.Context, id string) (Team, error) {
	var team Team
	err := q.db.QueryRowContext(ctx,
		"SELECT id, name, logo_url, created_at FROM teams WHERE id = ?", id,
	).Scan(&team.ID, &team.Name, &team.LogoURL, &team.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Team{}, ErrNotFound
	}
	if err != nil {
		return Team{}, fmt.Errorf("get team: %w", err)
	}
	return team, nil
}

func (q *Queries) ListTeams(ctx context.Context) ([]Team, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, name, logo_url, created_at FROM teams ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		var team Team
		if err := rows.Scan(&team.ID, &team.Name, &team.LogoURL, &team.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (q *Queries) UpdateTeam(ctx context.Context, id, name, logoURL string) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE teams SET name = ?, logo_url = ? WHERE id = ?", name, logoURL, id)
	if err != nil {
		return fmt.Errorf("update team: %w", err)
	}
	return requireRowAffected(res)
}

func (q *Queries) DeleteTeam(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM teams WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	return requireRowAffected(res)
}

// --- Players ---

func (q *Queries) CreatePlayer(ctx context.Context, teamID, name string, jerseyNumber int, imageURL string) (Player, error) {
	player := Player{
		ID:           uuid.New().String(),
		TeamID:       teamID,
		Name:         name,
		JerseyNumber: jerseyNumber,
		ImageURL:     imageURL,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO players (id, team_id, name, jersey_number, image_url, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		player.ID, player.TeamID, player.Name, player.JerseyNumber, player.ImageURL, player.CreatedAt,
	)
	if err != nil {
		return Player{}, fmt.Errorf("create player: %w", err)
	}
	return player, nil
}

func (q *Queries) GetPlayer(ctx context.Context, id string) (Player, error) {
	var p Player
	err := q.db.QueryRowContext(ctx,
		"SELECT id, team_id, name, jersey_number, image_url, created_at FROM players WHERE id = ?", id,
	).Scan(&p.ID, &p.TeamID, &p.Name, &p.JerseyNumber, &p.ImageURL, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Player{}, ErrNotFound
	}
	if err != nil {
		return Player{}, fmt.Errorf("get player: %w", err)
	}
	return p, nil
}

func (q *Queries) ListPlayersByTeam(ctx context.Context, teamID string) ([]Player, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, team_id, name, jersey_number, image_url, created_at FROM players WHERE team_id = ? ORDER BY jersey_number",
		teamID)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.TeamID, &p.Name, &p.JerseyNumber, &p.ImageURL, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (q *Queries) UpdatePlayer(ctx context.Context, id, name string, jerseyNumber int, imageURL string) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE players SET name = ?, jersey_number = ?, image_url = ? WHERE id = ?",
		name, jerseyNumber, imageURL, id)
	if err != nil {
		return fmt.Errorf("update player: %w", err)
	}
	return requireRowAffected(res)
}

func (q *Queries) DeletePlayer(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM players WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	return requireRowAffected(res)
}

// --- Games ---

func (q *Queries) InsertGame(ctx context.Context, homeTeamID, awayTeamID string) (GameRow, error) {
	game := GameRow{
		ID:            uuid.New().String(),
		HomeTeamID:    homeTeamID,
		AwayTeamID:    awayTeamID,
		Status:        string(models.StatusScheduled),
		CurrentPeriod: 1,
		CreatedAt:     time.Now().UTC(),
	}
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO games (id, home_team_id, away_team_id, status, current_period, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		game.ID, game.HomeTeamID, game.AwayTeamID, game.Status, game.CurrentPeriod, game.CreatedAt,
	)
	if err != nil {
		return GameRow{}, fmt.Errorf("insert game: %w", err)
	}
	return game, nil
}

func (q *Queries) GetGameRow(ctx context.Context, id string) (GameRow, error) {
	var g GameRow
	err := q.db.QueryRowContext(ctx,
		"SELECT id, home_team_id, away_team_id, status, current_period, created_at FROM games WHERE id = ?", id,
	).Scan(&g.ID, &g.HomeTeamID, &g.AwayTeamID, &g.Status, &g.CurrentPeriod, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return GameRow{}, ErrNotFound
	}
	if err != nil {
		return GameRow{}, fmt.Errorf("get game: %w", err)
	}
	return g, nil
}

// ListGameRows returns games newest first, optionally filtered by status.
func (q *Queries) ListGameRows(ctx context.Context, status string) ([]GameRow, error) {
	query := "SELECT id, home_team_id, away_team_id, status, current_period, created_at FROM games"
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []GameRow
	for rows.Next() {
		var g GameRow
		if err := rows.Scan(&g.ID, &g.HomeTeamID, &g.AwayTeamID, &g.Status, &g.CurrentPeriod, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (q *Queries) UpdateGameStatus(ctx context.Context, id string, status models.GameStatus) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE games SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return fmt.Errorf("update game status: %w", err)
	}
	return requireRowAffected(res)
}

func (q *Queries) UpdateGamePeriod(ctx context.Context, id string, period int) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE games SET current_period = ? WHERE id = ?", period, id)
	if err != nil {
		return fmt.Errorf("update game period: %w", err)
	}
	return requireRowAffected(res)
}

func (q *Queries) DeleteGame(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM games WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return requireRowAffected(res)
}

// --- Player game stats ---

// SeedGameStats inserts a zero-initialized stats row for each player so
// every (game, player) pair always has all four periods present.
func (q *Queries) SeedGameStats(ctx context.Context, gameID string, playerIDs []string) error {
	for _, playerID := range playerIDs {
		_, err := q.db.ExecContext(ctx,
			"INSERT INTO player_game_stats (game_id, player_id) VALUES (?, ?)",
			gameID, playerID)
		if err != nil {
			return fmt.Errorf("seed stats for player %s: %w", playerID, err)
		}
	}
	return nil
}

func (q *Queries) GetStatsForGame(ctx context.Context, gameID string) ([]PlayerGameStats, error) {
	query := "SELECT id, game_id, player_id, " + joinColumns(statColumns) +
		" FROM player_game_stats WHERE game_id = ?"
	rows, err := q.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("stats for game: %w", err)
	}
	defer rows.Close()

	var all []PlayerGameStats
	for rows.Next() {
		var s PlayerGameStats
		targets := append([]any{&s.ID, &s.GameID, &s.PlayerID}, statScanTargets(&s.ByPeriod)...)
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		all = append(all, s)
	}
	return all, rows.Err()
}

func (q *Queries) GetStatsForPlayer(ctx context.Context, playerID string) ([]PlayerGameStats, error) {
	query := "SELECT id, game_id, player_id, " + joinColumns(statColumns) +
		" FROM player_game_stats WHERE player_id = ?"
	rows, err := q.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("stats for player: %w", err)
	}
	defer rows.Close()

	var all []PlayerGameStats
	for rows.Next() {
		var s PlayerGameStats
		targets := append([]any{&s.ID, &s.GameID, &s.PlayerID}, statScanTargets(&s.ByPeriod)...)
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		all = append(all, s)
	}
	return all, rows.Err()
}

func (q *Queries) GetStatsRowID(ctx context.Context, gameID, playerID string) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx,
		"SELECT id FROM player_game_stats WHERE game_id = ? AND player_id = ?",
		gameID, playerID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("stats row id: %w", err)
	}
	return id, nil
}

// --- Shots ---

func (q *Queries) InsertShot(ctx context.Context, statsID int64, shot models.Shot) (models.Shot, error) {
	shot.ID = uuid.New().String()
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO shots (id, player_game_stats_id, x, y, made, points, period) VALUES (?, ?, ?, ?, ?, ?, ?)",
		shot.ID, statsID, shot.X, shot.Y, shot.Made, shot.Points, shot.Period)
	if err != nil {
		return models.Shot{}, fmt.Errorf("insert shot: %w", err)
	}
	return shot, nil
}

func (q *Queries) ListShotsForGame(ctx context.Context, gameID string) ([]models.Shot, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT s.id, pgs.player_id, s.period, s.points, s.made, s.x, s.y
		FROM shots s
		JOIN player_game_stats pgs ON pgs.id = s.player_game_stats_id
		WHERE pgs.game_id = ?
		ORDER BY s.created_at`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list shots: %w", err)
	}
	defer rows.Close()

	var shots []models.Shot
	for rows.Next() {
		var s models.Shot
		if err := rows.Scan(&s.ID, &s.PlayerID, &s.Period, &s.Points, &s.Made, &s.X, &s.Y); err != nil {
			return nil, fmt.Errorf("scan shot: %w", err)
		}
		shots = append(shots, s)
	}
	return shots, rows.Err()
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
