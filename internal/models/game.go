// Package models holds the shared domain types for games, rosters, and
// per-period statistics. These are the wire shapes exchanged between the
// API handlers and the scoring client.
package models

import "time"

// GameStatus is the lifecycle state of a game. Finished is terminal:
// once a game is finished no further stat mutations are accepted.
type GameStatus string

const (
	StatusScheduled GameStatus = "scheduled"
	StatusLive      GameStatus = "live"
	StatusFinished  GameStatus = "finished"
)

// Valid reports whether s is one of the known game statuses.
func (s GameStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusLive, StatusFinished:
		return true
	}
	return false
}

// NumPeriods is the number of quarters in a game. Every player carries
// exactly this many PeriodStats records, zero-initialized, never
// partially absent.
const NumPeriods = 4

// ShotStats counts attempts and makes for one point-value category.
// Invariant: Made <= Attempted at all times.
type ShotStats struct {
	Made      int `json:"made"`
	Attempted int `json:"attempted"`
}

// PeriodStats is one player's tallies for a single period.
type PeriodStats struct {
	Points1  ShotStats `json:"points1"`
	Points2  ShotStats `json:"points2"`
	Points3  ShotStats `json:"points3"`
	Rebounds int       `json:"rebounds"`
	Assists  int       `json:"assists"`
	Fouls    int       `json:"fouls"`
}

// Points returns the points scored in this period.
func (p PeriodStats) Points() int {
	return p.Points1.Made + p.Points2.Made*2 + p.Points3.Made*3
}

// PlayerRef is the identity of a player as shown on a roster.
type PlayerRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Number   int    `json:"number"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// PlayerInGame pairs a player identity with its per-period stats for
// one game. The stats array always has NumPeriods entries.
type PlayerInGame struct {
	Player        PlayerRef               `json:"player"`
	StatsByPeriod [NumPeriods]PeriodStats `json:"statsByPeriod"`
}

// TeamInGame is one side of a game: team identity plus roster.
type TeamInGame struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	LogoURL string         `json:"logoUrl,omitempty"`
	Players []PlayerInGame `json:"players"`
}

// Play is one entry of the play-by-play feed. Plays are transient:
// they exist only for the scoring session and are never persisted
// on the server beyond the shot records that back some of them.
type Play struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	TeamName string `json:"teamName"`
	Time     string `json:"time"`
}

// Shot is a persisted shot-chart entry with court coordinates.
type Shot struct {
	ID       string  `json:"id"`
	PlayerID string  `json:"playerId"`
	Period   int     `json:"period"`
	Points   int     `json:"points"`
	Made     bool    `json:"made"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// Game is the aggregate root: two rosters, the current period, and the
// game status. Plays are client-session data and not returned by the
// server read endpoint.
type Game struct {
	ID            string     `json:"id"`
	CreatedAt     time.Time  `json:"createdAt"`
	HomeTeam      TeamInGame `json:"homeTeam"`
	AwayTeam      TeamInGame `json:"awayTeam"`
	CurrentPeriod int        `json:"currentPeriod"`
	Status        GameStatus `json:"status"`
	Plays         []Play     `json:"plays,omitempty"`
	Shots         []Shot     `json:"shots,omitempty"`
}

// FindPlayer looks up a player by id across both rosters. The second
// return is the roster team, the third reports whether it was found.
func (g *Game) FindPlayer(playerID string) (*PlayerInGame, *TeamInGame, bool) {
	for _, team := range []*TeamInGame{&g.HomeTeam, &g.AwayTeam} {
		for i := range team.Players {
			if team.Players[i].Player.ID == playerID {
				return &team.Players[i], team, true
			}
		}
	}
	return nil, nil, false
}

// Scoreboard is the public live view of a game: status, period, and
// both team scores, recomputed server-side from the stored stats.
type Scoreboard struct {
	GameID        string     `json:"gameId"`
	Status        GameStatus `json:"status"`
	CurrentPeriod int        `json:"currentPeriod"`
	HomeTeam      TeamScore  `json:"homeTeam"`
	AwayTeam      TeamScore  `json:"awayTeam"`
}

// TeamScore is one team's identity plus its current score.
type TeamScore struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logoUrl,omitempty"`
	Score   int    `json:"score"`
}
