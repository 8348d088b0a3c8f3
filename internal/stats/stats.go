// Package stats aggregates per-period player statistics into the
// summaries shown on scoreboards, game sheets, and leaderboards.
package stats

import (
	"sort"

	"github.com/crtorres/canasta/internal/models"
)

// TeamSummary is a whole-team aggregate across all periods.
type TeamSummary struct {
	Points1  models.ShotStats `json:"points1"`
	Points2  models.ShotStats `json:"points2"`
	Points3  models.ShotStats `json:"points3"`
	Rebounds int              `json:"rebounds"`
	Assists  int              `json:"assists"`
	Fouls    int              `json:"fouls"`
}

// PlayerTotals is a single player's aggregate across all periods,
// including derived points and valuation.
type PlayerTotals struct {
	TeamSummary
	Points    int `json:"points"`
	Valuation int `json:"valuation"`
}

// AggregateTeam sums statistics for an entire roster.
func AggregateTeam(players []models.PlayerInGame) TeamSummary {
	var total TeamSummary
	for _, p := range players {
		for _, ps := range p.StatsByPeriod {
			total.Points1.Made += ps.Points1.Made
			total.Points1.Attempted += ps.Points1.Attempted
			total.Points2.Made += ps.Points2.Made
			total.Points2.Attempted += ps.Points2.Attempted
			total.Points3.Made += ps.Points3.Made
			total.Points3.Attempted += ps.Points3.Attempted
			total.Rebounds += ps.Rebounds
			total.Assists += ps.Assists
			total.Fouls += ps.Fouls
		}
	}
	return total
}

// PlayerTotalsFor sums one player's stats across all periods and
// derives points and valuation. Valuation is
// (points + rebounds + assists) - (missed shots + fouls).
func PlayerTotalsFor(statsByPeriod [models.NumPeriods]models.PeriodStats) PlayerTotals {
	var t PlayerTotals
	for _, ps := range statsByPeriod {
		t.Points += ps.Points()
		t.Rebounds += ps.Rebounds
		t.Assists += ps.Assists
		t.Fouls += ps.Fouls
		t.Points1.Made += ps.Points1.Made
		t.Points1.Attempted += ps.Points1.Attempted
		t.Points2.Made += ps.Points2.Made
		t.Points2.Attempted += ps.Points2.Attempted
		t.Points3.Made += ps.Points3.Made
		t.Points3.Attempted += ps.Points3.Attempted
	}
	missed := (t.Points1.Attempted - t.Points1.Made) +
		(t.Points2.Attempted - t.Points2.Made) +
		(t.Points3.Attempted - t.Points3.Made)
	t.Valuation = t.Points + t.Rebounds + t.Assists - (missed + t.Fouls)
	return t
}

// TeamScore returns the total points scored by a roster.
func TeamScore(players []models.PlayerInGame) int {
	score := 0
	for _, p := range players {
		for _, ps := range p.StatsByPeriod {
			score += ps.Points()
		}
	}
	return score
}

// ScoresByPeriod returns the team score for each period plus the total
// as the last element.
func ScoresByPeriod(players []models.PlayerInGame) [models.NumPeriods + 1]int {
	var scores [models.NumPeriods + 1]int
	for _, p := range players {
		for i, ps := range p.StatsByPeriod {
			scores[i] += ps.Points()
		}
	}
	for i := 0; i < models.NumPeriods; i++ {
		scores[models.NumPeriods] += scores[i]
	}
	return scores
}

// ProgressionPoint is one step of the cumulative score progression.
type ProgressionPoint struct {
	Period string `json:"period"`
	Home   int    `json:"home"`
	Away   int    `json:"away"`
}

// ScoreProgression returns cumulative scores after each period,
// starting from a zero point so charts have a baseline.
func ScoreProgression(game *models.Game) []ProgressionPoint {
	points := make([]ProgressionPoint, 0, models.NumPeriods+1)
	points = append(points, ProgressionPoint{Period: "P0"})

	homeByPeriod := ScoresByPeriod(game.HomeTeam.Players)
	awayByPeriod := ScoresByPeriod(game.AwayTeam.Players)

	home, away := 0, 0
	for i := 0; i < models.NumPeriods; i++ {
		home += homeByPeriod[i]
		away += awayByPeriod[i]
		points = append(points, ProgressionPoint{
			Period: "P" + string(rune('1'+i)),
			Home:   home,
			Away:   away,
		})
	}
	return points
}

// Averages holds a player's per-game averages.
type Averages struct {
	GamesPlayed int     `json:"gamesPlayed"`
	PPG         float64 `json:"ppg"`
	RPG         float64 `json:"rpg"`
	APG         float64 `json:"apg"`
}

// GameLine is one player's totals from one finished game, used as the
// input row for averages and leaderboards.
type GameLine struct {
	PlayerID string
	Totals   PlayerTotals
}

// PlayerAverages computes per-game averages over a set of game lines
// belonging to a single player.
func PlayerAverages(lines []GameLine) Averages {
	n := len(lines)
	if n == 0 {
		return Averages{}
	}
	var points, rebounds, assists int
	for _, line := range lines {
		points += line.Totals.Points
		rebounds += line.Totals.Rebounds
		assists += line.Totals.Assists
	}
	return Averages{
		GamesPlayed: n,
		PPG:         float64(points) / float64(n),
		RPG:         float64(rebounds) / float64(n),
		APG:         float64(assists) / float64(n),
	}
}

// Leader is one leaderboard row.
type Leader struct {
	Player models.PlayerRef `json:"player"`
	Team   string           `json:"team"`
	Value  float64          `json:"value"`
}

// LeaderInput is the per-player material the leaderboard is built from.
type LeaderInput struct {
	Player models.PlayerRef
	Team   string
	Lines  []GameLine
}

// Leaders holds the top players per statistical category.
type Leaders struct {
	Points   []Leader `json:"points"`
	Rebounds []Leader `json:"rebounds"`
	Assists  []Leader `json:"assists"`
}

const leaderboardSize = 5

// LeagueLeaders ranks players by points, rebounds, and assists per
// game, keeping the top five with a non-zero average in each category.
func LeagueLeaders(inputs []LeaderInput) Leaders {
	type ranked struct {
		player models.PlayerRef
		team   string
		avg    Averages
	}
	players := make([]ranked, 0, len(inputs))
	for _, in := range inputs {
		players = append(players, ranked{
			player: in.Player,
			team:   in.Team,
			avg:    PlayerAverages(in.Lines),
		})
	}

	top := func(value func(ranked) float64) []Leader {
		sorted := make([]ranked, len(players))
		copy(sorted, players)
		sort.SliceStable(sorted, func(i, j int) bool {
			return value(sorted[i]) > value(sorted[j])
		})
		leaders := make([]Leader, 0, leaderboardSize)
		for _, r := range sorted {
			if len(leaders) == leaderboardSize {
				break
			}
			if value(r) <= 0 {
				continue
			}
			leaders = append(leaders, Leader{Player: r.player, Team: r.team, Value: value(r)})
		}
		return leaders
	}

	return Leaders{
		Points:   top(func(r ranked) float64 { return r.avg.PPG }),
		Rebounds: top(func(r ranked) float64 { return r.avg.RPG }),
		Assists:  top(func(r ranked) float64 { return r.avg.APG }),
	}
}

// GameResult is a finished game reduced to its final score.
type GameResult struct {
	HomeTeamID string
	AwayTeamID string
	HomeScore  int
	AwayScore  int
}

// WinLoss tallies a team's record over a set of finished games.
func WinLoss(teamID string, games []GameResult) (wins, losses int) {
	for _, g := range games {
		switch teamID {
		case g.HomeTeamID:
			if g.HomeScore > g.AwayScore {
				wins++
			} else if g.HomeScore < g.AwayScore {
				losses++
			}
		case g.AwayTeamID:
			if g.AwayScore > g.HomeScore {
				wins++
			} else if g.AwayScore < g.HomeScore {
				losses++
			}
		}
	}
	return wins, losses
}
