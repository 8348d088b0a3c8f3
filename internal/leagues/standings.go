package leagues

import (
	"fmt"
	"sort"

	"github.com/crtorres/canasta/internal/models"
	"github.com/crtorres/canasta/internal/stats"
)

type TeamStanding struct {
	TeamID            string `json:"teamId"`
	TeamName          string `json:"teamName"`
	GamesPlayed       int    `json:"gamesPlayed"`
	Wins              int    `json:"wins"`
	Losses            int    `json:"losses"`
	PointsFor         int    `json:"pointsFor"`
	PointsAgainst     int    `json:"pointsAgainst"`
	PointDifferential int    `json:"pointDifferential"`
}

type teamStats struct {
	TeamStanding
	headToHeadWins      map[string]int
	headToHeadPointDiff map[string]int
}

// CalculateStandings builds the league table from finished games.
// Teams are ranked by wins, then head-to-head wins within tied groups,
// then point differential, then head-to-head point differential, then
// name. Ties on the scoreboard are rejected: basketball games play
// overtime until someone wins.
func CalculateStandings(teams []models.TeamScore, finished []*models.Game) ([]TeamStanding, error) {
	entries := make(map[string]*teamStats, len(teams))
	for _, team := range teams {
		entries[team.ID] = &teamStats{
			TeamStanding: TeamStanding{
				TeamID:   team.ID,
				TeamName: team.Name,
			},
			headToHeadWins:      make(map[string]int),
			headToHeadPointDiff: make(map[string]int),
		}
	}

	for _, game := range finished {
		if game.Status != models.StatusFinished {
			continue
		}
		homeScore := stats.TeamScore(game.HomeTeam.Players)
		awayScore := stats.TeamScore(game.AwayTeam.Players)
		if homeScore == awayScore {
			return nil, fmt.Errorf("game %s is tied; ties are not supported", game.ID)
		}

		sides := []struct {
			teamID, opponentID string
			score, opponent    int
		}{
			{game.HomeTeam.ID, game.AwayTeam.ID, homeScore, awayScore},
			{game.AwayTeam.ID, game.HomeTeam.ID, awayScore, homeScore},
		}
		for _, side := range sides {
			entry, ok := entries[side.teamID]
			if !ok {
				continue
			}
			entry.GamesPlayed++
			entry.PointsFor += side.score
			entry.PointsAgainst += side.opponent
			entry.PointDifferential = entry.PointsFor - entry.PointsAgainst

			if side.score > side.opponent {
				entry.Wins++
				entry.headToHeadWins[side.opponentID]++
			} else {
				entry.Losses++
			}
			entry.headToHeadPointDiff[side.opponentID] += side.score - side.opponent
		}
	}

	ordered := make([]*teamStats, 0, len(entries))
	for _, team := range entries {
		ordered = append(ordered, team)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Wins != ordered[j].Wins {
			return ordered[i].Wins > ordered[j].Wins
		}
		return ordered[i].TeamName < ordered[j].TeamName
	})

	sortStandingsByTiebreakers(ordered)

	standings := make([]TeamStanding, 0, len(ordered))
	for _, team := range ordered {
		standings = append(standings, team.TeamStanding)
	}
	return standings, nil
}

func sortStandingsByTiebreakers(ordered []*teamStats) {
	if len(ordered) < 2 {
		return
	}

	start := 0
	for start < len(ordered) {
		end := start + 1
		for end < len(ordered) && ordered[end].Wins == ordered[start].Wins {
			end++
		}

		if end-start > 1 {
			group := ordered[start:end]
			groupSet := make(map[string]struct{}, len(group))
			for _, team := range group {
				groupSet[team.TeamID] = struct{}{}
			}

			sort.SliceStable(group, func(i, j int) bool {
				headToHeadWinsI := headToHeadWins(group[i], groupSet)
				headToHeadWinsJ := headToHeadWins(group[j], groupSet)
				if headToHeadWinsI != headToHeadWinsJ {
					return headToHeadWinsI > headToHeadWinsJ
				}
				if group[i].PointDifferential != group[j].PointDifferential {
					return group[i].PointDifferential > group[j].PointDifferential
				}
				headToHeadDiffI := headToHeadPointDiff(group[i], groupSet)
				headToHeadDiffJ := headToHeadPointDiff(group[j], groupSet)
				if headToHeadDiffI != headToHeadDiffJ {
					return headToHeadDiffI > headToHeadDiffJ
				}
				return group[i].TeamName < group[j].TeamName
			})
		}

		start = end
	}
}

func headToHeadWins(team *teamStats, group map[string]struct{}) int {
	total := 0
	for opponentID, wins := range team.headToHeadWins {
		if _, ok := group[opponentID]; ok {
			total += wins
		}
	}
	return total
}

func headToHeadPointDiff(team *teamStats, group map[string]struct{}) int {
	total := 0
	for opponentID, diff := range team.headToHeadPointDiff {
		if _, ok := group[opponentID]; ok {
			total += diff
		}
	}
	return total
}
