package leagues

import (
	"testing"

	"github.com/crtorres/canasta/internal/models"
)

func teamScore(id, name string) models.TeamScore {
	return models.TeamScore{ID: id, Name: name}
}

// finishedGame builds a finished game where each team's single player
// scored the given number of 2-pointers, so score = makes * 2.
func finishedGame(id, homeID, awayID string, homeMakes, awayMakes int) *models.Game {
	mkTeam := func(teamID string, makes int) models.TeamInGame {
		var byPeriod [models.NumPeriods]models.PeriodStats
		byPeriod[0].Points2 = models.ShotStats{Made: makes, Attempted: makes}
		return models.TeamInGame{
			ID:   teamID,
			Name: teamID,
			Players: []models.PlayerInGame{{
				Player:        models.PlayerRef{ID: teamID + "-p1"},
				StatsByPeriod: byPeriod,
			}},
		}
	}
	return &models.Game{
		ID:       id,
		Status:   models.StatusFinished,
		HomeTeam: mkTeam(homeID, homeMakes),
		AwayTeam: mkTeam(awayID, awayMakes),
	}
}

func TestCalculateStandingsRanksByWins(t *testing.T) {
	teams := []models.TeamScore{
		teamScore("a", "Aros"),
		teamScore("b", "Bravos"),
		teamScore("c", "Cestos"),
	}
	games := []*models.Game{
		finishedGame("g1", "a", "b", 40, 30), // a beats b
		finishedGame("g2", "a", "c", 35, 20), // a beats c
		finishedGame("g3", "b", "c", 25, 20), // b beats c
	}

	standings, err := CalculateStandings(teams, games)
	if err != nil {
		t.Fatalf("standings: %v", err)
	}
	if len(standings) != 3 {
		t.Fatalf("standings rows = %d, want 3", len(standings))
	}
	if standings[0].TeamID != "a" || standings[1].TeamID != "b" || standings[2].TeamID != "c" {
		t.Fatalf("unexpected order: %v %v %v", standings[0].TeamID, standings[1].TeamID, standings[2].TeamID)
	}
	if standings[0].Wins != 2 || standings[0].Losses != 0 {
		t.Fatalf("leader record = %d-%d, want 2-0", standings[0].Wins, standings[0].Losses)
	}
}

func TestCalculateStandingsHeadToHeadTiebreaker(t *testing.T) {
	teams := []models.TeamScore{
		teamScore("a", "Aros"),
		teamScore("b", "Bravos"),
		teamScore("c", "Cestos"),
	}
	// a and b both finish 1-1; b won the head-to-head.
	games := []*models.Game{
		finishedGame("g1", "b", "a", 40, 30),
		finishedGame("g2", "a", "c", 50, 20),
		finishedGame("g3", "c", "b", 45, 30),
	}

	standings, err := CalculateStandings(teams, games)
	if err != nil {
		t.Fatalf("standings: %v", err)
	}
	if standings[0].TeamID != "b" {
		t.Fatalf("head-to-head winner should lead tied group, got %s", standings[0].TeamID)
	}
}

func TestCalculateStandingsRejectsTies(t *testing.T) {
	teams := []models.TeamScore{teamScore("a", "Aros"), teamScore("b", "Bravos")}
	games := []*models.Game{finishedGame("g1", "a", "b", 30, 30)}

	if _, err := CalculateStandings(teams, games); err == nil {
		t.Fatal("expected error for tied game")
	}
}

func TestCalculateStandingsIgnoresUnfinishedGames(t *testing.T) {
	teams := []models.TeamScore{teamScore("a", "Aros"), teamScore("b", "Bravos")}
	game := finishedGame("g1", "a", "b", 30, 20)
	game.Status = models.StatusLive

	standings, err := CalculateStandings(teams, []*models.Game{game})
	if err != nil {
		t.Fatalf("standings: %v", err)
	}
	for _, s := range standings {
		if s.GamesPlayed != 0 {
			t.Fatalf("live game counted in standings: %+v", s)
		}
	}
}
