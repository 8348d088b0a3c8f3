package leagues

import (
	"testing"

	"github.com/crtorres/canasta/internal/models"
)

func TestGenerateRoundRobinEvenTeams(t *testing.T) {
	teams := []models.TeamScore{
		teamScore("a", "Aros"),
		teamScore("b", "Bravos"),
		teamScore("c", "Cestos"),
		teamScore("d", "Dunks"),
	}

	fixtures, err := GenerateRoundRobin(teams)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	// 4 teams: 3 rounds of 2 games each.
	if len(fixtures) != 6 {
		t.Fatalf("fixtures = %d, want 6", len(fixtures))
	}

	seen := make(map[string]int)
	for _, f := range fixtures {
		if f.HomeTeam.ID == f.AwayTeam.ID {
			t.Fatalf("team %s paired with itself", f.HomeTeam.ID)
		}
		key := f.HomeTeam.ID + "/" + f.AwayTeam.ID
		if f.AwayTeam.ID < f.HomeTeam.ID {
			key = f.AwayTeam.ID + "/" + f.HomeTeam.ID
		}
		seen[key]++
	}
	for pair, count := range seen {
		if count != 1 {
			t.Fatalf("pair %s appears %d times", pair, count)
		}
	}
	if len(seen) != 6 {
		t.Fatalf("distinct pairs = %d, want 6", len(seen))
	}
}

func TestGenerateRoundRobinOddTeamsGetByes(t *testing.T) {
	teams := []models.TeamScore{
		teamScore("a", "Aros"),
		teamScore("b", "Bravos"),
		teamScore("c", "Cestos"),
	}

	fixtures, err := GenerateRoundRobin(teams)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	// 3 teams: 3 rounds, one game per round, one bye per round.
	if len(fixtures) != 3 {
		t.Fatalf("fixtures = %d, want 3", len(fixtures))
	}
	perRound := make(map[int]int)
	for _, f := range fixtures {
		perRound[f.Round]++
	}
	for round, games := range perRound {
		if games != 1 {
			t.Fatalf("round %d has %d games, want 1", round, games)
		}
	}
}

func TestGenerateRoundRobinRequiresTwoTeams(t *testing.T) {
	if _, err := GenerateRoundRobin([]models.TeamScore{teamScore("a", "Aros")}); err == nil {
		t.Fatal("expected error for a single team")
	}
}
