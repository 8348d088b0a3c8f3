package leagues

import (
	"errors"

	"github.com/crtorres/canasta/internal/models"
)

// Fixture is one scheduled pairing in a generated round-robin.
type Fixture struct {
	Round    int              `json:"round"`
	HomeTeam models.TeamScore `json:"homeTeam"`
	AwayTeam models.TeamScore `json:"awayTeam"`
}

// GenerateRoundRobin pairs every team against every other team exactly
// once using the circle method. With an odd team count one team sits
// out each round. Home and away alternate for the fixed seat so the
// first seed does not host every round.
func GenerateRoundRobin(teams []models.TeamScore) ([]Fixture, error) {
	if len(teams) < 2 {
		return nil, errors.New("at least two teams are required")
	}

	working := make([]*models.TeamScore, 0, len(teams)+1)
	for i := range teams {
		working = append(working, &teams[i])
	}
	if len(working)%2 == 1 {
		working = append(working, nil)
	}

	rounds := len(working) - 1
	fixtures := make([]Fixture, 0, rounds*len(working)/2)
	for round := 0; round < rounds; round++ {
		for i := 0; i < len(working)/2; i++ {
			left := working[i]
			right := working[len(working)-1-i]
			if left == nil || right == nil {
				continue
			}
			home := *left
			away := *right
			if i == 0 && round%2 == 1 {
				home, away = away, home
			}
			fixtures = append(fixtures, Fixture{
				Round:    round + 1,
				HomeTeam: home,
				AwayTeam: away,
			})
		}
		rotateTeams(working)
	}

	return fixtures, nil
}

func rotateTeams(teams []*models.TeamScore) {
	if len(teams) <= 2 {
		return
	}
	last := teams[len(teams)-1]
	copy(teams[2:], teams[1:len(teams)-1])
	teams[1] = last
}
