package stats

import (
	"testing"

	"github.com/crtorres/canasta/internal/models"
)

func playerWithStats(id string, period int, ps models.PeriodStats) models.PlayerInGame {
	p := models.PlayerInGame{Player: models.PlayerRef{ID: id, Name: id}}
	p.StatsByPeriod[period-1] = ps
	return p
}

func TestTeamScoreCountsPointValues(t *testing.T) {
	players := []models.PlayerInGame{
		playerWithStats("p1", 1, models.PeriodStats{
			Points1: models.ShotStats{Made: 2, Attempted: 3},
			Points2: models.ShotStats{Made: 1, Attempted: 4},
			Points3: models.ShotStats{Made: 1, Attempted: 2},
		}),
		playerWithStats("p2", 3, models.PeriodStats{
			Points2: models.ShotStats{Made: 3, Attempted: 5},
		}),
	}

	if got := TeamScore(players); got != 13 {
		t.Fatalf("TeamScore = %d, want 13", got)
	}
}

func TestScoresByPeriodTotalsLastElement(t *testing.T) {
	players := []models.PlayerInGame{
		playerWithStats("p1", 1, models.PeriodStats{Points2: models.ShotStats{Made: 2, Attempted: 2}}),
		playerWithStats("p2", 4, models.PeriodStats{Points3: models.ShotStats{Made: 1, Attempted: 1}}),
	}

	scores := ScoresByPeriod(players)
	if scores[0] != 4 || scores[1] != 0 || scores[2] != 0 || scores[3] != 3 {
		t.Fatalf("unexpected period scores: %v", scores)
	}
	if scores[4] != 7 {
		t.Fatalf("total = %d, want 7", scores[4])
	}
}

func TestPlayerTotalsValuation(t *testing.T) {
	var byPeriod [models.NumPeriods]models.PeriodStats
	byPeriod[0] = models.PeriodStats{
		Points2:  models.ShotStats{Made: 4, Attempted: 6},
		Rebounds: 5,
		Assists:  3,
		Fouls:    2,
	}
	byPeriod[2] = models.PeriodStats{
		Points3: models.ShotStats{Made: 1, Attempted: 3},
	}

	totals := PlayerTotalsFor(byPeriod)
	if totals.Points != 11 {
		t.Fatalf("points = %d, want 11", totals.Points)
	}
	// 11 + 5 + 3 - (4 missed + 2 fouls)
	if totals.Valuation != 13 {
		t.Fatalf("valuation = %d, want 13", totals.Valuation)
	}
}

func TestAggregateTeamSumsAllPeriods(t *testing.T) {
	players := []models.PlayerInGame{
		playerWithStats("p1", 1, models.PeriodStats{Rebounds: 3, Assists: 1}),
		playerWithStats("p1", 2, models.PeriodStats{Rebounds: 2, Fouls: 1}),
	}

	total := AggregateTeam(players)
	if total.Rebounds != 5 || total.Assists != 1 || total.Fouls != 1 {
		t.Fatalf("unexpected team summary: %+v", total)
	}
}

func TestPlayerAveragesEmpty(t *testing.T) {
	avg := PlayerAverages(nil)
	if avg.GamesPlayed != 0 || avg.PPG != 0 {
		t.Fatalf("expected zero averages, got %+v", avg)
	}
}

func TestPlayerAverages(t *testing.T) {
	lines := []GameLine{
		{PlayerID: "p1", Totals: PlayerTotals{Points: 20, TeamSummary: TeamSummary{Rebounds: 10, Assists: 4}}},
		{PlayerID: "p1", Totals: PlayerTotals{Points: 10, TeamSummary: TeamSummary{Rebounds: 6, Assists: 2}}},
	}

	avg := PlayerAverages(lines)
	if avg.GamesPlayed != 2 {
		t.Fatalf("games = %d, want 2", avg.GamesPlayed)
	}
	if avg.PPG != 15 || avg.RPG != 8 || avg.APG != 3 {
		t.Fatalf("unexpected averages: %+v", avg)
	}
}

func TestLeagueLeadersFiltersZeroAndLimitsToFive(t *testing.T) {
	inputs := make([]LeaderInput, 0, 7)
	for i := 0; i < 7; i++ {
		id := string(rune('a' + i))
		points := 0
		if i > 0 {
			points = i * 3
		}
		inputs = append(inputs, LeaderInput{
			Player: models.PlayerRef{ID: id, Name: id},
			Team:   "Team " + id,
			Lines:  []GameLine{{PlayerID: id, Totals: PlayerTotals{Points: points}}},
		})
	}

	leaders := LeagueLeaders(inputs)
	if len(leaders.Points) != 5 {
		t.Fatalf("points leaders = %d, want 5", len(leaders.Points))
	}
	if leaders.Points[0].Value != 18 {
		t.Fatalf("top scorer value = %v, want 18", leaders.Points[0].Value)
	}
	for _, l := range leaders.Points {
		if l.Value <= 0 {
			t.Fatalf("leaderboard contains zero-average player: %+v", l)
		}
	}
	if len(leaders.Rebounds) != 0 {
		t.Fatalf("expected empty rebound leaderboard, got %d", len(leaders.Rebounds))
	}
}

func TestWinLoss(t *testing.T) {
	games := []GameResult{
		{HomeTeamID: "t1", AwayTeamID: "t2", HomeScore: 70, AwayScore: 60},
		{HomeTeamID: "t2", AwayTeamID: "t1", HomeScore: 55, AwayScore: 80},
		{HomeTeamID: "t3", AwayTeamID: "t1", HomeScore: 90, AwayScore: 72},
	}

	wins, losses := WinLoss("t1", games)
	if wins != 2 || losses != 1 {
		t.Fatalf("t1 record = %d-%d, want 2-1", wins, losses)
	}

	wins, losses = WinLoss("t2", games)
	if wins != 0 || losses != 2 {
		t.Fatalf("t2 record = %d-%d, want 0-2", wins, losses)
	}
}
