package scoring

import (
	"reflect"
	"testing"

	"github.com/crtorres/canasta/internal/models"
)

func testGame(id string, status models.GameStatus) *models.Game {
	mkPlayer := func(pid, name string, number int) models.PlayerInGame {
		return models.PlayerInGame{
			Player: models.PlayerRef{ID: pid, Name: name, Number: number},
		}
	}
	return &models.Game{
		ID:            id,
		Status:        status,
		CurrentPeriod: 1,
		HomeTeam: models.TeamInGame{
			ID:   "home",
			Name: "Aros",
			Players: []models.PlayerInGame{
				mkPlayer("p7", "Seven", 7),
				mkPlayer("p8", "Eight", 8),
			},
		},
		AwayTeam: models.TeamInGame{
			ID:      "away",
			Name:    "Bravos",
			Players: []models.PlayerInGame{mkPlayer("p9", "Nine", 9)},
		},
	}
}

func newLiveSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(NewMemoryStore())
	if err := s.Initialize(testGame("g1", models.StatusLive)); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return s
}

func TestApplyDeltaOptimistic(t *testing.T) {
	s := newLiveSession(t)

	deltas := []models.StatDelta{
		models.NewShotDelta("p7", 2, 2, true),
		models.NewShotDelta("p7", 2, 3, false),
		models.NewEventDelta("p7", 2, models.EventRebound),
	}
	for _, d := range deltas {
		if err := s.ApplyDelta(d); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}

	game := s.Game()
	p7, _, ok := game.FindPlayer("p7")
	if !ok {
		t.Fatal("p7 missing")
	}
	ps := p7.StatsByPeriod[1]
	if ps.Points2.Made != 1 || ps.Points2.Attempted != 1 {
		t.Fatalf("points2 = %+v, want 1/1", ps.Points2)
	}
	if ps.Points3.Made != 0 || ps.Points3.Attempted != 1 {
		t.Fatalf("points3 = %+v, want 0/1", ps.Points3)
	}
	if ps.Rebounds != 1 {
		t.Fatalf("rebounds = %d, want 1", ps.Rebounds)
	}

	if s.PendingCount() != 3 {
		t.Fatalf("pending = %d, want 3", s.PendingCount())
	}
	if s.SyncStatus() != models.SyncPending {
		t.Fatalf("status = %s, want pending", s.SyncStatus())
	}
	if len(s.Plays()) != 3 {
		t.Fatalf("plays = %d, want 3", len(s.Plays()))
	}
}

func TestApplyDeltaMadeNeverExceedsAttempted(t *testing.T) {
	s := newLiveSession(t)

	for i := 0; i < 20; i++ {
		made := i%3 == 0
		points := 1 + i%3
		if err := s.ApplyDelta(models.NewShotDelta("p7", 1+i%models.NumPeriods, points, made)); err != nil {
			t.Fatalf("apply: %v", err)
		}
		p7, _, _ := s.Game().FindPlayer("p7")
		for _, ps := range p7.StatsByPeriod {
			for _, shot := range []models.ShotStats{ps.Points1, ps.Points2, ps.Points3} {
				if shot.Made > shot.Attempted {
					t.Fatalf("made %d > attempted %d", shot.Made, shot.Attempted)
				}
			}
		}
	}
}

func TestApplyDeltaRejectsNonLive(t *testing.T) {
	for _, status := range []models.GameStatus{models.StatusScheduled, models.StatusFinished} {
		s := NewSession(NewMemoryStore())
		if err := s.Initialize(testGame("g1", status)); err != nil {
			t.Fatalf("initialize: %v", err)
		}
		before := s.Game()

		err := s.ApplyDelta(models.NewEventDelta("p7", 1, models.EventFoul))
		if err != ErrGameNotLive {
			t.Fatalf("status %s: err = %v, want ErrGameNotLive", status, err)
		}
		if !reflect.DeepEqual(before, s.Game()) {
			t.Fatalf("status %s: game state changed by rejected delta", status)
		}
		if s.PendingCount() != 0 {
			t.Fatalf("status %s: queue grew on rejected delta", status)
		}
	}
}

func TestApplyDeltaUnknownPlayer(t *testing.T) {
	s := newLiveSession(t)
	if err := s.ApplyDelta(models.NewEventDelta("ghost", 1, models.EventAssist)); err != ErrPlayerNotFound {
		t.Fatalf("err = %v, want ErrPlayerNotFound", err)
	}
	if s.PendingCount() != 0 {
		t.Fatal("queue grew on unknown player")
	}
}

func TestMergeMetadataNeverTouchesStats(t *testing.T) {
	s := newLiveSession(t)
	for i := 0; i < 2; i++ {
		if err := s.ApplyDelta(models.NewEventDelta("p7", 1, models.EventRebound)); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}

	server := testGame("g1", models.StatusLive)
	server.CurrentPeriod = 3
	s.MergeMetadata(server)

	game := s.Game()
	if game.CurrentPeriod != 3 {
		t.Fatalf("currentPeriod = %d, want 3", game.CurrentPeriod)
	}
	p7, _, _ := game.FindPlayer("p7")
	if p7.StatsByPeriod[0].Rebounds != 2 {
		t.Fatalf("rebounds = %d, unsynced increments were clobbered", p7.StatsByPeriod[0].Rebounds)
	}
	if s.PendingCount() != 2 {
		t.Fatalf("pending = %d, want 2", s.PendingCount())
	}
}

func TestMergeMetadataGuardsGameIdentity(t *testing.T) {
	s := newLiveSession(t)
	other := testGame("g2", models.StatusFinished)
	other.CurrentPeriod = 4
	s.MergeMetadata(other)

	game := s.Game()
	if game.Status != models.StatusLive || game.CurrentPeriod != 1 {
		t.Fatalf("metadata from a different game was merged: %+v", game)
	}
}

func TestInitializeReplacesOnNewGameID(t *testing.T) {
	s := newLiveSession(t)
	if err := s.ApplyDelta(models.NewEventDelta("p7", 1, models.EventFoul)); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if err := s.Initialize(testGame("g2", models.StatusLive)); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if s.Game().ID != "g2" {
		t.Fatalf("game id = %s, want g2", s.Game().ID)
	}
	if s.PendingCount() != 0 {
		t.Fatal("queue survived a game replacement")
	}
	if s.SyncStatus() != models.SyncSynced {
		t.Fatalf("status = %s, want synced", s.SyncStatus())
	}
}

func TestInitializeReconcilesSameGame(t *testing.T) {
	s := newLiveSession(t)
	if err := s.ApplyDelta(models.NewShotDelta("p7", 1, 2, true)); err != nil {
		t.Fatalf("apply: %v", err)
	}

	refetched := testGame("g1", models.StatusLive)
	refetched.CurrentPeriod = 2
	if err := s.Initialize(refetched); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	game := s.Game()
	if game.CurrentPeriod != 2 {
		t.Fatalf("currentPeriod = %d, want 2", game.CurrentPeriod)
	}
	p7, _, _ := game.FindPlayer("p7")
	if p7.StatsByPeriod[0].Points2.Made != 1 {
		t.Fatal("local stats were replaced by a stale server read")
	}
	if s.PendingCount() != 1 {
		t.Fatalf("pending = %d, want 1", s.PendingCount())
	}
}

func TestResumeRestoresPendingQueue(t *testing.T) {
	store := NewMemoryStore()

	s := NewSession(store)
	if err := s.Initialize(testGame("g1", models.StatusLive)); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := s.ApplyDelta(models.NewShotDelta("p7", 2, 3, true)); err != nil {
		t.Fatalf("apply: %v", err)
	}

	resumed := NewSession(store)
	ok, err := resumed.Resume()
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !ok {
		t.Fatal("expected saved state")
	}
	if resumed.PendingCount() != 1 {
		t.Fatalf("pending = %d, want 1", resumed.PendingCount())
	}
	if resumed.SyncStatus() != models.SyncPending {
		t.Fatalf("status = %s, want pending", resumed.SyncStatus())
	}
	p7, _, _ := resumed.Game().FindPlayer("p7")
	if p7.StatsByPeriod[1].Points3.Made != 1 {
		t.Fatal("resumed stats missing local increment")
	}
}

func TestResumeWithoutState(t *testing.T) {
	s := NewSession(NewMemoryStore())
	ok, err := s.Resume()
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if ok {
		t.Fatal("resume reported state where none exists")
	}
}
