// internal/scoring/session.go
package scoring

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/crtorres/canasta/internal/models"
)

var (
	// ErrNoGame is returned when a mutation arrives before Initialize.
	ErrNoGame = errors.New("no game loaded")
	// ErrGameNotLive rejects stat mutations outside a live game.
	ErrGameNotLive = errors.New("game is not live")
	// ErrPlayerNotFound rejects deltas for players on neither roster.
	ErrPlayerNotFound = errors.New("player is not in this game")
)

// Session owns the scorekeeper's local copy of one game. Every
// mutation applies to local state synchronously, enqueues a delta for
// the server, and persists the whole session through Storage, so reads
// always see writes immediately and a crash resumes mid-game.
//
// A session belongs to one scorer; concurrent scorekeepers on the same
// game are not supported.
type Session struct {
	mu      sync.Mutex
	storage Storage

	game      *models.Game
	pending   []models.StatDelta
	plays     []models.Play
	status    models.SyncStatus
	metaDirty bool
}

func NewSession(storage Storage) *Session {
	return &Session{
		storage: storage,
		status:  models.SyncSynced,
	}
}

// Resume loads persisted state if any exists. A session that died
// mid-flush comes back as pending: the queue still holds everything
// that was never acknowledged.
func (s *Session) Resume() (bool, error) {
	state, err := s.storage.Load()
	if errors.Is(err, ErrNoState) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.game = state.Game
	s.pending = state.Pending
	s.plays = state.Plays
	s.status = state.Status
	if s.status == models.SyncSyncing {
		s.status = models.SyncPending
	}
	if s.status == models.SyncPending && len(s.pending) == 0 {
		s.status = models.SyncSynced
	}
	return true, nil
}

// Initialize installs a freshly fetched game. A different game id
// replaces everything, queue included. The same game id reconciles
// metadata only: while deltas are pending, the local stats are ahead
// of the server's and must not be overwritten.
func (s *Session) Initialize(game *models.Game) error {
	if game == nil {
		return ErrNoGame
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game == nil || s.game.ID != game.ID {
		s.game = game
		s.pending = nil
		s.plays = nil
		s.status = models.SyncSynced
		s.metaDirty = false
		return s.persistLocked()
	}

	s.mergeMetadataLocked(game)
	return s.persistLocked()
}

// ApplyDelta is the optimistic mutation path: validate, mutate local
// stats, enqueue, persist. It never touches the network.
func (s *Session) ApplyDelta(delta models.StatDelta) error {
	if err := delta.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game == nil {
		return ErrNoGame
	}
	if s.game.Status != models.StatusLive {
		return ErrGameNotLive
	}
	player, team, ok := s.game.FindPlayer(delta.PlayerID)
	if !ok {
		return ErrPlayerNotFound
	}

	applyToStats(&player.StatsByPeriod[delta.Period-1], delta)
	s.pending = append(s.pending, delta)
	if s.status != models.SyncSyncing {
		s.status = models.SyncPending
	}
	s.plays = append(s.plays, models.Play{
		ID:       uuid.New().String(),
		Summary:  models.DescribeDelta(player.Player.Name, delta),
		TeamName: team.Name,
		Time:     fmt.Sprintf("P%d", delta.Period),
	})
	return s.persistLocked()
}

// applyToStats mutates one period record. A made shot increments
// attempted and made together so made can never exceed attempted.
func applyToStats(ps *models.PeriodStats, delta models.StatDelta) {
	switch delta.Kind {
	case models.DeltaShot:
		var shot *models.ShotStats
		switch delta.Shot.Points {
		case 1:
			shot = &ps.Points1
		case 2:
			shot = &ps.Points2
		case 3:
			shot = &ps.Points3
		}
		shot.Attempted++
		if delta.Shot.Made {
			shot.Made++
		}
	case models.DeltaEvent:
		switch delta.Event {
		case models.EventRebound:
			ps.Rebounds++
		case models.EventAssist:
			ps.Assists++
		case models.EventFoul:
			ps.Fouls++
		}
	}
}

// MergeMetadata folds a server read into the local game: status and
// current period only, and only for the same game. Stats always stay
// local.
func (s *Session) MergeMetadata(remote *models.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mergeMetadataLocked(remote)
	_ = s.persistLocked()
}

func (s *Session) mergeMetadataLocked(remote *models.Game) {
	if s.game == nil || remote == nil || s.game.ID != remote.ID {
		return
	}
	s.game.Status = remote.Status
	s.game.CurrentPeriod = remote.CurrentPeriod
}

// SetPeriod advances the local period and marks metadata for push.
func (s *Session) SetPeriod(period int) error {
	if period < 1 || period > models.NumPeriods {
		return fmt.Errorf("period %d out of range", period)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return ErrNoGame
	}
	s.game.CurrentPeriod = period
	s.metaDirty = true
	return s.persistLocked()
}

// SetStatus changes the local game status and marks metadata for push.
func (s *Session) SetStatus(status models.GameStatus) error {
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return ErrNoGame
	}
	s.game.Status = status
	s.metaDirty = true
	return s.persistLocked()
}

// BeginFlush snapshots the queue and marks the session syncing. The
// returned slice is what this flush is allowed to clear: deltas
// applied while the flush is in the air stay queued for the next one.
func (s *Session) BeginFlush() (deltas []models.StatDelta, metaDirty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 && !s.metaDirty {
		return nil, false
	}
	snapshot := make([]models.StatDelta, len(s.pending))
	copy(snapshot, s.pending)
	s.status = models.SyncSyncing
	_ = s.persistLocked()
	return snapshot, s.metaDirty
}

// CompleteFlush drops exactly the acknowledged prefix of the queue.
func (s *Session) CompleteFlush(acked int, metaPushed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if acked > len(s.pending) {
		acked = len(s.pending)
	}
	s.pending = s.pending[acked:]
	if metaPushed {
		s.metaDirty = false
	}
	if len(s.pending) == 0 && !s.metaDirty {
		s.status = models.SyncSynced
	} else {
		s.status = models.SyncPending
	}
	_ = s.persistLocked()
}

// FailFlush leaves the queue untouched and flags the error state.
func (s *Session) FailFlush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = models.SyncError
	_ = s.persistLocked()
}

// Game returns a deep copy of the local game state.
func (s *Session) Game() *models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyGame(s.game)
}

// SyncStatus reports the queue state for the UI indicator.
func (s *Session) SyncStatus() models.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// PendingCount reports how many deltas await acknowledgement.
func (s *Session) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Plays returns the play-by-play feed, newest last.
func (s *Session) Plays() []models.Play {
	s.mu.Lock()
	defer s.mu.Unlock()
	plays := make([]models.Play, len(s.plays))
	copy(plays, s.plays)
	return plays
}

// Clear wipes the persisted state after a clean save-and-exit.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.game = nil
	s.pending = nil
	s.plays = nil
	s.status = models.SyncSynced
	s.metaDirty = false
	return s.storage.Clear()
}

func (s *Session) persistLocked() error {
	return s.storage.Save(&State{
		Game:    s.game,
		Pending: s.pending,
		Plays:   s.plays,
		Status:  s.status,
	})
}

func copyGame(game *models.Game) *models.Game {
	if game == nil {
		return nil
	}
	out := *game
	out.HomeTeam.Players = append([]models.PlayerInGame(nil), game.HomeTeam.Players...)
	out.AwayTeam.Players = append([]models.PlayerInGame(nil), game.AwayTeam.Players...)
	return &out
}
