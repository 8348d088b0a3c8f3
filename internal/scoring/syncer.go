// internal/scoring/syncer.go
package scoring

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/crtorres/canasta/internal/models"
)

// DefaultFlushInterval is how often the syncer pushes queued deltas.
const DefaultFlushInterval = 15 * time.Second

// Syncer drains the session's pending queue to the server. Three
// triggers flush: the interval ticker, an online notification, and an
// explicit call (save-and-exit). At most one flush is ever in flight;
// overlapping triggers are skipped, not queued.
//
// Sync failures never propagate to the scoring flow. The queue stays
// intact, the status turns to error, and the next trigger retries.
type Syncer struct {
	session  *Session
	remote   Remote
	interval time.Duration
	notify   func(string)

	online chan struct{}

	mu       sync.Mutex
	inFlight bool
}

// NewSyncer wires a session to a remote. notify receives short
// user-facing messages about sync state and may be nil.
func NewSyncer(session *Session, remote Remote, interval time.Duration, notify func(string)) *Syncer {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	if notify == nil {
		notify = func(string) {}
	}
	return &Syncer{
		session:  session,
		remote:   remote,
		interval: interval,
		notify:   notify,
		online:   make(chan struct{}, 1),
	}
}

// NotifyOnline signals that connectivity returned. Non-blocking; a
// pending signal is enough, more are redundant.
func (sy *Syncer) NotifyOnline() {
	select {
	case sy.online <- struct{}{}:
	default:
	}
}

// Run drives the periodic flush until ctx is cancelled. A final flush
// attempt runs on the way out so an orderly shutdown loses nothing
// that the network can still take.
func (sy *Syncer) Run(ctx context.Context) {
	ticker := time.NewTicker(sy.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), DefaultRequestTimeout)
			_ = sy.Flush(flushCtx)
			cancel()
			return
		case <-ticker.C:
			_ = sy.Flush(ctx)
		case <-sy.online:
			sy.notify("Back online, syncing...")
			_ = sy.Flush(ctx)
		}
	}
}

// Flush pushes the queued deltas as one batch. The queue is cleared
// only for the exact snapshot that was acknowledged; deltas recorded
// while the request is in the air stay queued. A failed flush leaves
// everything in place for retry.
func (sy *Syncer) Flush(ctx context.Context) error {
	sy.mu.Lock()
	if sy.inFlight {
		sy.mu.Unlock()
		return nil
	}
	sy.inFlight = true
	sy.mu.Unlock()
	defer func() {
		sy.mu.Lock()
		sy.inFlight = false
		sy.mu.Unlock()
	}()

	deltas, metaDirty := sy.session.BeginFlush()
	if len(deltas) == 0 && !metaDirty {
		return nil
	}

	game := sy.session.Game()
	if game == nil {
		return ErrNoGame
	}

	if len(deltas) > 0 {
		if err := sy.remote.BatchUpdateStats(ctx, game.ID, deltas); err != nil {
			sy.session.FailFlush()
			sy.notify("Sync failed, keeping score locally")
			log.Warn().Err(err).
				Str("game_id", game.ID).
				Int("pending", sy.session.PendingCount()).
				Msg("Batch flush failed")
			return err
		}
	}

	metaPushed := false
	if metaDirty {
		if err := sy.remote.UpdateGameMetadata(ctx, game.ID, game.Status, game.CurrentPeriod); err != nil {
			// Stats landed; metadata retries on the next flush.
			sy.session.CompleteFlush(len(deltas), false)
			log.Warn().Err(err).Str("game_id", game.ID).Msg("Metadata push failed")
			return err
		}
		metaPushed = true
	}

	sy.session.CompleteFlush(len(deltas), metaPushed)
	log.Debug().
		Str("game_id", game.ID).
		Int("flushed", len(deltas)).
		Msg("Flush completed")
	return nil
}

// SaveAndExit finishes the game locally, flushes everything, and on
// success clears the persisted state. On failure the state file stays
// so a later session can resume and retry.
func (sy *Syncer) SaveAndExit(ctx context.Context) error {
	if err := sy.session.SetStatus(models.StatusFinished); err != nil {
		return err
	}
	if err := sy.Flush(ctx); err != nil {
		sy.notify("Could not reach server; game saved locally")
		return err
	}
	sy.notify("Game saved")
	return sy.session.Clear()
}
