package scheduler

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/crtorres/canasta/internal/scoring"
)

const staleStateAge = 7 * 24 * time.Hour

// RegisterStateCleanupJob sweeps abandoned scoring-state files out of
// the shared state directory nightly. Relevant on kiosk deployments
// where scorer sessions share the server host.
func RegisterStateCleanupJob(stateDir string) error {
	jobName := "scoring_state_cleanup"
	cronExpr := "0 5 * * *"
	jobLogger := log.With().
		Str("component", "scoring_state_cleanup_job").
		Str("state_dir", stateDir).
		Logger()

	_, err := AddJob(jobName, cronExpr, func() {
		store, err := scoring.NewFileStore(stateDir)
		if err != nil {
			jobLogger.Error().Err(err).Msg("Failed to open state dir for cleanup")
			return
		}
		removed, err := store.CleanupStale(staleStateAge)
		if err != nil {
			jobLogger.Error().Err(err).Msg("State cleanup failed")
			return
		}
		if removed {
			jobLogger.Info().Msg("Removed stale scoring state")
		}
	})
	return err
}
