package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/crtorres/canasta/internal/db"
	"github.com/crtorres/canasta/internal/models"
)

const (
	staleGameAge        = 24 * time.Hour
	staleGameJobTimeout = 2 * time.Minute
)

// FinishStaleGames marks games that have been live for longer than
// staleGameAge as finished. Scorekeepers occasionally close the app
// without saving; the nightly sweep keeps those games from staying
// live forever.
func FinishStaleGames(ctx context.Context, database *db.DB, now time.Time) (int, error) {
	if database == nil {
		return 0, fmt.Errorf("stale game sweep requires database")
	}

	rows, err := database.Queries.ListGameRows(ctx, string(models.StatusLive))
	if err != nil {
		return 0, fmt.Errorf("list live games: %w", err)
	}

	logger := log.Ctx(ctx)
	finished := 0
	for _, row := range rows {
		if now.Sub(row.CreatedAt) < staleGameAge {
			continue
		}
		if err := database.Queries.UpdateGameStatus(ctx, row.ID, models.StatusFinished); err != nil {
			logger.Error().Err(err).Str("game_id", row.ID).Msg("Failed to finish stale game")
			continue
		}
		logger.Info().
			Str("game_id", row.ID).
			Time("created_at", row.CreatedAt).
			Msg("Finished stale live game")
		finished++
	}
	return finished, nil
}

// RegisterStaleGameJob runs the stale game sweep nightly.
func RegisterStaleGameJob(database *db.DB) error {
	if database == nil {
		return fmt.Errorf("stale game job requires database")
	}

	jobName := "stale_game_sweep"
	cronExpr := "30 4 * * *"
	jobLogger := log.With().
		Str("component", "stale_game_job").
		Str("job_name", jobName).
		Str("cron", cronExpr).
		Logger()

	_, err := AddJob(jobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), staleGameJobTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		count, err := FinishStaleGames(ctx, database, time.Now().UTC())
		if err != nil {
			jobLogger.Error().Err(err).Msg("Stale game sweep failed")
			return
		}
		if count > 0 {
			jobLogger.Info().Int("finished", count).Msg("Stale game sweep completed")
		}
	})
	return err
}
