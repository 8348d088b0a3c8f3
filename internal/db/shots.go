// internal/db/shots.go
package db

import (
	"context"
	"fmt"

	"github.com/crtorres/canasta/internal/models"
)

// RegisterShot persists a shot-chart entry and applies its stat
// increment in one transaction. Used by the per-action endpoint for
// connected scorers; the batch path covers queued offline work.
func (db *DB) RegisterShot(ctx context.Context, gameID string, shot models.Shot) (models.Shot, error) {
	delta := models.NewShotDelta(shot.PlayerID, shot.Period, shot.Points, shot.Made)
	if err := delta.Validate(); err != nil {
		return models.Shot{}, err
	}

	var saved models.Shot
	err := db.RunInTx(ctx, func(tx *DB) error {
		statsID, err := tx.Queries.GetStatsRowID(ctx, gameID, shot.PlayerID)
		if err != nil {
			return fmt.Errorf("stats row for player %s: %w", shot.PlayerID, err)
		}
		saved, err = tx.Queries.InsertShot(ctx, statsID, shot)
		if err != nil {
			return err
		}
		return tx.applyIncrements(ctx, gameID, []models.StatDelta{delta})
	})
	if err != nil {
		return models.Shot{}, err
	}
	return saved, nil
}

// RegisterEvent applies a single rebound, assist, or foul increment.
func (db *DB) RegisterEvent(ctx context.Context, gameID string, delta models.StatDelta) error {
	if err := delta.Validate(); err != nil {
		return err
	}
	return db.RunInTx(ctx, func(tx *DB) error {
		return tx.applyIncrements(ctx, gameID, []models.StatDelta{delta})
	})
}
