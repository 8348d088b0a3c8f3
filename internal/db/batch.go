// internal/db/batch.go
package db

import (
	"context"
	"fmt"
	"sort"

	"github.com/crtorres/canasta/internal/models"
)

var eventColumnNames = map[models.EventType]string{
	models.EventRebound: "rebounds",
	models.EventAssist:  "assists",
	models.EventFoul:    "fouls",
}

// aggregateDeltas folds an ordered delta batch into per-player
// field-level increments. Delta ordering within a batch is irrelevant:
// all increments on the same counter commute.
func aggregateDeltas(deltas []models.StatDelta) (map[string]map[string]int, error) {
	updates := make(map[string]map[string]int)
	for _, d := range deltas {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		fields := updates[d.PlayerID]
		if fields == nil {
			fields = make(map[string]int)
			updates[d.PlayerID] = fields
		}

		switch d.Kind {
		case models.DeltaShot:
			fields[fmt.Sprintf("p%d_points%d_attempted", d.Period, d.Shot.Points)]++
			if d.Shot.Made {
				fields[fmt.Sprintf("p%d_points%d_made", d.Period, d.Shot.Points)]++
			}
		case models.DeltaEvent:
			fields[fmt.Sprintf("p%d_%s", d.Period, eventColumnNames[d.Event])]++
		}
	}
	return updates, nil
}

// ApplyStatBatch applies a batch of stat deltas to the stored per-period
// stats in a single all-or-nothing transaction scoped to the whole
// batch. Either every increment lands or none do; a failed call leaves
// the database untouched, which is what makes client-side retry of the
// same batch safe. An empty batch is a successful no-op.
func (db *DB) ApplyStatBatch(ctx context.Context, gameID string, deltas []models.StatDelta) error {
	if len(deltas) == 0 {
		return nil
	}
	return db.RunInTx(ctx, func(tx *DB) error {
		return tx.applyIncrements(ctx, gameID, deltas)
	})
}

// applyIncrements executes the aggregated field increments against the
// receiver's binding. Callers run it inside a transaction.
func (db *DB) applyIncrements(ctx context.Context, gameID string, deltas []models.StatDelta) error {
	updates, err := aggregateDeltas(deltas)
	if err != nil {
		return fmt.Errorf("invalid batch: %w", err)
	}

	for playerID, fields := range updates {
		// Deterministic column order keeps the statement stable
		// across retries of the same batch.
		cols := make([]string, 0, len(fields))
		for col := range fields {
			cols = append(cols, col)
		}
		sort.Strings(cols)

		query := "UPDATE player_game_stats SET "
		args := make([]any, 0, len(cols)+2)
		for i, col := range cols {
			if i > 0 {
				query += ", "
			}
			query += col + " = " + col + " + ?"
			args = append(args, fields[col])
		}
		query += " WHERE game_id = ? AND player_id = ?"
		args = append(args, gameID, playerID)

		res, err := db.Queries.db.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("apply increments for player %s: %w", playerID, err)
		}
		if err := requireRowAffected(res); err != nil {
			return fmt.Errorf("no stats row for player %s in game %s: %w", playerID, gameID, err)
		}
	}
	return nil
}
