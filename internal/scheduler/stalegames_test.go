package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/crtorres/canasta/internal/models"
	"github.com/crtorres/canasta/internal/testutil"
)

func TestFinishStaleGames(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewTestDB(t)

	home, err := database.Queries.CreateTeam(ctx, "Aros", "")
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	away, err := database.Queries.CreateTeam(ctx, "Bravos", "")
	if err != nil {
		t.Fatalf("create team: %v", err)
	}

	staleID, err := database.CreateGame(ctx, home.ID, away.ID)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	freshID, err := database.CreateGame(ctx, home.ID, away.ID)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	for _, id := range []string{staleID, freshID} {
		if err := database.Queries.UpdateGameStatus(ctx, id, models.StatusLive); err != nil {
			t.Fatalf("set live: %v", err)
		}
	}

	// Backdate the stale game past the sweep threshold.
	old := time.Now().UTC().Add(-2 * staleGameAge)
	if _, err := database.ExecContext(ctx, "UPDATE games SET created_at = ? WHERE id = ?", old, staleID); err != nil {
		t.Fatalf("backdate game: %v", err)
	}

	count, err := FinishStaleGames(ctx, database, time.Now().UTC())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if count != 1 {
		t.Fatalf("finished = %d, want 1", count)
	}

	staleRow, err := database.Queries.GetGameRow(ctx, staleID)
	if err != nil {
		t.Fatalf("get stale game: %v", err)
	}
	if models.GameStatus(staleRow.Status) != models.StatusFinished {
		t.Fatalf("stale game status = %s, want finished", staleRow.Status)
	}

	freshRow, err := database.Queries.GetGameRow(ctx, freshID)
	if err != nil {
		t.Fatalf("get fresh game: %v", err)
	}
	if models.GameStatus(freshRow.Status) != models.StatusLive {
		t.Fatalf("fresh game status = %s, want live", freshRow.Status)
	}
}
