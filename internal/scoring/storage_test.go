package scoring

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/crtorres/canasta/internal/models"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	saved := &State{
		Game:    testGame("g1", models.StatusLive),
		Pending: []models.StatDelta{models.NewShotDelta("p7", 2, 3, true)},
		Status:  models.SyncPending,
	}
	if err := store.Save(saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Game.ID != "g1" {
		t.Fatalf("game id = %s, want g1", loaded.Game.ID)
	}
	if len(loaded.Pending) != 1 || loaded.Pending[0].PlayerID != "p7" {
		t.Fatalf("pending = %+v", loaded.Pending)
	}
	if loaded.Status != models.SyncPending {
		t.Fatalf("status = %s, want pending", loaded.Status)
	}
	if loaded.SavedAt.IsZero() {
		t.Fatal("SavedAt not stamped")
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoState) {
		t.Fatalf("err = %v, want ErrNoState", err)
	}
}

func TestFileStoreClear(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Save(&State{Status: models.SyncSynced}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoState) {
		t.Fatalf("state survived clear: %v", err)
	}
	// Clearing an already-empty store is fine.
	if err := store.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestFileStoreCleanupStale(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	old := State{
		Status:  models.SyncPending,
		SavedAt: time.Now().UTC().Add(-48 * time.Hour),
	}
	data, err := json.Marshal(old)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, stateFileName), data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	removed, err := store.CleanupStale(24 * time.Hour)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if !removed {
		t.Fatal("stale state not removed")
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoState) {
		t.Fatal("stale state still present")
	}

	// A fresh state survives cleanup.
	if err := store.Save(&State{Status: models.SyncSynced}); err != nil {
		t.Fatalf("save: %v", err)
	}
	removed, err = store.CleanupStale(24 * time.Hour)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed {
		t.Fatal("fresh state was removed")
	}
}
