// Package scoring is the scorekeeper's client engine: an owned local
// game state mutated optimistically, a durable queue of pending stat
// deltas, and a batch sync controller that reconciles with the server
// whenever connectivity allows. The scorekeeper never waits on the
// network; every action lands locally first.
package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/crtorres/canasta/internal/models"
)

// ErrNoState is returned by Storage.Load when nothing has been saved.
var ErrNoState = errors.New("no saved scoring state")

// State is the full persisted session: the local game, the pending
// delta queue, the play feed, and the sync indicator. Saved on every
// mutation so a crash or reload resumes exactly where scoring stopped.
type State struct {
	Game    *models.Game       `json:"game"`
	Pending []models.StatDelta `json:"pending"`
	Plays   []models.Play      `json:"plays,omitempty"`
	Status  models.SyncStatus  `json:"status"`
	SavedAt time.Time          `json:"savedAt"`
}

// Storage persists scoring state under a fixed store name.
type Storage interface {
	Load() (*State, error)
	Save(*State) error
	Clear() error
}

const stateFileName = "scoring-state.json"

// FileStore persists state as a JSON file in a directory. Writes go
// through a temp file and rename so a crash mid-write never leaves a
// truncated state behind.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (fs *FileStore) path() string {
	return filepath.Join(fs.dir, stateFileName)
}

func (fs *FileStore) Load() (*State, error) {
	data, err := os.ReadFile(fs.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &state, nil
}

func (fs *FileStore) Save(state *State) error {
	state.SavedAt = time.Now().UTC()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp, err := os.CreateTemp(fs.dir, stateFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close state: %w", err)
	}
	if err := os.Rename(tmp.Name(), fs.path()); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

func (fs *FileStore) Clear() error {
	err := os.Remove(fs.path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear state: %w", err)
	}
	return nil
}

// CleanupStale removes a saved state older than maxAge. Used by the
// housekeeping job so abandoned sessions do not resurrect weeks later.
func (fs *FileStore) CleanupStale(maxAge time.Duration) (bool, error) {
	state, err := fs.Load()
	if errors.Is(err, ErrNoState) {
		return false, nil
	}
	if err != nil {
		// An unreadable state file is itself stale.
		return true, fs.Clear()
	}
	if time.Since(state.SavedAt) < maxAge {
		return false, nil
	}
	return true, fs.Clear()
}

// MemoryStore is an in-process Storage for tests. State is copied
// through JSON on the way in and out so callers never alias it.
type MemoryStore struct {
	mu    sync.Mutex
	state []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (ms *MemoryStore) Load() (*State, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.state == nil {
		return nil, ErrNoState
	}
	var state State
	if err := json.Unmarshal(ms.state, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (ms *MemoryStore) Save(state *State) error {
	state.SavedAt = time.Now().UTC()
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.state = data
	return nil
}

func (ms *MemoryStore) Clear() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.state = nil
	return nil
}
