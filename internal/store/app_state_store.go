package store

import (
	"context"
	"errors"
	"os"
	"sync"

	"bizchat/internal/types"
)

// AppStateStore persists the chat session between runs: who the viewer is
// and which conversation was open last.
type AppStateStore interface {
	Load(ctx context.Context) (*types.AppState, error)
	Save(ctx context.Context, state *types.AppState) error
}

// FileAppStateStore keeps the session in a single JSON file under the data
// dir. Writes happen on conversation switches, so contention is effectively
// zero; the mutex only guards against overlapping saves from batched
// commands.
type FileAppStateStore struct {
	path string
	mu   sync.Mutex
}

func NewFileAppStateStore(path string) *FileAppStateStore {
	return &FileAppStateStore{path: path}
}

// Load returns the saved session, or a zero state on first run.
func (s *FileAppStateStore) Load(ctx context.Context) (*types.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := &types.AppState{}
	err := readJSON(s.path, state)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return state, nil
		}
		return nil, err
	}
	return state, nil
}

func (s *FileAppStateStore) Save(ctx context.Context, state *types.AppState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state == nil {
		return errors.New("state is required")
	}
	return writeJSONAtomic(s.path, state)
}
