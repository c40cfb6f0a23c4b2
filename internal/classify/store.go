package classify

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ModelStore persists the single currently-active trained model. The
// artifact is replaced wholesale on each save; no history is kept.
type ModelStore struct {
	path string
	mu   sync.Mutex
}

// NewModelStore creates a ModelStore backed by the given file path. The file
// is created on first save, never implicitly deleted.
func NewModelStore(path string) *ModelStore {
	return &ModelStore{path: path}
}

// Path returns the artifact file path.
func (s *ModelStore) Path() string {
	return s.path
}

// Save atomically replaces the persisted model artifact. The model is
// written to a temporary file in the same directory and then renamed over
// the target, so a crash mid-write never leaves a corrupt artifact.
func (s *ModelStore) Save(m *TrainedModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".model-*")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(m); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close artifact: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace artifact: %w", err)
	}
	return nil
}

// Load reads the persisted model artifact. It returns ErrNoModel when no
// artifact exists yet.
func (s *ModelStore) Load() (*TrainedModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoModel
		}
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	var m TrainedModel
	if err := gob.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	return &m, nil
}
