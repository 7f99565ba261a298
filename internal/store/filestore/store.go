package filestore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/MrSnakeDoc/portal/internal/domain"
	"github.com/MrSnakeDoc/portal/internal/logger"
)

const fileMode = 0o644

// Snapshot is a loaded document plus the revision of the bytes it came from.
type Snapshot struct {
	Config   *domain.Config
	Revision string
}

// Store persists the portal document as a single JSON file.
//
// Saves from this process are serialized; nothing guards against other
// processes writing the file, which is why SaveIfUnchanged exists.
type Store struct {
	path   string
	logger logger.Logger
	mu     sync.Mutex

	// written is the revision of the last file this process wrote.
	written string
}

// New creates a store for the JSON file at path.
func New(path string, log logger.Logger) *Store {
	return &Store{
		path:   path,
		logger: log,
	}
}

// Path returns the store file location.
func (s *Store) Path() string { return s.path }

// Load reads the stored document.
//
// A missing file is a first run: the built-in default is written and
// returned. An unparseable file yields the built-in default and is left
// untouched on disk; the condition is only logged.
func (s *Store) Load() (Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("store file missing, writing built-in default",
			logger.String("path", s.path))
		cfg := Default()
		rev, err := s.Save(cfg)
		if err != nil {
			return Snapshot{}, err
		}
		return Snapshot{Config: cfg, Revision: rev}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read store file: %w", err)
	}

	rev := RevisionOf(data)
	cfg, err := Decode(data)
	if err != nil {
		s.logger.Warn("store file is corrupt, using built-in default without repairing it",
			logger.String("path", s.path),
			logger.Error(err))
		return Snapshot{Config: Default(), Revision: rev}, nil
	}

	return Snapshot{Config: cfg, Revision: rev}, nil
}

// Save overwrites the whole document and returns its new revision.
func (s *Store) Save(cfg *domain.Config) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(cfg)
}

// SaveIfUnchanged writes cfg only if the file still holds the bytes
// identified by revision. An empty revision expects the file to be absent.
func (s *Store) SaveIfUnchanged(cfg *domain.Config, revision string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.revision()
	if err != nil {
		return "", err
	}
	if current != revision {
		return "", domain.ErrConflict
	}
	return s.writeLocked(cfg)
}

// Revision returns the revision of the file currently on disk, or "" if it
// does not exist.
func (s *Store) Revision() (string, error) {
	return s.revision()
}

func (s *Store) revision() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read store file: %w", err)
	}
	return RevisionOf(data), nil
}

func (s *Store) writeLocked(cfg *domain.Config) (string, error) {
	data, err := Encode(cfg)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to replace store file: %w", err)
	}

	rev := RevisionOf(data)
	s.written = rev
	s.logger.Debug("store file written",
		logger.String("path", s.path),
		logger.Int("bytes", len(data)))

	return rev, nil
}

// LastWritten returns the revision of the last save made by this process,
// or "" if it has not saved yet.
func (s *Store) LastWritten() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}
