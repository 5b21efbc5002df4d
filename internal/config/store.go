package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/HendryAvila/llm-prep/internal/prepfail"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// Store defines the persistence contract for project configs.
// Abstracted for testability.
type Store interface {
	Load(projectRoot string) (*ProjectConfig, error)
	Save(projectRoot string, cfg *ProjectConfig) error
}

// FileStore implements Store with one JSON file per project root.
type FileStore struct{}

// NewFileStore creates a filesystem-backed config store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// ConfigPath returns the absolute path of the project's config file.
func ConfigPath(projectRoot string) string {
	return filepath.Join(projectRoot, FileName)
}

// NotesPath returns the project's notes directory.
func NotesPath(projectRoot string) string {
	return filepath.Join(projectRoot, NotesDir)
}

// Load reads the project's config. A missing file yields the defaults.
// A corrupt file is logged and also yields the defaults, so one bad edit
// cannot lock a project out of every operation.
func (s *FileStore) Load(projectRoot string) (*ProjectConfig, error) {
	path := ConfigPath(projectRoot)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewProjectConfig(), nil
		}
		return nil, prepfail.IO("reading config", path, err)
	}

	cfg := NewProjectConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("config is not valid JSON, using defaults")
		return NewProjectConfig(), nil
	}
	cfg.fillDefaults()
	return cfg, nil
}

// Save writes cfg atomically: the record goes to a temp file in the same
// directory which is then renamed over the config.
func (s *FileStore) Save(projectRoot string, cfg *ProjectConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling project config: %w", err)
	}
	path := ConfigPath(projectRoot)
	if err := WriteFileAtomic(path, data, 0o644); err != nil {
		return prepfail.IO("writing config", path, err)
	}
	return nil
}

// WriteFileAtomic writes data to path through a temp file and rename,
// creating parent directories as needed.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}
