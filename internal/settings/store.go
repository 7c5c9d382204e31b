// Package settings persists operator-editable provider settings as a
// JSON file under the user's home directory. The file is the source of
// truth for the hosted provider's API key, base URL and model; the
// running gateway is reconfigured whenever it changes.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"resumefill/internal/errors"
	"resumefill/internal/types"
)

const (
	configDirName  = ".resumefill"
	configFileName = "config.json"

	configFileMode = 0o600
	configDirMode  = 0o700
)

// Store abstracts settings persistence so the core service and tests
// can swap the backing file for an in-memory implementation.
type Store interface {
	// Load returns the persisted settings and whether any settings have
	// been persisted at all. A missing file is not an error; it yields
	// zero-value settings with ok false so callers can fall back to
	// static configuration.
	Load() (settings types.ProviderSettings, ok bool, err error)

	// Save atomically replaces the persisted settings.
	Save(types.ProviderSettings) error

	// Update applies a partial change on top of the persisted
	// settings. Empty fields in the patch leave the stored value
	// untouched, except APIKey which is always written so an operator
	// can clear a key.
	Update(patch types.ProviderSettings) (types.ProviderSettings, error)
}

// FileStore persists settings as a single JSON document. Writes go
// through a temp file and rename so a crash mid-write cannot leave a
// truncated config behind.
type FileStore struct {
	mu   sync.Mutex
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store backed by the given path, creating the
// parent directory if needed.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot create settings directory for %s", path), err)
	}
	return &FileStore{path: path}, nil
}

// DefaultPath returns the conventional settings location,
// ~/.resumefill/config.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			"Cannot resolve home directory for settings", err)
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// Path returns the file the store reads and writes.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (types.ProviderSettings, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) load() (types.ProviderSettings, bool, error) {
	var settings types.ProviderSettings

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, false, nil
		}
		return settings, false, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read settings file %s", s.path), err)
	}

	if err := json.Unmarshal(data, &settings); err != nil {
		return types.ProviderSettings{}, true, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Settings file %s is not valid JSON", s.path), err)
	}
	return settings, true, nil
}

func (s *FileStore) Save(settings types.ProviderSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(settings)
}

func (s *FileStore) save(settings types.ProviderSettings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeInvalidConfig,
			"Cannot encode settings", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, configFileMode); err != nil {
		return errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot write settings file %s", s.path), err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot replace settings file %s", s.path), err)
	}
	return nil
}

func (s *FileStore) Update(patch types.ProviderSettings) (types.ProviderSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, _, err := s.load()
	if err != nil {
		return types.ProviderSettings{}, err
	}

	merged := merge(current, patch)
	if err := s.save(merged); err != nil {
		return types.ProviderSettings{}, err
	}
	return merged, nil
}

// merge overlays the patch on the current settings. The API key is
// taken from the patch unconditionally: posting an empty key is how an
// operator deliberately unconfigures the provider.
func merge(current, patch types.ProviderSettings) types.ProviderSettings {
	merged := current
	merged.APIKey = patch.APIKey
	if patch.APIBase != "" {
		merged.APIBase = patch.APIBase
	}
	if patch.Model != "" {
		merged.Model = patch.Model
	}
	return merged
}
