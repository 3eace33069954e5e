package state

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/patchrc/patchrc/pkg/status"
)

// LockFileName is the name of the lock file written next to the config.
const LockFileName = ".patchrc.lock"

// LockFile is the on-disk state tracking what was patched and when.
type LockFile struct {
	LastUpdated time.Time `json:"last_updated"`

	// ConfigHash detects whether the lock matches the current config
	ConfigHash string `json:"config_hash"`

	// Targets tracks every file the last apply touched or inspected
	Targets []TargetState `json:"targets"`
}

// TargetState tracks the post-patch state of a single target file.
type TargetState struct {
	Path        string    `json:"path"`
	ContentHash string    `json:"content_hash"`
	RuleCount   int       `json:"rule_count"`
	MatchCount  int       `json:"match_count"`
	LastPatched time.Time `json:"last_patched"`
}

// Manager loads, mutates and saves the lock file.
type Manager struct {
	path string

	mu   sync.Mutex
	file LockFile
}

// New creates a state manager for the lock file in dir.
func New(dir string) *Manager {
	return &Manager{
		path: filepath.Join(dir, LockFileName),
	}
}

// Path returns the lock file path.
func (m *Manager) Path() string {
	return m.path
}

// Load reads the lock file from disk. A missing lock file is not an error:
// it simply means no apply has run yet.
func (m *Manager) Load(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", m.path).Msg("loading lock file")

	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			m.file = LockFile{}
			return nil
		}
		return errors.Errorf("reading lock file: %w", err)
	}

	var file LockFile
	if err := json.Unmarshal(data, &file); err != nil {
		return errors.Errorf("parsing lock file: %w", err)
	}

	m.file = file
	return nil
}

// Save writes the lock file to disk via a temp file and rename.
func (m *Manager) Save(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", m.path).Msg("saving lock file")

	m.mu.Lock()
	defer m.mu.Unlock()

	m.file.LastUpdated = time.Now().UTC()
	sort.Slice(m.file.Targets, func(i, j int) bool {
		return m.file.Targets[i].Path < m.file.Targets[j].Path
	})

	data, err := json.MarshalIndent(m.file, "", "  ")
	if err != nil {
		return errors.Errorf("encoding lock file: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(m.path), ".patchrc-lock-*")
	if err != nil {
		return errors.Errorf("creating temp lock file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Errorf("writing temp lock file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Errorf("closing temp lock file: %w", err)
	}

	if err := os.Rename(tmpName, m.path); err != nil {
		os.Remove(tmpName)
		return errors.Errorf("renaming temp lock file: %w", err)
	}

	return nil
}

// SetConfigHash records the hash of the config that produced this state.
func (m *Manager) SetConfigHash(hash string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.file.ConfigHash = hash
}

// ConfigHash returns the recorded config hash.
func (m *Manager) ConfigHash() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.file.ConfigHash
}

// PutTarget adds or updates the state entry for a target file.
func (m *Manager) PutTarget(ctx context.Context, target TargetState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.file.Targets {
		if existing.Path == target.Path {
			m.file.Targets[i] = target
			return
		}
	}
	m.file.Targets = append(m.file.Targets, target)
}

// GetTarget returns the state entry for a target file, if present.
func (m *Manager) GetTarget(path string) (TargetState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, target := range m.file.Targets {
		if target.Path == path {
			return target, true
		}
	}
	return TargetState{}, false
}

// Targets returns a copy of all tracked target entries.
func (m *Manager) Targets() []TargetState {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]TargetState, len(m.file.Targets))
	copy(out, m.file.Targets)
	return out
}

// IsConsistent checks whether every tracked target still has the content
// hash recorded at the last apply. A missing file or a changed hash means
// something modified the tree since patchrc last ran.
func (m *Manager) IsConsistent(ctx context.Context) (bool, error) {
	logger := zerolog.Ctx(ctx)

	m.mu.Lock()
	targets := make([]TargetState, len(m.file.Targets))
	copy(targets, m.file.Targets)
	m.mu.Unlock()

	for _, target := range targets {
		content, err := os.ReadFile(target.Path)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Debug().Str("path", target.Path).Msg("tracked file is missing")
				return false, nil
			}
			return false, errors.Errorf("reading tracked file %s: %w", target.Path, err)
		}

		if status.Checksum(content) != target.ContentHash {
			logger.Debug().Str("path", target.Path).Msg("tracked file was modified")
			return false, nil
		}
	}

	return true, nil
}
