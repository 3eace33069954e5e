// Copyright 2025 patchrc authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package status

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 FileStatus represents the outcome for one target file
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusPatched              // File was rewritten with at least one replacement
	StatusUnchanged            // All rules were no-ops, content identical
	StatusSkipped              // File was not written (dry run)
	StatusMissing              // Target file does not exist
	StatusFailed               // An error occurred while processing the file
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusPatched:
		return "patched"
	case StatusUnchanged:
		return "unchanged"
	case StatusSkipped:
		return "skipped"
	case StatusMissing:
		return "missing"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 FileInfo contains metadata about a processed file
type FileInfo struct {
	Path         string     // Path to the file, relative to the base dir
	Status       FileStatus // Outcome for this file
	Size         int64      // Size after processing
	Checksum     string     // Content hash after processing
	RulesTotal   int        // Rules configured for this file
	RulesMatched int        // Rules that matched at least once
	Replacements int        // Total occurrences replaced
	Error        error      // Any error associated with this file
}

// 🔧 Manager handles file system operations and tracks per-file outcomes
type Manager struct {
	baseDir string

	mu    sync.RWMutex
	files map[string]FileInfo
}

// 🏭 New creates a new status manager rooted at baseDir
func New(baseDir string) *Manager {
	return &Manager{
		baseDir: filepath.Clean(baseDir),
		files:   make(map[string]FileInfo),
	}
}

// BaseDir returns the manager's root directory.
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// 🔗 abs resolves a path against the base dir
func (m *Manager) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.baseDir, path)
}

// 📖 ReadFile reads the full content of a file
func (m *Manager) ReadFile(ctx context.Context, path string) ([]byte, error) {
	content, err := os.ReadFile(m.abs(path))
	if err != nil {
		return nil, errors.Errorf("reading file %s: %w", path, err)
	}
	return content, nil
}

// 🔍 FileExists checks whether a file exists
func (m *Manager) FileExists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(m.abs(path))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Errorf("checking file %s: %w", path, err)
	}
	return true, nil
}

// 💾 WriteFileAtomic writes content via a temp file and rename so a failed
// write can never leave the target truncated
func (m *Manager) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	logger := zerolog.Ctx(ctx)
	target := m.abs(path)

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	// Preserve the mode of an existing target, default for new files.
	mode := os.FileMode(0644)
	if info, err := os.Stat(target); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".patchrc-*")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tmpName, mode); err != nil {
		os.Remove(tmpName)
		return errors.Errorf("setting file mode: %w", err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return errors.Errorf("renaming temp file: %w", err)
	}

	logger.Debug().Str("path", path).Int("bytes", len(content)).Msg("wrote file atomically")
	return nil
}

// 🗄️ BackupFile copies a file to <path>.bak before modification
func (m *Manager) BackupFile(ctx context.Context, path string) error {
	src := m.abs(path)
	dst := src + ".bak"

	in, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening file for backup: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errors.Errorf("stating file for backup: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Errorf("creating backup file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return errors.Errorf("copying backup content: %w", err)
	}

	return nil
}

// ♻️ RestoreFile restores a file from its <path>.bak copy
func (m *Manager) RestoreFile(ctx context.Context, path string) error {
	backup := m.abs(path) + ".bak"
	content, err := os.ReadFile(backup)
	if err != nil {
		return errors.Errorf("reading backup file: %w", err)
	}
	if err := m.WriteFileAtomic(ctx, path, content); err != nil {
		return errors.Errorf("restoring file: %w", err)
	}
	return nil
}

// 🗑️ DeleteFile removes a file
func (m *Manager) DeleteFile(ctx context.Context, path string) error {
	if err := os.Remove(m.abs(path)); err != nil {
		return errors.Errorf("deleting file %s: %w", path, err)
	}
	return nil
}

// 📈 TrackFile records the outcome for a file
func (m *Manager) TrackFile(ctx context.Context, path string, info FileInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info.Path = path
	m.files[path] = info
}

// 🔎 GetFileInfo returns the tracked outcome for a file
func (m *Manager) GetFileInfo(ctx context.Context, path string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.files[path]
	if !ok {
		return FileInfo{}, errors.Errorf("no status tracked for file: %s", path)
	}
	return info, nil
}

// 📋 ListFiles returns all tracked files sorted by path
func (m *Manager) ListFiles(ctx context.Context) []FileInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := make([]FileInfo, 0, len(m.files))
	for _, info := range m.files {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })
	return infos
}

// 🔐 Checksum returns the hex sha256 of content
func Checksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
