package status

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_WriteFileAtomic(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	mgr := New(dir)

	content := []byte("hello\nworld\n")
	require.NoError(t, mgr.WriteFileAtomic(ctx, "nested/dir/out.txt", content))

	got, err := os.ReadFile(filepath.Join(dir, "nested/dir/out.txt"))
	require.NoError(t, err)
	assert.Equal(t, content, got, "round trip should be byte exact")

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Join(dir, "nested/dir"))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".patchrc-"), "temp file %s should have been renamed away", e.Name())
	}
}

func TestManager_WriteFileAtomic_PreservesMode(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	mgr := New(dir)

	path := filepath.Join(dir, "script.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0755))

	require.NoError(t, mgr.WriteFileAtomic(ctx, "script.sh", []byte("#!/bin/sh\necho patched\n")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm(), "existing mode should be preserved")
}

func TestManager_ReadFile_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	mgr := New(dir)

	// Arbitrary bytes, including a lone CR and a null, must survive untouched.
	content := []byte("a\r\nb\x00c\n")
	require.NoError(t, mgr.WriteFileAtomic(ctx, "blob.bin", content))

	got, err := mgr.ReadFile(ctx, "blob.bin")
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestManager_ReadFile_Missing(t *testing.T) {
	mgr := New(t.TempDir())
	_, err := mgr.ReadFile(context.Background(), "missing.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading file")
}

func TestManager_BackupAndRestore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	mgr := New(dir)

	original := []byte("original content\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), original, 0644))

	require.NoError(t, mgr.BackupFile(ctx, "a.txt"))

	backup, err := os.ReadFile(filepath.Join(dir, "a.txt.bak"))
	require.NoError(t, err)
	assert.Equal(t, original, backup)

	// Clobber and restore.
	require.NoError(t, mgr.WriteFileAtomic(ctx, "a.txt", []byte("clobbered")))
	require.NoError(t, mgr.RestoreFile(ctx, "a.txt"))

	got, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestManager_TrackAndList(t *testing.T) {
	ctx := context.Background()
	mgr := New(t.TempDir())

	mgr.TrackFile(ctx, "b.txt", FileInfo{Status: StatusUnchanged})
	mgr.TrackFile(ctx, "a.txt", FileInfo{Status: StatusPatched, RulesTotal: 2, RulesMatched: 2, Replacements: 3})

	info, err := mgr.GetFileInfo(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, StatusPatched, info.Status)
	assert.Equal(t, 3, info.Replacements)

	_, err = mgr.GetFileInfo(ctx, "nope.txt")
	require.Error(t, err)

	infos := mgr.ListFiles(ctx)
	require.Len(t, infos, 2)
	assert.Equal(t, "a.txt", infos[0].Path, "list should be sorted by path")
	assert.Equal(t, "b.txt", infos[1].Path)
}

func TestFileStatus_String(t *testing.T) {
	assert.Equal(t, "patched", StatusPatched.String())
	assert.Equal(t, "unchanged", StatusUnchanged.String())
	assert.Equal(t, "skipped", StatusSkipped.String())
	assert.Equal(t, "missing", StatusMissing.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "unknown", StatusUnknown.String())
}

func TestDefaultFileFormatter(t *testing.T) {
	f := NewDefaultFileFormatter()

	line := f.FormatFileOperation(FileInfo{
		Path: "a.txt", Status: StatusPatched, RulesTotal: 2, RulesMatched: 1, Replacements: 4,
	})
	assert.Contains(t, line, "a.txt")
	assert.Contains(t, line, "patched")
	assert.Contains(t, line, "1/2 rule(s)")

	summary := f.FormatSummary(1, 2, 0, 3, 4)
	assert.Contains(t, summary, "1 file(s) patched")
	assert.Contains(t, summary, "3/4 rules matched")

	assert.Empty(t, f.FormatError(nil))
}
