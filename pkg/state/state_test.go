package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchrc/patchrc/pkg/status"
)

func TestManager_LoadMissingLockIsEmpty(t *testing.T) {
	mgr := New(t.TempDir())
	require.NoError(t, mgr.Load(context.Background()))
	assert.Empty(t, mgr.Targets())
	assert.Empty(t, mgr.ConfigHash())
}

func TestManager_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	mgr := New(dir)
	mgr.SetConfigHash("abc123")
	mgr.PutTarget(ctx, TargetState{
		Path:        filepath.Join(dir, "a.txt"),
		ContentHash: "deadbeef",
		RuleCount:   2,
		MatchCount:  1,
		LastPatched: time.Now().UTC(),
	})
	require.NoError(t, mgr.Save(ctx))

	reloaded := New(dir)
	require.NoError(t, reloaded.Load(ctx))

	assert.Equal(t, "abc123", reloaded.ConfigHash())
	target, ok := reloaded.GetTarget(filepath.Join(dir, "a.txt"))
	require.True(t, ok, "target should survive the round trip")
	assert.Equal(t, "deadbeef", target.ContentHash)
	assert.Equal(t, 2, target.RuleCount)
	assert.Equal(t, 1, target.MatchCount)
}

func TestManager_PutTargetReplacesExisting(t *testing.T) {
	ctx := context.Background()
	mgr := New(t.TempDir())

	mgr.PutTarget(ctx, TargetState{Path: "a.txt", ContentHash: "one"})
	mgr.PutTarget(ctx, TargetState{Path: "a.txt", ContentHash: "two"})

	require.Len(t, mgr.Targets(), 1)
	target, ok := mgr.GetTarget("a.txt")
	require.True(t, ok)
	assert.Equal(t, "two", target.ContentHash)
}

func TestManager_IsConsistent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")

	content := []byte("patched content\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	mgr := New(dir)
	mgr.PutTarget(ctx, TargetState{Path: path, ContentHash: status.Checksum(content)})

	consistent, err := mgr.IsConsistent(ctx)
	require.NoError(t, err)
	assert.True(t, consistent, "untouched file should be consistent")

	// Outside modification breaks consistency.
	require.NoError(t, os.WriteFile(path, []byte("someone else wrote this\n"), 0644))
	consistent, err = mgr.IsConsistent(ctx)
	require.NoError(t, err)
	assert.False(t, consistent, "modified file should be inconsistent")

	// So does deleting the file.
	require.NoError(t, os.Remove(path))
	consistent, err = mgr.IsConsistent(ctx)
	require.NoError(t, err)
	assert.False(t, consistent, "missing file should be inconsistent")
}
