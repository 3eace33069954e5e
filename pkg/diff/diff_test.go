package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasChanges(t *testing.T) {
	assert.False(t, HasChanges("same", "same"))
	assert.True(t, HasChanges("same", "different"))
}

func TestPreview(t *testing.T) {
	assert.Empty(t, Preview("identical", "identical"), "no preview for identical content")

	preview := Preview("const x = 1\n", "const x = 2\n")
	assert.Contains(t, preview, "1")
	assert.Contains(t, preview, "2")
}

func TestStat(t *testing.T) {
	inserted, deleted := Stat("abc", "abXc")
	assert.Equal(t, 1, inserted)
	assert.Equal(t, 0, deleted)

	inserted, deleted = Stat("abc", "ac")
	assert.Equal(t, 0, inserted)
	assert.Equal(t, 1, deleted)

	inserted, deleted = Stat("same", "same")
	assert.Equal(t, 0, inserted)
	assert.Equal(t, 0, deleted)
}
