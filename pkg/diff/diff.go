package diff

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

var dmp = diffmatchpatch.New()

// HasChanges reports whether two content blobs differ at all.
func HasChanges(original, modified string) bool {
	return original != modified
}

// Changes computes the edits turning original into modified.
func Changes(original, modified string) []diffmatchpatch.Diff {
	diffs := dmp.DiffMain(original, modified, true)
	return dmp.DiffCleanupSemantic(diffs)
}

// Preview renders a colored terminal preview of the edits turning original
// into modified. Insertions are green, deletions are red. Returns the empty
// string when nothing changed.
func Preview(original, modified string) string {
	if !HasChanges(original, modified) {
		return ""
	}
	return dmp.DiffPrettyText(Changes(original, modified))
}

// Stat returns the number of inserted and deleted characters.
func Stat(original, modified string) (inserted, deleted int) {
	for _, d := range Changes(original, modified) {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			inserted += len(d.Text)
		case diffmatchpatch.DiffDelete:
			deleted += len(d.Text)
		}
	}
	return inserted, deleted
}
