package text

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplacer_Apply(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		rules        []Rule
		want         string
		wantCount    int
		wantModified bool
	}{
		{
			name:    "simple_replacement",
			content: "Hello World",
			rules: []Rule{
				{Search: "World", Replace: "Universe"},
			},
			want:         "Hello Universe",
			wantCount:    1,
			wantModified: true,
		},
		{
			name:    "global_replacement",
			content: "World World World",
			rules: []Rule{
				{Search: "World", Replace: "Universe"},
			},
			want:         "Universe Universe Universe",
			wantCount:    3,
			wantModified: true,
		},
		{
			name:    "multiple_rules",
			content: "Hello World",
			rules: []Rule{
				{Search: "Hello", Replace: "Hi"},
				{Search: "World", Replace: "Universe"},
			},
			want:         "Hi Universe",
			wantCount:    2,
			wantModified: true,
		},
		{
			name:    "sequential_composition",
			content: "aaa",
			rules: []Rule{
				{Search: "a", Replace: "b"},
				{Search: "b", Replace: "c"},
			},
			// second rule must see the output of the first, so every
			// original "a" ends up as "c"
			want:         "ccc",
			wantCount:    6,
			wantModified: true,
		},
		{
			name:    "no_match_is_noop",
			content: "Hello World",
			rules: []Rule{
				{Search: "Goodbye", Replace: "Hi"},
			},
			want:         "Hello World",
			wantCount:    0,
			wantModified: false,
		},
		{
			name:    "empty_content",
			content: "",
			rules: []Rule{
				{Search: "World", Replace: "Universe"},
			},
			want:         "",
			wantCount:    0,
			wantModified: false,
		},
		{
			name:         "empty_rules",
			content:      "Hello World",
			rules:        []Rule{},
			want:         "Hello World",
			wantCount:    0,
			wantModified: false,
		},
		{
			name:    "multiline_insertion",
			content: "    const initPeer = async () => {\n      const peerOptions: ConstructorParameters<typeof Peer>[1] = {}\n",
			rules: []Rule{
				{
					Search:  "    const initPeer = async () => {\n      const peerOptions: ConstructorParameters<typeof Peer>[1] = {}",
					Replace: "    const initPeer = async () => {\n      const { default: Peer } = await import('peerjs')\n      const peerOptions: ConstructorParameters<typeof Peer>[1] = {}",
				},
			},
			want:         "    const initPeer = async () => {\n      const { default: Peer } = await import('peerjs')\n      const peerOptions: ConstructorParameters<typeof Peer>[1] = {}\n",
			wantCount:    1,
			wantModified: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			replacer := NewReplacer()
			result, err := replacer.Apply(context.Background(), strings.NewReader(tt.content), tt.rules)
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.Equal(t, tt.content, string(result.OriginalContent), "original content should be preserved")
			assert.Equal(t, tt.want, string(result.ModifiedContent), "modified content should match")
			assert.Equal(t, tt.wantCount, result.TotalReplacements, "replacement count should match")
			assert.Equal(t, tt.wantModified, result.Modified, "modified flag should match")
			assert.Len(t, result.Matches, len(tt.rules), "should report one match entry per rule")
		})
	}
}

func TestReplacer_Apply_PerRuleCounts(t *testing.T) {
	replacer := NewReplacer()
	result, err := replacer.Apply(context.Background(), strings.NewReader("foo bar foo"), []Rule{
		{Search: "foo", Replace: "baz"},
		{Search: "missing", Replace: "x"},
	})
	require.NoError(t, err)

	require.Len(t, result.Matches, 2)
	assert.Equal(t, RuleMatch{Index: 0, Count: 2}, result.Matches[0])
	assert.Equal(t, RuleMatch{Index: 1, Count: 0}, result.Matches[1])
	assert.Equal(t, []int{1}, result.SkippedRules(), "zero-count rule should be reported as skipped")
}

func TestReplacer_ValidateRules(t *testing.T) {
	tests := []struct {
		name      string
		rules     []Rule
		wantError string
	}{
		{
			name: "valid_rules",
			rules: []Rule{
				{Search: "foo", Replace: "bar"},
				{Search: "baz", Replace: ""},
			},
		},
		{
			name: "missing_search",
			rules: []Rule{
				{Search: "foo", Replace: "bar"},
				{Replace: "bar"},
			},
			wantError: "rule 1: search is required",
		},
		{
			name:  "empty_rules",
			rules: []Rule{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			replacer := NewReplacer()
			err := replacer.ValidateRules(tt.rules)

			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}

			require.NoError(t, err)
		})
	}
}
