package text

import (
	"context"
	"io"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Rule is a single literal replacement: every occurrence of Search in the
// content is replaced with Replace. No pattern syntax, no anchors, plain
// substring equality only.
type Rule struct {
	// Search is the literal text to look for
	Search string

	// Replace is the literal text to substitute
	Replace string
}

// RuleMatch reports how often one rule matched during an Apply pass.
type RuleMatch struct {
	// Index is the position of the rule in the input slice
	Index int

	// Count is the number of occurrences that were replaced
	Count int
}

// Result contains the outcome of applying a rule sequence to one content blob.
type Result struct {
	// OriginalContent is the content before any replacement
	OriginalContent []byte

	// ModifiedContent is the content after all rules ran
	ModifiedContent []byte

	// Modified indicates whether any rule changed the content
	Modified bool

	// TotalReplacements is the sum of all per-rule counts
	TotalReplacements int

	// Matches holds one entry per rule, in rule order, including zero-count
	// rules so callers can tell "all applied" from "none applied"
	Matches []RuleMatch
}

// SkippedRules returns the indices of rules that matched nothing.
func (r *Result) SkippedRules() []int {
	var skipped []int
	for _, m := range r.Matches {
		if m.Count == 0 {
			skipped = append(skipped, m.Index)
		}
	}
	return skipped
}

// Replacer applies ordered literal replacement rules to text content.
// Rules are applied sequentially: each rule sees the output of the previous
// one, not the pristine original.
type Replacer struct{}

// NewReplacer creates a new Replacer
func NewReplacer() *Replacer {
	return &Replacer{}
}

// Apply runs all rules, in order, against the content. A rule whose search
// text does not occur is recorded as a zero-count match, never an error.
func (r *Replacer) Apply(ctx context.Context, content io.Reader, rules []Rule) (*Result, error) {
	original, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}

	result := &Result{
		OriginalContent: original,
		Matches:         make([]RuleMatch, 0, len(rules)),
	}

	current := string(original)
	for i, rule := range rules {
		if rule.Search == "" {
			result.Matches = append(result.Matches, RuleMatch{Index: i})
			continue
		}

		count := strings.Count(current, rule.Search)
		if count > 0 {
			current = strings.ReplaceAll(current, rule.Search, rule.Replace)
			result.Modified = true
			result.TotalReplacements += count
		}
		result.Matches = append(result.Matches, RuleMatch{Index: i, Count: count})
	}

	result.ModifiedContent = []byte(current)
	return result, nil
}

// ValidateRules checks that every rule has a non-empty search text.
func (r *Replacer) ValidateRules(rules []Rule) error {
	for i, rule := range rules {
		if rule.Search == "" {
			return errors.Errorf("rule %d: search is required", i)
		}
	}
	return nil
}
