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
	"fmt"

	"github.com/fatih/color"
)

// FileFormatter defines how per-file outcomes are rendered for the terminal
type FileFormatter interface {
	// FormatFileOperation formats a single file outcome line
	FormatFileOperation(info FileInfo) string

	// FormatSummary formats the end-of-run summary line
	FormatSummary(patched, unchanged, failed int, matched, total int) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFileFormatter provides the standard colored terminal output
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatFileOperation formats a single file outcome line
func (f *DefaultFileFormatter) FormatFileOperation(info FileInfo) string {
	var symbol string
	switch info.Status {
	case StatusPatched:
		symbol = color.New(color.FgGreen).Sprint("✓")
	case StatusUnchanged:
		symbol = color.New(color.FgCyan).Sprint("•")
	case StatusSkipped:
		symbol = color.New(color.FgYellow).Sprint("-")
	case StatusMissing, StatusFailed:
		symbol = color.New(color.FgRed).Sprint("✗")
	default:
		symbol = "?"
	}

	line := fmt.Sprintf("%s %-40s %-10s", symbol, info.Path, info.Status)
	if info.RulesTotal > 0 {
		line += fmt.Sprintf(" %d/%d rule(s), %d replacement(s)", info.RulesMatched, info.RulesTotal, info.Replacements)
	}
	if info.Error != nil {
		line += " " + color.New(color.FgRed).Sprintf("(%v)", info.Error)
	}
	return line
}

// FormatSummary formats the end-of-run summary line. It is printed whenever
// the run reaches the write step, even when nothing matched.
func (f *DefaultFileFormatter) FormatSummary(patched, unchanged, failed int, matched, total int) string {
	if failed > 0 {
		return color.New(color.FgRed).Sprintf("✗ %d file(s) failed, %d patched, %d unchanged (%d/%d rules matched)",
			failed, patched, unchanged, matched, total)
	}
	return color.New(color.FgGreen).Sprintf("✓ %d file(s) patched, %d unchanged (%d/%d rules matched)",
		patched, unchanged, matched, total)
}

// FormatError formats an error message
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return color.New(color.FgRed).Sprintf("✗ Error: %v", err)
}
