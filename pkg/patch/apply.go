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

package patch

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/patchrc/patchrc/pkg/diff"
	"github.com/patchrc/patchrc/pkg/state"
	"github.com/patchrc/patchrc/pkg/status"
	"github.com/patchrc/patchrc/pkg/text"
	"github.com/patchrc/patchrc/pkg/userlog"
)

// 📊 Summary describes what an apply run did (or, in dry-run, would do)
type Summary struct {
	FilesPatched   int
	FilesUnchanged int
	RulesTotal     int
	RulesMatched   int
	Replacements   int
	DryRun         bool
}

// String renders the one-line completion report. It is emitted whenever the
// run reaches the write step, no matter how many rules matched.
func (s *Summary) String() string {
	verb := "patched"
	if s.DryRun {
		verb = "would patch"
	}
	return fmt.Sprintf("%s %d file(s), %d unchanged (%d/%d rules matched, %d replacement(s))",
		verb, s.FilesPatched, s.FilesUnchanged, s.RulesMatched, s.RulesTotal, s.Replacements)
}

// 📦 filePlan is the computed outcome for one target, decided before any
// write happens
type filePlan struct {
	path      string
	result    *text.Result
	ruleCount int
	matched   int
}

// 📦 NewApplyOperation creates the apply operation
func NewApplyOperation(opts Options) Operation {
	return &applyOperation{opts: opts}
}

type applyOperation struct {
	opts Options
}

func (op *applyOperation) Name() string { return "apply" }

func (op *applyOperation) Execute(ctx context.Context) error {
	_, err := Apply(ctx, op.opts)
	return err
}

// 🏃 Apply runs the full patch pipeline: plan every target, enforce the
// no-match policy, then write. The plan phase completes before the first
// write, so a policy failure never leaves a half-patched tree.
func Apply(ctx context.Context, opts Options) (*Summary, error) {
	logger := zerolog.Ctx(ctx)

	if err := opts.validate(); err != nil {
		return nil, err
	}

	strict := opts.Strict || opts.Config.Strict()
	replacer := text.NewReplacer()
	summary := &Summary{DryRun: opts.DryRun}

	// Plan phase.
	var plans []filePlan
	for _, p := range opts.Config.Patches {
		rules := toTextRules(p.Rules)
		if err := replacer.ValidateRules(rules); err != nil {
			return nil, errors.Errorf("patch %s: %w", p.Target, err)
		}

		targets, err := ResolveTargets(opts.BaseDir, p.Target)
		if err != nil {
			return nil, err
		}

		for _, path := range targets {
			content, err := opts.StatusMgr.ReadFile(ctx, path)
			if err != nil {
				opts.StatusMgr.TrackFile(ctx, path, status.FileInfo{Status: status.StatusMissing, Error: err})
				return nil, errors.Errorf("reading target %s: %w", path, err)
			}

			result, err := replacer.Apply(ctx, bytes.NewReader(content), rules)
			if err != nil {
				return nil, errors.Errorf("applying rules to %s: %w", path, err)
			}

			matched := len(rules) - len(result.SkippedRules())
			summary.RulesTotal += len(rules)
			summary.RulesMatched += matched
			summary.Replacements += result.TotalReplacements

			if strict && matched < len(rules) {
				opts.StatusMgr.TrackFile(ctx, path, status.FileInfo{
					Status:       status.StatusFailed,
					RulesTotal:   len(rules),
					RulesMatched: matched,
				})
				return nil, errors.Errorf("target %s: %d of %d rule(s) matched nothing (on_no_match=error)",
					path, len(rules)-matched, len(rules))
			}

			if result.Modified {
				summary.FilesPatched++
			} else {
				summary.FilesUnchanged++
			}

			plans = append(plans, filePlan{
				path:      path,
				result:    result,
				ruleCount: len(rules),
				matched:   matched,
			})
		}
	}

	// Write phase. Targets are independent files, so the async mode can
	// process them concurrently.
	if opts.Config.Async && !opts.DryRun {
		g, gctx := errgroup.WithContext(ctx)
		for _, plan := range plans {
			plan := plan
			g.Go(func() error {
				return writePlan(gctx, opts, plan)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for _, plan := range plans {
			if err := writePlan(ctx, opts, plan); err != nil {
				return nil, err
			}
		}
	}

	// Persist the lock file.
	if !opts.DryRun && opts.State != nil {
		opts.State.SetConfigHash(opts.Config.Hash())
		if err := opts.State.Save(ctx); err != nil {
			return nil, errors.Errorf("saving lock file: %w", err)
		}
	}

	// The completion report is unconditional once the write step is done:
	// zero matches and full matches report the same way, with the counts
	// making the difference visible.
	logger.Info().
		Int("files_patched", summary.FilesPatched).
		Int("files_unchanged", summary.FilesUnchanged).
		Int("rules_matched", summary.RulesMatched).
		Int("rules_total", summary.RulesTotal).
		Msg("apply completed")
	if opts.UserLog != nil {
		opts.UserLog.LogSummary(summary.String())
	}

	return summary, nil
}

// 💾 writePlan carries out one planned file outcome
func writePlan(ctx context.Context, opts Options, plan filePlan) error {
	logger := zerolog.Ctx(ctx)

	info := status.FileInfo{
		Size:         int64(len(plan.result.ModifiedContent)),
		Checksum:     status.Checksum(plan.result.ModifiedContent),
		RulesTotal:   plan.ruleCount,
		RulesMatched: plan.matched,
		Replacements: plan.result.TotalReplacements,
	}

	if !plan.result.Modified {
		info.Status = status.StatusUnchanged
		opts.StatusMgr.TrackFile(ctx, plan.path, info)
		if opts.State != nil && !opts.DryRun {
			opts.State.PutTarget(ctx, state.TargetState{
				Path:        plan.path,
				ContentHash: info.Checksum,
				RuleCount:   plan.ruleCount,
				MatchCount:  plan.matched,
				LastPatched: time.Now().UTC(),
			})
		}
		if opts.UserLog != nil {
			opts.UserLog.LogFileChange(userlog.FileChange{
				Type:        userlog.FileUnchanged,
				Path:        plan.path,
				Description: fmt.Sprintf("%d/%d rules matched", plan.matched, plan.ruleCount),
			})
		}
		return nil
	}

	if opts.DryRun {
		inserted, deleted := diff.Stat(string(plan.result.OriginalContent), string(plan.result.ModifiedContent))
		logger.Debug().
			Str("path", plan.path).
			Str("preview", diff.Preview(string(plan.result.OriginalContent), string(plan.result.ModifiedContent))).
			Msg("dry run preview")

		info.Status = status.StatusSkipped
		opts.StatusMgr.TrackFile(ctx, plan.path, info)
		if opts.UserLog != nil {
			opts.UserLog.LogFileChange(userlog.FileChange{
				Type:        userlog.FileSkipped,
				Path:        plan.path,
				Description: fmt.Sprintf("dry run, +%d/-%d chars", inserted, deleted),
			})
		}
		return nil
	}

	if opts.Config.Backup && !opts.NoBackup {
		if err := opts.StatusMgr.BackupFile(ctx, plan.path); err != nil {
			return errors.Errorf("backing up %s: %w", plan.path, err)
		}
	}

	if err := opts.StatusMgr.WriteFileAtomic(ctx, plan.path, plan.result.ModifiedContent); err != nil {
		opts.StatusMgr.TrackFile(ctx, plan.path, status.FileInfo{Status: status.StatusFailed, Error: err})
		return errors.Errorf("writing %s: %w", plan.path, err)
	}

	info.Status = status.StatusPatched
	opts.StatusMgr.TrackFile(ctx, plan.path, info)

	if opts.State != nil {
		opts.State.PutTarget(ctx, state.TargetState{
			Path:        plan.path,
			ContentHash: info.Checksum,
			RuleCount:   plan.ruleCount,
			MatchCount:  plan.matched,
			LastPatched: time.Now().UTC(),
		})
	}

	if opts.UserLog != nil {
		opts.UserLog.LogFileChange(userlog.FileChange{
			Type:        userlog.FilePatched,
			Path:        plan.path,
			Description: fmt.Sprintf("%d replacement(s)", plan.result.TotalReplacements),
		})
	}

	return nil
}
