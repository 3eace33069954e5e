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

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/patchrc/patchrc/pkg/status"
	"github.com/patchrc/patchrc/pkg/text"
	"github.com/patchrc/patchrc/pkg/userlog"
)

// 🔍 Verify computes what an apply run would change without writing
// anything. It returns true when at least one target would be modified or
// is missing, which is what the status command's exit code hinges on.
func Verify(ctx context.Context, opts Options) (bool, error) {
	logger := zerolog.Ctx(ctx)

	if err := opts.validate(); err != nil {
		return false, err
	}

	replacer := text.NewReplacer()
	pending := false

	for _, p := range opts.Config.Patches {
		rules := toTextRules(p.Rules)
		if err := replacer.ValidateRules(rules); err != nil {
			return false, errors.Errorf("patch %s: %w", p.Target, err)
		}

		targets, err := ResolveTargets(opts.BaseDir, p.Target)
		if err != nil {
			return false, err
		}

		for _, path := range targets {
			content, err := opts.StatusMgr.ReadFile(ctx, path)
			if err != nil {
				pending = true
				opts.StatusMgr.TrackFile(ctx, path, status.FileInfo{Status: status.StatusMissing, Error: err})
				if opts.UserLog != nil {
					opts.UserLog.LogFileChange(userlog.FileChange{
						Type:  userlog.FileError,
						Path:  path,
						Error: err,
					})
				}
				continue
			}

			result, err := replacer.Apply(ctx, bytes.NewReader(content), rules)
			if err != nil {
				return false, errors.Errorf("applying rules to %s: %w", path, err)
			}

			matched := len(rules) - len(result.SkippedRules())
			info := status.FileInfo{
				Size:         int64(len(content)),
				Checksum:     status.Checksum(content),
				RulesTotal:   len(rules),
				RulesMatched: matched,
				Replacements: result.TotalReplacements,
			}

			if result.Modified {
				pending = true
				info.Status = status.StatusSkipped
				opts.StatusMgr.TrackFile(ctx, path, info)
				if opts.UserLog != nil {
					opts.UserLog.LogFileChange(userlog.FileChange{
						Type:        userlog.FileSkipped,
						Path:        path,
						Description: fmt.Sprintf("pending, %d replacement(s)", result.TotalReplacements),
					})
				}
				continue
			}

			info.Status = status.StatusUnchanged
			opts.StatusMgr.TrackFile(ctx, path, info)
			if opts.UserLog != nil {
				opts.UserLog.LogFileChange(userlog.FileChange{
					Type:        userlog.FileUnchanged,
					Path:        path,
					Description: "up to date",
				})
			}
		}
	}

	// The lock file adds a second signal: it catches targets that were
	// modified by someone else after the last apply.
	if opts.State != nil {
		consistent, err := opts.State.IsConsistent(ctx)
		if err != nil {
			return false, errors.Errorf("checking lock consistency: %w", err)
		}
		if !consistent {
			logger.Warn().Msg("tracked files changed since the last apply")
		}
	}

	logger.Info().Bool("pending", pending).Msg("verify completed")
	return pending, nil
}

// 📦 NewVerifyOperation wraps Verify as an Operation. The pending result is
// available through Pending after Execute returns.
func NewVerifyOperation(opts Options) *VerifyOperation {
	return &VerifyOperation{opts: opts}
}

type VerifyOperation struct {
	opts    Options
	pending bool
}

func (op *VerifyOperation) Name() string { return "verify" }

// Pending reports whether the last Execute found work to do.
func (op *VerifyOperation) Pending() bool { return op.pending }

func (op *VerifyOperation) Execute(ctx context.Context) error {
	pending, err := Verify(ctx, op.opts)
	if err != nil {
		return err
	}
	op.pending = pending
	return nil
}
