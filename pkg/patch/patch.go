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

// Package patch provides the core operations for applying literal
// replacement rules to target files.
package patch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"

	"github.com/patchrc/patchrc/pkg/config"
	"github.com/patchrc/patchrc/pkg/state"
	"github.com/patchrc/patchrc/pkg/status"
	"github.com/patchrc/patchrc/pkg/text"
	"github.com/patchrc/patchrc/pkg/userlog"
)

// 🎯 Operation is a unit of work executed by the Runner
type Operation interface {
	// Name identifies the operation in logs
	Name() string
	// Execute runs the operation
	Execute(ctx context.Context) error
}

// 🔧 Options contains everything an operation needs
type Options struct {
	// Config is the loaded patch configuration
	Config *config.Config

	// BaseDir is the directory of the config file; relative targets are
	// resolved against it
	BaseDir string

	// StatusMgr tracks per-file outcomes and performs file writes
	StatusMgr *status.Manager

	// State manages the lock file; may be nil to skip lock tracking
	State *state.Manager

	// UserLog prints per-file feedback; may be nil (tests)
	UserLog *userlog.Logger

	// DryRun previews changes without writing anything
	DryRun bool

	// Strict forces the error policy regardless of config
	Strict bool

	// NoBackup suppresses backups even when the config asks for them
	NoBackup bool
}

// 🔍 validate checks that required options are set
func (o *Options) validate() error {
	if o.Config == nil {
		return errors.Errorf("config is required")
	}
	if o.StatusMgr == nil {
		return errors.Errorf("status manager is required")
	}
	return nil
}

// 🏃 Runner executes operations, optionally off the calling goroutine
type Runner struct {
	async bool
}

// 🏗️ NewRunner creates a new runner
func NewRunner(async bool) *Runner {
	return &Runner{async: async}
}

// Run executes the operations in order, or concurrently when async.
func (r *Runner) Run(ctx context.Context, ops ...Operation) error {
	if !r.async {
		for _, op := range ops {
			if err := op.Execute(ctx); err != nil {
				return errors.Errorf("executing %s: %w", op.Name(), err)
			}
		}
		return nil
	}

	var wg sync.WaitGroup
	errCh := make(chan error, len(ops))

	for _, op := range ops {
		wg.Add(1)
		go func(op Operation) {
			defer wg.Done()
			if err := op.Execute(ctx); err != nil {
				errCh <- errors.Errorf("executing %s: %w", op.Name(), err)
			}
		}(op)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return errors.Errorf("operation cancelled: %w", ctx.Err())
	case err := <-errCh:
		return err
	case <-done:
		return nil
	}
}

// 🔎 ResolveTargets expands a patch target into concrete file paths.
// A target containing glob metacharacters is expanded with doublestar;
// anything else is treated as a literal path. Relative targets resolve
// against baseDir.
func ResolveTargets(baseDir, target string) ([]string, error) {
	pattern := target
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(baseDir, pattern)
	}

	// A path that exists verbatim is always a literal target, even when it
	// contains characters that read as glob syntax (foo[1].txt).
	if _, err := os.Stat(pattern); err == nil {
		return []string{pattern}, nil
	}

	if !strings.ContainsAny(target, "*?[{") {
		return []string{pattern}, nil
	}

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, errors.Errorf("expanding glob %s: %w", target, err)
	}
	if len(matches) == 0 {
		return nil, errors.Errorf("no files match pattern: %s", target)
	}

	sort.Strings(matches)
	return matches, nil
}

// toTextRules converts config rules to engine rules.
func toTextRules(rules []config.Rule) []text.Rule {
	out := make([]text.Rule, 0, len(rules))
	for _, r := range rules {
		out = append(out, text.Rule{Search: r.Search, Replace: r.Replace})
	}
	return out
}
