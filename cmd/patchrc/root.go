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

package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/patchrc/patchrc/cmd/patchrc/commands"
	"github.com/patchrc/patchrc/cmd/patchrc/opts"
	"github.com/patchrc/patchrc/pkg/config"
	"github.com/patchrc/patchrc/pkg/state"
	"github.com/patchrc/patchrc/pkg/status"
	"github.com/patchrc/patchrc/pkg/userlog"
)

var (
	// Flags
	configFile string
	debugMode  bool
)

// NewRootCommand builds the patchrc command tree
func NewRootCommand() *cobra.Command {
	applyCmd := commands.NewApplyCmd(newRootOpts)

	cmd := &cobra.Command{
		Use:   "patchrc",
		Short: "Apply literal find/replace patches to files",
		Long: `patchrc reads a patch definition file (.patchrc.yaml or .patchrc.hcl)
and applies its literal find/replace rules to the target files, in order,
writing each result back atomically.

Running patchrc with no subcommand is the same as running patchrc apply.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
		// Bare invocation applies the config.
		RunE: applyCmd.RunE,
	}

	addRootFlags(cmd)
	cmd.Flags().AddFlagSet(applyCmd.Flags())
	cmd.AddCommand(
		applyCmd,
		commands.NewStatusCmd(newRootOpts),
		newVersionCmd(),
	)

	return cmd
}

// newRootOpts creates a new RootOpts with initialized dependencies
func newRootOpts(ctx context.Context) (*opts.RootOpts, error) {
	userLogger := userlog.New(ctx)

	cfg, err := config.Load(ctx, configFile)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}

	baseDir, err := filepath.Abs(filepath.Dir(configFile))
	if err != nil {
		return nil, errors.Errorf("resolving config directory: %w", err)
	}

	stateManager := state.New(baseDir)
	if err := stateManager.Load(ctx); err != nil {
		return nil, errors.Errorf("loading lock file: %w", err)
	}

	return &opts.RootOpts{
		Config:       cfg,
		BaseDir:      baseDir,
		StatusMgr:    status.New(baseDir),
		StateManager: stateManager,
		UserLogger:   userLogger,
	}, nil
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", ".patchrc.yaml", "config file path")
	cmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags
func setupLogging() {
	if debugMode {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log
}
