package commands

import (
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/patchrc/patchrc/cmd/patchrc/opts"
	"github.com/patchrc/patchrc/pkg/patch"
)

// NewApplyCmd creates the apply command
func NewApplyCmd(build opts.Builder) *cobra.Command {
	var (
		dryRun   bool
		strict   bool
		async    bool
		noBackup bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the configured patches to their target files",
		Long: `Apply reads every patch in the config, runs its rules against the
target files in order, and writes the results back atomically. It will:
1. Resolve each target (path or glob)
2. Compute all replacements before writing anything
3. Enforce the on_no_match policy
4. Write the patched files and update the lock file`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ro, err := build(ctx)
			if err != nil {
				return err
			}

			if async {
				ro.Config.Async = true
			}

			op := patch.NewApplyOperation(patch.Options{
				Config:    ro.Config,
				BaseDir:   ro.BaseDir,
				StatusMgr: ro.StatusMgr,
				State:     ro.StateManager,
				UserLog:   ro.UserLogger,
				DryRun:    dryRun,
				Strict:    strict,
				NoBackup:  noBackup,
			})

			runner := patch.NewRunner(ro.Config.Async)
			if err := runner.Run(ctx, op); err != nil {
				return errors.Errorf("applying patches: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview changes without writing")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail if any rule matches nothing")
	cmd.Flags().BoolVar(&async, "async", false, "process targets concurrently")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "skip backups even if the config enables them")

	return cmd
}
