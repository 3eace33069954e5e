package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/patchrc/patchrc/cmd/patchrc/opts"
	"github.com/patchrc/patchrc/pkg/patch"
	"github.com/patchrc/patchrc/pkg/status"
)

// NewStatusCmd creates the status command
func NewStatusCmd(build opts.Builder) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check whether any patches still need to be applied",
		Long: `Status computes what apply would change without writing anything.
It will:
1. Load the config and lock file
2. Run every rule against the current target content
3. Report per-file whether a patch is pending
4. Exit non-zero when work is pending`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ro, err := build(ctx)
			if err != nil {
				return err
			}

			// Per-file reporting happens below through the formatter, so
			// Verify runs without its own user logger.
			pending, err := patch.Verify(ctx, patch.Options{
				Config:    ro.Config,
				BaseDir:   ro.BaseDir,
				StatusMgr: ro.StatusMgr,
				State:     ro.StateManager,
			})
			if err != nil {
				return errors.Errorf("checking status: %w", err)
			}

			formatter := status.NewDefaultFileFormatter()
			for _, info := range ro.StatusMgr.ListFiles(ctx) {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatFileOperation(info))
			}

			if pending {
				return errors.New("patches pending, run 'patchrc apply'")
			}

			ro.UserLogger.LogSummary("everything up to date")
			return nil
		},
	}

	return cmd
}
