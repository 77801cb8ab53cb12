// bundlecmd.go implements the "reelcheck-build bundle" command: the
// packaging stage alone, against an already-provisioned workspace.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/wanlu-media/reelcheck/internal/pipeline"
)

// NewBundleCommand creates the "bundle" cobra command.
func NewBundleCommand() *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Package the application bundle",
		Long: `Run the packaging stage only. The workspace must already be
provisioned (see "reelcheck-build provision"): the virtualenv with the
packager installed is recovered from disk.`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			workspace, cfg, err := loadManifest(flags.workspace, flags.configPath)
			if err != nil {
				return err
			}

			bc := newBuildContext(workspace, cfg)

			runner := pipeline.NewRunner(VerboseLog)
			results, err := runner.Run(cmd.Context(), []pipeline.Stage{
				bc.workspaceStage(),
				bc.bundleStage(),
			})
			printStageResults(results, bc)
			return err
		},
	}

	cmd.Flags().StringVar(&flags.workspace, "workspace", ".", "Build workspace root")
	cmd.Flags().StringVar(&flags.configPath, "config", "", "Build manifest path (default: search the workspace)")

	return cmd
}
