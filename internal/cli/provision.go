// provision.go implements the "reelcheck-build provision" command,
// which runs the preparation stages without packaging: workspace
// validation, runtime, dependencies, and tool install.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/wanlu-media/reelcheck/internal/pipeline"
)

// NewProvisionCommand creates the "provision" cobra command.
func NewProvisionCommand() *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Provision the runtime, dependencies, and MediaInfo CLI",
		Long: `Run the preparation stages only: validate the workspace, create the
pinned-version virtualenv, install the package list, and install the
MediaInfo CLI from its disk image. Useful for warming a build host
before iterating on the packaging stages.`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			workspace, cfg, err := loadManifest(flags.workspace, flags.configPath)
			if err != nil {
				return err
			}

			bc := newBuildContext(workspace, cfg)
			bc.skipTool = flags.skipTool

			runner := pipeline.NewRunner(VerboseLog)
			results, err := runner.Run(cmd.Context(), bc.provisionStages())
			printStageResults(results, bc)
			return err
		},
	}

	cmd.Flags().StringVar(&flags.workspace, "workspace", ".", "Build workspace root")
	cmd.Flags().StringVar(&flags.configPath, "config", "", "Build manifest path (default: search the workspace)")
	cmd.Flags().BoolVar(&flags.skipTool, "skip-tool", false, "Skip the MediaInfo disk-image install")

	return cmd
}
