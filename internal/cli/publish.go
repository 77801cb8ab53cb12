// publish.go implements the "reelcheck-build publish" command: copy a
// built bundle into the artifact store under the fixed artifact name.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/wanlu-media/reelcheck/internal/pipeline"
)

// publishFlags holds the flag values for the publish command.
type publishFlags struct {
	buildFlags
	bundlePath string // --bundle: explicit bundle path
}

// NewPublishCommand creates the "publish" cobra command.
func NewPublishCommand() *cobra.Command {
	flags := &publishFlags{}

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish the bundle into the artifact store",
		Long: `Copy the application bundle into the artifact store under the
manifest's artifact name, replacing any previous publication, and write
the artifact manifest with per-file checksums.

By default the bundle is expected at <outputDir>/<AppName>.app; use
--bundle to publish from a different path.`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			workspace, cfg, err := loadManifest(flags.workspace, flags.configPath)
			if err != nil {
				return err
			}

			bc := newBuildContext(workspace, cfg)
			bc.bundleOverride = flags.bundlePath

			runner := pipeline.NewRunner(VerboseLog)
			results, err := runner.Run(cmd.Context(), []pipeline.Stage{bc.publishStage()})
			printStageResults(results, bc)
			return err
		},
	}

	cmd.Flags().StringVar(&flags.workspace, "workspace", ".", "Build workspace root")
	cmd.Flags().StringVar(&flags.configPath, "config", "", "Build manifest path (default: search the workspace)")
	cmd.Flags().StringVar(&flags.bundlePath, "bundle", "", "Bundle path (default: <outputDir>/<AppName>.app)")

	return cmd
}
