// build.go implements the "reelcheck-build build" command: the full
// packaging pipeline from workspace validation through artifact
// publication.
package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wanlu-media/reelcheck/internal/pipeline"
)

// buildFlags holds the flag values for the build command.
type buildFlags struct {
	workspace  string // --workspace: build workspace root
	configPath string // --config: explicit manifest path
	skipTool   bool   // --skip-tool: skip the disk-image stage
}

// NewBuildCommand creates the "build" cobra command.
func NewBuildCommand() *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run the full packaging pipeline",
		Long: `Run every pipeline stage in order: validate the workspace, provision
the pinned Python runtime, install dependencies, install the MediaInfo
CLI from its disk image, package the application bundle, and publish it
into the artifact store.

Any stage failure aborts the build; the exit code identifies the failed
stage class.

Examples:
  reelcheck-build build
  reelcheck-build build --workspace ~/src/reelcheck-app
  reelcheck-build build --skip-tool`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.workspace, "workspace", ".", "Build workspace root")
	cmd.Flags().StringVar(&flags.configPath, "config", "", "Build manifest path (default: search the workspace)")
	cmd.Flags().BoolVar(&flags.skipTool, "skip-tool", false, "Skip the MediaInfo disk-image install")

	return cmd
}

func runBuild(cmd *cobra.Command, flags *buildFlags) error {
	workspace, cfg, err := loadManifest(flags.workspace, flags.configPath)
	if err != nil {
		return err
	}

	bc := newBuildContext(workspace, cfg)
	bc.skipTool = flags.skipTool

	runner := pipeline.NewRunner(VerboseLog)
	results, err := runner.Run(cmd.Context(), bc.allStages())
	printStageResults(results, bc)
	return err
}

// stageResultJSON is the JSON shape of one stage result.
type stageResultJSON struct {
	Stage    string `json:"stage"`
	OK       bool   `json:"ok"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

// printStageResults outputs the pipeline summary in text or JSON format.
// It is called on both success and failure so a failed run still shows
// which stages completed.
func printStageResults(results []pipeline.StageResult, bc *buildContext) {
	if IsJSONOutput() {
		out := struct {
			Artifact string            `json:"artifact,omitempty"`
			Bundle   string            `json:"bundle,omitempty"`
			RunID    string            `json:"runId,omitempty"`
			Stages   []stageResultJSON `json:"stages"`
		}{}
		if bc.published != nil {
			out.Artifact = bc.published.Name
			out.RunID = bc.published.RunID
		}
		out.Bundle = bc.appPath
		for _, r := range results {
			sr := stageResultJSON{
				Stage:    r.ID.String(),
				OK:       r.OK(),
				Duration: r.Duration.Round(time.Millisecond).String(),
			}
			if r.Err != nil {
				sr.Error = r.Err.Error()
			}
			out.Stages = append(out.Stages, sr)
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}

	for _, r := range results {
		status := "ok"
		if !r.OK() {
			status = "FAILED"
		}
		fmt.Printf("  %-12s %-7s %s\n", r.ID, status, r.Duration.Round(time.Millisecond))
	}
	if bc.appPath != "" {
		fmt.Printf("Bundle:   %s\n", bc.appPath)
	}
	if bc.published != nil {
		fmt.Printf("Artifact: %s (%d files, run %s)\n",
			bc.published.Name, len(bc.published.Files), bc.published.RunID)
	}
}
