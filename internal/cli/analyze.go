// analyze.go implements the "reelcheck-build analyze" command: a
// headless run of the media analyzer over files or directories, for CI
// checks and smoke-testing a packaged mediainfo binary.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wanlu-media/reelcheck/internal/media"
	"github.com/wanlu-media/reelcheck/internal/mediainfo"
	"github.com/wanlu-media/reelcheck/internal/model"
	"github.com/wanlu-media/reelcheck/internal/scan"
)

// analyzeFlags holds the flag values for the analyze command.
type analyzeFlags struct {
	binary  string // --mediainfo: mediainfo binary path
	workers int    // --workers: parallel inspections
}

// NewAnalyzeCommand creates the "analyze" cobra command.
func NewAnalyzeCommand() *cobra.Command {
	flags := &analyzeFlags{}

	cmd := &cobra.Command{
		Use:   "analyze <path>...",
		Short: "Inspect media files against the delivery rules",
		Long: `Inspect the given media files (directories are scanned recursively)
with the MediaInfo CLI and report delivery-rule violations. Problem
files are listed first. The command exits 0 whether or not issues were
found; a non-zero exit means the inspection itself failed.

Examples:
  reelcheck-build analyze footage/
  reelcheck-build analyze --json clip.mp4 poster.jpg
  reelcheck-build analyze --mediainfo ./mediainfo footage/`,

		Args: cobra.MinimumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.binary, "mediainfo", "", "MediaInfo binary path (default: PATH lookup)")
	cmd.Flags().IntVar(&flags.workers, "workers", 1, "Number of parallel inspections")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, flags *analyzeFlags) error {
	ctx := cmd.Context()

	// Expand directories into their media files; plain file arguments
	// are taken as-is even with an unrecognized extension, matching the
	// desktop app's file picker.
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return model.WrapBuildError(model.ExitAnalyzeError, fmt.Sprintf("cannot access %s", arg), err)
		}
		if info.IsDir() {
			files, err := scan.CollectFiles(ctx, arg)
			if err != nil {
				return model.WrapBuildError(model.ExitAnalyzeError, fmt.Sprintf("failed to scan %s", arg), err)
			}
			paths = append(paths, files...)
			continue
		}
		paths = append(paths, arg)
	}

	if len(paths) == 0 {
		return model.NewBuildError(model.ExitAnalyzeError, "no media files found")
	}
	VerboseLog("analyzing %d file(s)", len(paths))

	var opts []mediainfo.Option
	if flags.binary != "" {
		opts = append(opts, mediainfo.WithBinary(flags.binary))
	}
	scanner := scan.NewScanner(mediainfo.New(opts...), flags.workers)

	byIndex := make([]*media.Details, len(paths))
	for result := range scanner.Analyze(ctx, paths) {
		byIndex[result.Index] = result.Details
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Problem files first, submission order within each group —
	// the same ordering the desktop app's table defaults to.
	details := make([]*media.Details, 0, len(byIndex))
	for _, d := range byIndex {
		if d != nil {
			details = append(details, d)
		}
	}
	sort.SliceStable(details, func(i, j int) bool {
		return details[i].HasIssues() && !details[j].HasIssues()
	})

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(details, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	printAnalyzeTable(details)
	return nil
}

// printAnalyzeTable renders the report as an aligned text table.
func printAnalyzeTable(details []*media.Details) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tSIZE\tDURATION\tWIDTH\tHEIGHT\tFPS\tV-RATE\tA-RATE\tISSUES")

	problems := 0
	for _, d := range details {
		if d.HasIssues() {
			problems++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			d.FileName,
			media.FormatSize(d.FileSize),
			media.FormatDuration(d.DurationMS),
			media.FormatDimension(d.Width),
			media.FormatDimension(d.Height),
			media.FormatFrameRate(d.FrameRate),
			media.FormatBitrate(d.VideoBitRate),
			media.FormatBitrate(d.AudioBitRate),
			d.IssueSummary(),
		)
	}
	_ = w.Flush()

	fmt.Printf("\n%d file(s), %d with issues\n", len(details), problems)
}
