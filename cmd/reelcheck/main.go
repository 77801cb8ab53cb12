// Command reelcheck is the desktop media analyzer: it inspects video
// and image files with the MediaInfo CLI and flags delivery-rule
// violations in a sortable table.
package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/wanlu-media/reelcheck/internal/mediainfo"
	"github.com/wanlu-media/reelcheck/internal/scan"
	"github.com/wanlu-media/reelcheck/internal/ui"
)

func main() {
	fyneApp := app.NewWithID("com.wanlu-media.reelcheck")

	window := fyneApp.NewWindow("ReelCheck Media Analyzer")
	window.Resize(fyne.NewSize(ui.WindowWidth, ui.WindowHeight))
	window.CenterOnScreen()

	// Prefer the mediainfo binary bundled next to the executable (the
	// packaged .app ships one); fall back to PATH.
	var opts []mediainfo.Option
	if bundled := mediainfo.BundledBinary(); bundled != "" {
		opts = append(opts, mediainfo.WithBinary(bundled))
	}
	// A single worker keeps the table's arrival numbering in submission
	// order.
	scanner := scan.NewScanner(mediainfo.New(opts...), 1)

	ui.NewRootUI(window, scanner)

	window.ShowAndRun()
}
