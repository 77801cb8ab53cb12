package ui

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/wanlu-media/reelcheck/internal/media"
	"github.com/wanlu-media/reelcheck/internal/scan"
)

// Window dimensions match the original layout: wide enough for every
// column without horizontal scrolling.
const (
	WindowWidth  = 1350
	WindowHeight = 750
)

// column describes one results-table column.
type column struct {
	title string
	width float32
	value func(row *tableRow) string
}

// tableRow is one analyzed file as displayed, pairing the details with
// its stable display number (assigned in arrival order, kept across
// re-sorts).
type tableRow struct {
	num     int
	details *media.Details
}

// columns defines the results table layout.
var columns = []column{
	{"#", 40, func(r *tableRow) string { return fmt.Sprintf("%d", r.num) }},
	{"Name", 220, func(r *tableRow) string { return r.details.FileName }},
	{"Size", 90, func(r *tableRow) string { return media.FormatSize(r.details.FileSize) }},
	{"Duration", 90, func(r *tableRow) string { return media.FormatDuration(r.details.DurationMS) }},
	{"Width", 70, func(r *tableRow) string { return media.FormatDimension(r.details.Width) }},
	{"Height", 70, func(r *tableRow) string { return media.FormatDimension(r.details.Height) }},
	{"FPS", 100, func(r *tableRow) string { return media.FormatFrameRate(r.details.FrameRate) }},
	{"V-rate", 130, func(r *tableRow) string { return media.FormatBitrate(r.details.VideoBitRate) }},
	{"A-rate", 130, func(r *tableRow) string { return media.FormatBitrate(r.details.AudioBitRate) }},
	{"Issues", 160, func(r *tableRow) string { return r.details.IssueSummary() }},
}

// RootUI is the main window of the media analyzer.
type RootUI struct {
	window  fyne.Window
	scanner *scan.Scanner

	statsLabel  *widget.Label
	statusLabel *widget.Label
	table       *widget.Table

	mu         sync.Mutex
	rows       []*tableRow
	nextNum    int
	videoCount int
	imageCount int
	probCount  int

	// cancel stops the in-flight analysis batch, if any.
	cancel context.CancelFunc
}

// NewRootUI creates the main UI and installs it into the window.
func NewRootUI(window fyne.Window, scanner *scan.Scanner) *RootUI {
	ui := &RootUI{
		window:  window,
		scanner: scanner,
		nextNum: 1,
	}
	ui.setupUI()
	return ui
}

// setupUI creates and arranges all UI components: stats bar on top,
// action buttons, the results table in the center, status bar at the
// bottom.
func (ui *RootUI) setupUI() {
	ui.statsLabel = widget.NewLabel("")
	ui.statusLabel = widget.NewLabel("Ready")

	selectFilesBtn := widget.NewButton("Select Files", ui.onSelectFile)
	selectFolderBtn := widget.NewButton("Select Folder", ui.onSelectFolder)
	clearBtn := widget.NewButton("Clear List", ui.onClear)

	buttons := container.NewHBox(selectFilesBtn, selectFolderBtn, widget.NewSeparator(), clearBtn)
	top := container.NewVBox(ui.statsLabel, buttons)

	ui.table = widget.NewTable(
		func() (int, int) {
			ui.mu.Lock()
			defer ui.mu.Unlock()
			// Row 0 is the header.
			return len(ui.rows) + 1, len(columns)
		},
		func() fyne.CanvasObject {
			label := widget.NewLabel("")
			label.Truncation = fyne.TextTruncateEllipsis
			return label
		},
		ui.updateCell,
	)
	for i, col := range columns {
		ui.table.SetColumnWidth(i, col.width)
	}
	ui.table.OnSelected = ui.onCellSelected

	content := container.NewBorder(top, ui.statusLabel, nil, nil, ui.table)
	ui.window.SetContent(content)
	ui.refreshStats()
}

// updateCell renders one table cell. Problem rows use danger coloring,
// clean rows use success coloring, mirroring the original's red/green
// row tags.
func (ui *RootUI) updateCell(id widget.TableCellID, obj fyne.CanvasObject) {
	label := obj.(*widget.Label)

	if id.Row == 0 {
		label.SetText(columns[id.Col].title)
		label.TextStyle = fyne.TextStyle{Bold: true}
		label.Importance = widget.MediumImportance
		return
	}

	ui.mu.Lock()
	defer ui.mu.Unlock()
	if id.Row-1 >= len(ui.rows) {
		label.SetText("")
		return
	}

	row := ui.rows[id.Row-1]
	label.TextStyle = fyne.TextStyle{}
	if row.details.HasIssues() {
		label.Importance = widget.DangerImportance
	} else {
		label.Importance = widget.SuccessImportance
	}
	label.SetText(columns[id.Col].value(row))
}

// onCellSelected shows the selected file's issues in the status bar, or
// sorts when a header cell is tapped.
func (ui *RootUI) onCellSelected(id widget.TableCellID) {
	ui.table.UnselectAll()

	if id.Row == 0 {
		ui.sortByColumn(id.Col)
		return
	}

	ui.mu.Lock()
	defer ui.mu.Unlock()
	if id.Row-1 >= len(ui.rows) {
		return
	}
	d := ui.rows[id.Row-1].details
	if d.HasIssues() {
		ui.statusLabel.SetText(fmt.Sprintf("%s — %s", d.FileName, d.IssueDetails()))
	} else {
		ui.statusLabel.SetText(fmt.Sprintf("Selected: %s", d.FileName))
	}
}

// sortKeys produce the comparable value per sortable column. Columns
// without an entry sort by their rendered text.
var sortKeys = map[int]func(r *tableRow) float64{
	0: func(r *tableRow) float64 { return float64(r.num) },
	2: func(r *tableRow) float64 { return float64(r.details.FileSize) },
	3: func(r *tableRow) float64 { return float64(r.details.DurationMS) },
	4: func(r *tableRow) float64 { return float64(r.details.Width) },
	5: func(r *tableRow) float64 { return float64(r.details.Height) },
	6: func(r *tableRow) float64 { return r.details.FrameRate },
	7: func(r *tableRow) float64 { return float64(r.details.VideoBitRate) },
	8: func(r *tableRow) float64 { return float64(r.details.AudioBitRate) },
}

// sortByColumn orders the rows by the tapped column, problem files
// always grouped first. Tapping the same column again is not tracked;
// each tap sorts ascending, matching a simple predictable model.
func (ui *RootUI) sortByColumn(col int) {
	ui.mu.Lock()
	defer ui.mu.Unlock()

	key := sortKeys[col]
	sort.SliceStable(ui.rows, func(i, j int) bool {
		a, b := ui.rows[i], ui.rows[j]
		if a.details.HasIssues() != b.details.HasIssues() {
			return a.details.HasIssues()
		}
		if key != nil {
			return key(a) < key(b)
		}
		return columns[col].value(a) < columns[col].value(b)
	})
	ui.table.Refresh()
}

// onSelectFile opens a file picker and analyzes the chosen file.
func (ui *RootUI) onSelectFile() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		_ = reader.Close()
		ui.analyzeAsync([]string{path})
	}, ui.window)
}

// onSelectFolder opens a folder picker, scans it recursively for media
// files, and analyzes them.
func (ui *RootUI) onSelectFolder() {
	dialog.ShowFolderOpen(func(list fyne.ListableURI, err error) {
		if err != nil || list == nil {
			return
		}
		root := list.Path()
		ui.statusLabel.SetText(fmt.Sprintf("Scanning %s...", root))

		go func() {
			ctx := ui.batchContext()
			files, err := scan.CollectFiles(ctx, root)
			if err != nil {
				fyne.Do(func() { ui.statusLabel.SetText(fmt.Sprintf("Scan failed: %v", err)) })
				return
			}
			if len(files) == 0 {
				fyne.Do(func() { ui.statusLabel.SetText("No media files found.") })
				return
			}
			fyne.Do(func() { ui.statusLabel.SetText(fmt.Sprintf("Found %d file(s), analyzing...", len(files))) })
			ui.consumeResults(ctx, files)
		}()
	}, ui.window)
}

// analyzeAsync analyzes the given paths on a background goroutine.
func (ui *RootUI) analyzeAsync(paths []string) {
	ui.statusLabel.SetText(fmt.Sprintf("Analyzing %d file(s)...", len(paths)))
	go ui.consumeResults(ui.batchContext(), paths)
}

// batchContext cancels any in-flight batch and returns a context for
// the next one.
func (ui *RootUI) batchContext() context.Context {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	if ui.cancel != nil {
		ui.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	ui.cancel = cancel
	return ctx
}

// consumeResults drains the scanner's result channel, marshalling each
// result onto the UI thread. Runs on a background goroutine.
func (ui *RootUI) consumeResults(ctx context.Context, paths []string) {
	done := 0
	for result := range ui.scanner.Analyze(ctx, paths) {
		done++
		d := result.Details
		progress := fmt.Sprintf("Analyzing: %d / %d | %s", done, len(paths), d.FileName)
		fyne.Do(func() {
			ui.addResult(d)
			ui.statusLabel.SetText(progress)
		})
	}
	if ctx.Err() == nil {
		fyne.Do(func() { ui.statusLabel.SetText("All files processed.") })
	}
}

// addResult appends an analyzed file to the table, keeping problem
// files grouped at the top. Must run on the UI thread.
func (ui *RootUI) addResult(d *media.Details) {
	ui.mu.Lock()

	row := &tableRow{num: ui.nextNum, details: d}
	ui.nextNum++

	switch d.Kind {
	case media.KindVideo:
		ui.videoCount++
	case media.KindImage:
		ui.imageCount++
	}
	if d.HasIssues() {
		ui.probCount++
		// Problem files go above the clean ones, after earlier problems.
		insert := 0
		for insert < len(ui.rows) && ui.rows[insert].details.HasIssues() {
			insert++
		}
		ui.rows = append(ui.rows, nil)
		copy(ui.rows[insert+1:], ui.rows[insert:])
		ui.rows[insert] = row
	} else {
		ui.rows = append(ui.rows, row)
	}
	ui.mu.Unlock()

	ui.refreshStats()
	ui.table.Refresh()
}

// onClear cancels any running batch and empties the table.
func (ui *RootUI) onClear() {
	ui.mu.Lock()
	if ui.cancel != nil {
		ui.cancel()
		ui.cancel = nil
	}
	ui.rows = nil
	ui.nextNum = 1
	ui.videoCount = 0
	ui.imageCount = 0
	ui.probCount = 0
	ui.mu.Unlock()

	ui.refreshStats()
	ui.table.Refresh()
	ui.statusLabel.SetText("List cleared. Ready.")
}

// refreshStats updates the stats bar. Must run on the UI thread.
func (ui *RootUI) refreshStats() {
	ui.mu.Lock()
	text := fmt.Sprintf("Videos %d | Images %d | Problems %d | Total %d",
		ui.videoCount, ui.imageCount, ui.probCount, len(ui.rows))
	ui.mu.Unlock()
	ui.statsLabel.SetText("Stats: " + text)
}
