// Package ui implements the Fyne desktop interface of the media analyzer.
//
// The window shows a stats bar, file/folder pickers, a sortable results
// table, and a status bar. Analysis runs on the scan package's worker
// goroutines; results are marshalled onto the UI thread with fyne.Do.
// Problem files are flagged with danger coloring and kept grouped at
// the top of the table.
package ui
