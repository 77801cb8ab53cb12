package media

import (
	"strings"
)

// Kind classifies a media file by its dominant track type.
// A file with a video track is a video even if it also carries
// audio or cover-art image tracks.
type Kind string

const (
	// KindVideo indicates the file has at least one video track.
	KindVideo Kind = "video"

	// KindImage indicates the file has an image track and no video track.
	KindImage Kind = "image"

	// KindOther covers audio-only files and anything unclassified.
	KindOther Kind = "other"
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	return string(k)
}

// Unknown is the sentinel for numeric fields the inspector could not
// determine. Width, height, and frame rate use their zero values instead,
// since 0 is never a legitimate dimension or rate.
const Unknown int64 = -1

// Details holds the extracted properties of a single media file together
// with any delivery-rule issues found during validation.
type Details struct {
	// Path is the path the file was inspected at.
	Path string `json:"path"`

	// FileName is the base name of the file.
	FileName string `json:"fileName"`

	// FileSize is the file size in bytes, or Unknown.
	FileSize int64 `json:"fileSize"`

	// DurationMS is the playback duration in milliseconds, or Unknown.
	DurationMS int64 `json:"durationMs"`

	// Width and Height are the frame dimensions in pixels, 0 if unknown.
	Width  int `json:"width"`
	Height int `json:"height"`

	// FrameRate is the video frame rate in frames per second, 0 if unknown.
	FrameRate float64 `json:"frameRate"`

	// VideoBitRate and AudioBitRate are in bits per second, or Unknown.
	VideoBitRate int64 `json:"videoBitRate"`
	AudioBitRate int64 `json:"audioBitRate"`

	// Kind classifies the file as video, image, or other.
	Kind Kind `json:"kind"`

	// Issues lists the delivery-rule violations found for this file.
	Issues []Issue `json:"issues,omitempty"`
}

// NewDetails returns a Details for the given path with every numeric
// field initialized to its unknown sentinel.
func NewDetails(path, fileName string) *Details {
	return &Details{
		Path:         path,
		FileName:     fileName,
		FileSize:     Unknown,
		DurationMS:   Unknown,
		VideoBitRate: Unknown,
		AudioBitRate: Unknown,
		Kind:         KindOther,
	}
}

// HasIssues reports whether validation found any problems with the file.
func (d *Details) HasIssues() bool {
	return len(d.Issues) > 0
}

// IssueSummary returns the short descriptions of all issues joined with
// commas, or "passed" when the file has no issues. This is the value
// shown in the results table's issue column.
func (d *Details) IssueSummary() string {
	if !d.HasIssues() {
		return "passed"
	}
	parts := make([]string, 0, len(d.Issues))
	for _, issue := range d.Issues {
		parts = append(parts, issue.Code.Short())
	}
	return strings.Join(parts, ", ")
}

// IssueDetails returns the full issue descriptions joined with semicolons,
// suitable for a status-bar line. Empty when the file has no issues.
func (d *Details) IssueDetails() string {
	if !d.HasIssues() {
		return ""
	}
	parts := make([]string, 0, len(d.Issues))
	for _, issue := range d.Issues {
		if issue.Detail != "" {
			parts = append(parts, issue.Code.Description()+" ("+issue.Detail+")")
			continue
		}
		parts = append(parts, issue.Code.Description())
	}
	return strings.Join(parts, "; ")
}
