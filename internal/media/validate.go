package media

import "strings"

// Delivery-rule thresholds. Bitrates are in bits per second, sizes in bytes.
const (
	// maxAcceptableLowFPS is the highest frame rate still considered too low.
	maxAcceptableLowFPS = 20.0

	// minVideoBitRate is 1000 kbps expressed in bps.
	minVideoBitRate = 1000 * 1000

	// minAudioBitRate is 64 kbps expressed in bps.
	minAudioBitRate = 64 * 1000

	// maxVideoFileSize is the 60 MiB delivery cap for video files.
	maxVideoFileSize = 60 * 1024 * 1024

	// maxImageFileSize is the 150 KiB delivery cap for image files.
	maxImageFileSize = 150 * 1024
)

// validWidths and validHeights are the accepted delivery frame dimensions.
var validWidths = map[int]bool{
	540: true, 720: true, 960: true, 1080: true, 1280: true,
}

var validHeights = map[int]bool{
	540: true, 607: true, 720: true, 960: true, 1280: true, 1920: true,
}

// fullWidthPunctuation lists CJK punctuation whose presence exempts a file
// name from the ASCII-space check. Names using full-width punctuation are
// assumed to follow a different naming convention where spaces are allowed.
const fullWidthPunctuation = "　，。；：（）【】"

// Validate applies the delivery rules to the extracted details and returns
// the list of violations. Fields at their unknown sentinel are skipped —
// a rule only fires on data the inspector actually produced.
func Validate(d *Details) []Issue {
	var issues []Issue

	if filenameHasBareSpace(d.FileName) {
		issues = append(issues, Issue{Code: IssueFilenameSpace})
	}

	if d.FrameRate > 0 && d.FrameRate <= maxAcceptableLowFPS {
		issues = append(issues, Issue{Code: IssueLowFrameRate})
	}

	if d.VideoBitRate >= 0 && d.VideoBitRate < minVideoBitRate {
		issues = append(issues, Issue{Code: IssueLowVideoBitRate})
	}

	if d.AudioBitRate >= 0 && d.AudioBitRate < minAudioBitRate {
		issues = append(issues, Issue{Code: IssueLowAudioBitRate})
	}

	if d.Width > 0 && !validWidths[d.Width] {
		issues = append(issues, Issue{Code: IssueNonstandardWidth})
	}

	if d.Height > 0 && !validHeights[d.Height] {
		issues = append(issues, Issue{Code: IssueNonstandardHeight})
	}

	if d.FileSize >= 0 {
		switch {
		case d.Kind == KindVideo && d.FileSize > maxVideoFileSize:
			issues = append(issues, Issue{Code: IssueOversizedVideo})
		case d.Kind == KindImage && d.FileSize > maxImageFileSize:
			issues = append(issues, Issue{Code: IssueOversizedImage})
		}
	}

	return issues
}

// filenameHasBareSpace reports whether the name contains an ASCII space
// without any full-width CJK punctuation. Names that use full-width
// punctuation are exempt from the space rule.
func filenameHasBareSpace(name string) bool {
	if !strings.Contains(name, " ") {
		return false
	}
	return !strings.ContainsAny(name, fullWidthPunctuation)
}

// ProcessingError returns a Details for a file the inspector failed on.
// The error text is truncated so a long tool backtrace doesn't flood the
// table; every numeric field stays at its unknown sentinel.
func ProcessingError(path, fileName string, err error) *Details {
	detail := ""
	if err != nil {
		detail = err.Error()
		if len(detail) > 50 {
			detail = detail[:50] + "..."
		}
	}

	d := NewDetails(path, fileName)
	d.Issues = []Issue{{Code: IssueProcessingError, Detail: detail}}
	return d
}
