package media

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cleanVideo returns a Details that passes every delivery rule, for
// tests to break one field at a time.
func cleanVideo() *Details {
	d := NewDetails("/footage/clip.mp4", "clip.mp4")
	d.Kind = KindVideo
	d.FileSize = 10 * 1024 * 1024
	d.DurationMS = 30_000
	d.Width = 1080
	d.Height = 1920
	d.FrameRate = 25
	d.VideoBitRate = 2_000_000
	d.AudioBitRate = 128_000
	return d
}

// issueCodes extracts just the codes for easy comparison.
func issueCodes(issues []Issue) []IssueCode {
	codes := make([]IssueCode, 0, len(issues))
	for _, issue := range issues {
		codes = append(codes, issue.Code)
	}
	return codes
}

// TestValidate_CleanFile verifies a fully conforming video yields no issues.
func TestValidate_CleanFile(t *testing.T) {
	assert.Empty(t, Validate(cleanVideo()))
}

// TestValidate_Rules breaks one delivery rule at a time and checks the
// right issue fires.
func TestValidate_Rules(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(d *Details)
		expected IssueCode
	}{
		{"filename space", func(d *Details) { d.FileName = "my clip.mp4" }, IssueFilenameSpace},
		{"frame rate at threshold", func(d *Details) { d.FrameRate = 20 }, IssueLowFrameRate},
		{"frame rate below threshold", func(d *Details) { d.FrameRate = 15 }, IssueLowFrameRate},
		{"video bitrate below 1000 kbps", func(d *Details) { d.VideoBitRate = 999_999 }, IssueLowVideoBitRate},
		{"audio bitrate below 64 kbps", func(d *Details) { d.AudioBitRate = 63_999 }, IssueLowAudioBitRate},
		{"nonstandard width", func(d *Details) { d.Width = 1000 }, IssueNonstandardWidth},
		{"nonstandard height", func(d *Details) { d.Height = 1000 }, IssueNonstandardHeight},
		{"video over 60 MiB", func(d *Details) { d.FileSize = 60*1024*1024 + 1 }, IssueOversizedVideo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := cleanVideo()
			tt.mutate(d)
			assert.Equal(t, []IssueCode{tt.expected}, issueCodes(Validate(d)))
		})
	}
}

// TestValidate_FrameRateAboveThreshold verifies 20 fps is the boundary:
// anything above passes.
func TestValidate_FrameRateAboveThreshold(t *testing.T) {
	d := cleanVideo()
	d.FrameRate = 20.01
	assert.Empty(t, Validate(d))
}

// TestValidate_FullWidthPunctuationExemptsSpaces verifies names using
// full-width CJK punctuation may contain ASCII spaces.
func TestValidate_FullWidthPunctuationExemptsSpaces(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		flagged  bool
	}{
		{"bare space", "final cut.mp4", true},
		{"no space", "final_cut.mp4", false},
		{"space with full-width comma", "素材，final cut.mp4", false},
		{"space with full-width brackets", "【素材】final cut.mp4", false},
		{"full-width ideographic space only", "素材　cut.mp4", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := cleanVideo()
			d.FileName = tt.fileName
			codes := issueCodes(Validate(d))
			if tt.flagged {
				assert.Contains(t, codes, IssueFilenameSpace)
			} else {
				assert.NotContains(t, codes, IssueFilenameSpace)
			}
		})
	}
}

// TestValidate_ImageSizeCap verifies the 150 KiB image cap, and that the
// video cap does not apply to images.
func TestValidate_ImageSizeCap(t *testing.T) {
	d := NewDetails("/assets/poster.jpg", "poster.jpg")
	d.Kind = KindImage
	d.Width = 1080
	d.Height = 1920

	d.FileSize = 150 * 1024
	assert.Empty(t, Validate(d))

	d.FileSize = 150*1024 + 1
	assert.Equal(t, []IssueCode{IssueOversizedImage}, issueCodes(Validate(d)))
}

// TestValidate_UnknownFieldsAreSkipped verifies sentinel fields fire no
// rules: a file the inspector got nothing out of has no violations.
func TestValidate_UnknownFieldsAreSkipped(t *testing.T) {
	d := NewDetails("/footage/odd.bin", "odd.bin")
	d.FileSize = Unknown
	assert.Empty(t, Validate(d))
}

// TestValidate_MultipleIssues verifies all fired rules are reported.
func TestValidate_MultipleIssues(t *testing.T) {
	d := cleanVideo()
	d.FileName = "low quality.mp4"
	d.FrameRate = 12
	d.VideoBitRate = 500_000

	codes := issueCodes(Validate(d))
	assert.ElementsMatch(t,
		[]IssueCode{IssueFilenameSpace, IssueLowFrameRate, IssueLowVideoBitRate},
		codes,
	)
}

// TestProcessingError verifies the error text is truncated and the
// numeric fields stay at their sentinels.
func TestProcessingError(t *testing.T) {
	long := errors.New(strings.Repeat("x", 80))
	d := ProcessingError("/footage/broken.mp4", "broken.mp4", long)

	require.Len(t, d.Issues, 1)
	assert.Equal(t, IssueProcessingError, d.Issues[0].Code)
	assert.Equal(t, strings.Repeat("x", 50)+"...", d.Issues[0].Detail)
	assert.Equal(t, Unknown, d.FileSize)
	assert.Equal(t, Unknown, d.DurationMS)
	assert.Equal(t, KindOther, d.Kind)

	short := ProcessingError("/footage/broken.mp4", "broken.mp4", errors.New("no such file"))
	assert.Equal(t, "no such file", short.Issues[0].Detail)
}
