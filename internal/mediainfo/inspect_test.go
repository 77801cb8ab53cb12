package mediainfo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanlu-media/reelcheck/internal/media"
)

// stubRunner returns canned mediainfo output (or an error) and records
// the invocation.
type stubRunner struct {
	output []byte
	err    error

	gotName string
	gotArgs []string
}

func (s *stubRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	s.gotName = name
	s.gotArgs = args
	return s.output, s.err
}

// writeTempMedia creates a file of the given size for Inspect to stat.
func writeTempMedia(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	return path
}

// videoJSON is a trimmed-down `mediainfo --Output=JSON` report for a
// 1080x1920 25fps video. MediaInfo emits numerics as strings.
const videoJSON = `{
  "media": {
    "@ref": "clip.mp4",
    "track": [
      {"@type": "General", "Duration": "30.000"},
      {"@type": "Video", "Duration": "30.000", "Width": "1080", "Height": "1920",
       "FrameRate": "25.000", "BitRate": "2000000"},
      {"@type": "Audio", "BitRate": "128000"}
    ]
  }
}`

// TestFlexValue_Unmarshal verifies both the string and number forms
// MediaInfo builds emit.
func TestFlexValue_Unmarshal(t *testing.T) {
	tests := []struct {
		name  string
		json  []byte
		want  float64
		wantI int64
		ok    bool
	}{
		{"quoted integer", []byte(`"1080"`), 1080, 1080, true},
		{"quoted decimal", []byte(`"25.000"`), 25, 25, true},
		{"bare number", []byte(`29.97`), 29.97, 29, true},
		{"null", []byte(`null`), 0, 0, false},
		{"non-numeric string", []byte(`"Lossy"`), 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v flexValue
			require.NoError(t, v.UnmarshalJSON(tt.json))

			f, ok := v.Float()
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.InDelta(t, tt.want, f, 0.0001)
			}

			i, ok := v.Int()
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.wantI, i)
			}
		})
	}
}

// TestFlexValue_Absent verifies the zero value parses as missing.
func TestFlexValue_Absent(t *testing.T) {
	var v flexValue
	_, ok := v.Float()
	assert.False(t, ok)
}

// TestFlexValue_Invalid verifies the absent/invalid distinction: only a
// present non-numeric value counts as invalid.
func TestFlexValue_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		value   flexValue
		invalid bool
	}{
		{"absent", "", false},
		{"null", "null", false},
		{"numeric string", "25.000", false},
		{"variable frame rate", "Variable", true},
		{"units attached", "1 200 kb/s", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.invalid, tt.value.Invalid())
		})
	}
}

// TestInspect_Video verifies track mapping, the seconds-to-milliseconds
// duration conversion, and that the size comes from stat rather than
// the tool output.
func TestInspect_Video(t *testing.T) {
	path := writeTempMedia(t, "clip.mp4", 4096)
	runner := &stubRunner{output: []byte(videoJSON)}
	svc := New(withRunner(runner))

	d, err := svc.Inspect(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "mediainfo", runner.gotName)
	assert.Equal(t, []string{"--Output=JSON", path}, runner.gotArgs)

	assert.Equal(t, media.KindVideo, d.Kind)
	assert.Equal(t, int64(4096), d.FileSize)
	assert.Equal(t, int64(30_000), d.DurationMS)
	assert.Equal(t, 1080, d.Width)
	assert.Equal(t, 1920, d.Height)
	assert.InDelta(t, 25.0, d.FrameRate, 0.0001)
	assert.Equal(t, int64(2_000_000), d.VideoBitRate)
	assert.Equal(t, int64(128_000), d.AudioBitRate)
	assert.Empty(t, d.Issues)
}

// TestInspect_Image verifies dimensions come from the image track when
// no video track exists.
func TestInspect_Image(t *testing.T) {
	const imageJSON = `{
	  "media": {
	    "track": [
	      {"@type": "General"},
	      {"@type": "Image", "Width": "720", "Height": "960"}
	    ]
	  }
	}`
	path := writeTempMedia(t, "poster.jpg", 1024)
	svc := New(withRunner(&stubRunner{output: []byte(imageJSON)}))

	d, err := svc.Inspect(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, media.KindImage, d.Kind)
	assert.Equal(t, 720, d.Width)
	assert.Equal(t, 960, d.Height)
	assert.Equal(t, int64(1024), d.FileSize)
	assert.Equal(t, media.Unknown, d.DurationMS)
}

// TestInspect_ValidationIssues verifies delivery-rule violations surface
// on the details, not the error.
func TestInspect_ValidationIssues(t *testing.T) {
	const lowQualityJSON = `{
	  "media": {
	    "track": [
	      {"@type": "General", "Duration": "10.5"},
	      {"@type": "Video", "Width": "640", "Height": "480",
	       "FrameRate": "15.000", "BitRate": "500000"}
	    ]
	  }
	}`
	path := writeTempMedia(t, "old.mp4", 2048)
	svc := New(withRunner(&stubRunner{output: []byte(lowQualityJSON)}))

	d, err := svc.Inspect(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, int64(10_500), d.DurationMS)
	assert.True(t, d.HasIssues())

	codes := make([]media.IssueCode, 0, len(d.Issues))
	for _, issue := range d.Issues {
		codes = append(codes, issue.Code)
	}
	assert.ElementsMatch(t, []media.IssueCode{
		media.IssueLowFrameRate,
		media.IssueLowVideoBitRate,
		media.IssueNonstandardWidth,
		media.IssueNonstandardHeight,
	}, codes)
}

// TestInspect_InvalidNumericData verifies non-numeric fields in the tool
// output are flagged as their own issues instead of silently passing as
// absent data.
func TestInspect_InvalidNumericData(t *testing.T) {
	const invalidJSON = `{
	  "media": {
	    "track": [
	      {"@type": "General", "Duration": "30.000"},
	      {"@type": "Video", "Width": "1080", "Height": "1920",
	       "FrameRate": "Variable", "BitRate": "Unknown"},
	      {"@type": "Audio", "BitRate": "Lossless"}
	    ]
	  }
	}`
	path := writeTempMedia(t, "vfr.mp4", 2048)
	svc := New(withRunner(&stubRunner{output: []byte(invalidJSON)}))

	d, err := svc.Inspect(context.Background(), path)
	require.NoError(t, err)
	require.True(t, d.HasIssues())

	codes := make([]media.IssueCode, 0, len(d.Issues))
	details := map[media.IssueCode]string{}
	for _, issue := range d.Issues {
		codes = append(codes, issue.Code)
		details[issue.Code] = issue.Detail
	}
	assert.ElementsMatch(t, []media.IssueCode{
		media.IssueInvalidFrameRate,
		media.IssueInvalidVideoBitRate,
		media.IssueInvalidAudioBitRate,
	}, codes)
	assert.Equal(t, "Variable", details[media.IssueInvalidFrameRate])

	// The fields themselves stay unknown so no threshold rule fires.
	assert.Zero(t, d.FrameRate)
	assert.Equal(t, media.Unknown, d.VideoBitRate)
	assert.Equal(t, media.Unknown, d.AudioBitRate)
}

// TestInspect_DurationFallsBackToVideoTrack covers containers whose
// General track omits the duration.
func TestInspect_DurationFallsBackToVideoTrack(t *testing.T) {
	const noGeneralDuration = `{
	  "media": {
	    "track": [
	      {"@type": "General"},
	      {"@type": "Video", "Duration": "12.000", "Width": "1080", "Height": "1920",
	       "FrameRate": "25.000", "BitRate": "2000000"}
	    ]
	  }
	}`
	path := writeTempMedia(t, "clip.mov", 4096)
	svc := New(withRunner(&stubRunner{output: []byte(noGeneralDuration)}))

	d, err := svc.Inspect(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, int64(12_000), d.DurationMS)
}

// TestInspect_MissingFile verifies a stat failure is an inspection error.
func TestInspect_MissingFile(t *testing.T) {
	svc := New(withRunner(&stubRunner{output: []byte(videoJSON)}))
	_, err := svc.Inspect(context.Background(), filepath.Join(t.TempDir(), "nope.mp4"))
	assert.Error(t, err)
}

// TestInspect_ToolFailure verifies the runner's error is propagated.
func TestInspect_ToolFailure(t *testing.T) {
	path := writeTempMedia(t, "clip.mp4", 64)
	svc := New(withRunner(&stubRunner{err: errors.New("mediainfo: command not found")}))

	_, err := svc.Inspect(context.Background(), path)
	assert.ErrorContains(t, err, "command not found")
}

// TestInspect_BadJSON verifies unparseable tool output is an error.
func TestInspect_BadJSON(t *testing.T) {
	path := writeTempMedia(t, "clip.mp4", 64)
	svc := New(withRunner(&stubRunner{output: []byte("not json")}))

	_, err := svc.Inspect(context.Background(), path)
	assert.ErrorContains(t, err, "parse mediainfo output")
}

// TestWithBinary verifies the configured binary is the one invoked.
func TestWithBinary(t *testing.T) {
	path := writeTempMedia(t, "clip.mp4", 64)
	runner := &stubRunner{output: []byte(videoJSON)}
	svc := New(WithBinary("/opt/tools/mediainfo"), withRunner(runner))

	_, err := svc.Inspect(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/tools/mediainfo", runner.gotName)
}
