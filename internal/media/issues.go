package media

// IssueCode identifies a delivery-rule violation. Codes are stable
// identifiers used in JSON output; Short() and Description() provide
// the human-readable forms shown in the UI.
type IssueCode string

const (
	// IssueFilenameSpace flags a file name containing an ASCII space.
	IssueFilenameSpace IssueCode = "filename-space"

	// IssueLowFrameRate flags a frame rate at or below 20 fps.
	IssueLowFrameRate IssueCode = "low-frame-rate"

	// IssueLowVideoBitRate flags a video bitrate below 1000 kbps.
	IssueLowVideoBitRate IssueCode = "low-video-bitrate"

	// IssueLowAudioBitRate flags an audio bitrate below 64 kbps.
	IssueLowAudioBitRate IssueCode = "low-audio-bitrate"

	// IssueNonstandardWidth flags a frame width outside the accepted set.
	IssueNonstandardWidth IssueCode = "nonstandard-width"

	// IssueNonstandardHeight flags a frame height outside the accepted set.
	IssueNonstandardHeight IssueCode = "nonstandard-height"

	// IssueOversizedVideo flags a video file larger than 60 MiB.
	IssueOversizedVideo IssueCode = "oversized-video"

	// IssueOversizedImage flags an image file larger than 150 KiB.
	IssueOversizedImage IssueCode = "oversized-image"

	// IssueInvalidFrameRate flags a frame rate field that is present in
	// the tool output but not numeric (e.g. "Variable").
	IssueInvalidFrameRate IssueCode = "invalid-frame-rate"

	// IssueInvalidVideoBitRate flags a non-numeric video bitrate field.
	IssueInvalidVideoBitRate IssueCode = "invalid-video-bitrate"

	// IssueInvalidAudioBitRate flags a non-numeric audio bitrate field.
	IssueInvalidAudioBitRate IssueCode = "invalid-audio-bitrate"

	// IssueProcessingError indicates the inspector failed on the file.
	IssueProcessingError IssueCode = "processing-error"
)

// Issue pairs an IssueCode with optional extra detail (for example the
// truncated error text of a processing failure).
type Issue struct {
	Code   IssueCode `json:"code"`
	Detail string    `json:"detail,omitempty"`
}

// shortDescriptions maps issue codes to the compact labels used in the
// results table, where column space is tight.
var shortDescriptions = map[IssueCode]string{
	IssueFilenameSpace:       "name space",
	IssueLowFrameRate:        "low fps",
	IssueLowVideoBitRate:     "low v-rate",
	IssueLowAudioBitRate:     "low a-rate",
	IssueNonstandardWidth:    "bad width",
	IssueNonstandardHeight:   "bad height",
	IssueOversizedVideo:      "video too big",
	IssueOversizedImage:      "image too big",
	IssueInvalidFrameRate:    "invalid fps",
	IssueInvalidVideoBitRate: "invalid v-rate",
	IssueInvalidAudioBitRate: "invalid a-rate",
	IssueProcessingError:     "error",
}

// fullDescriptions maps issue codes to the sentences shown in the
// status bar and in the headless analyzer's report.
var fullDescriptions = map[IssueCode]string{
	IssueFilenameSpace:       "file name contains a space",
	IssueLowFrameRate:        "frame rate is 20 fps or lower",
	IssueLowVideoBitRate:     "video bitrate is below 1000 kbps",
	IssueLowAudioBitRate:     "audio bitrate is below 64 kbps",
	IssueNonstandardWidth:    "frame width is not a standard delivery width",
	IssueNonstandardHeight:   "frame height is not a standard delivery height",
	IssueOversizedVideo:      "video file exceeds 60 MiB",
	IssueOversizedImage:      "image file exceeds 150 KiB",
	IssueInvalidFrameRate:    "frame rate data is not numeric",
	IssueInvalidVideoBitRate: "video bitrate data is not numeric",
	IssueInvalidAudioBitRate: "audio bitrate data is not numeric",
	IssueProcessingError:     "file could not be inspected",
}

// Short returns the compact table label for the issue code.
// Unknown codes fall back to the code itself.
func (c IssueCode) Short() string {
	if s, ok := shortDescriptions[c]; ok {
		return s
	}
	return string(c)
}

// Description returns the full human-readable description of the issue code.
func (c IssueCode) Description() string {
	if s, ok := fullDescriptions[c]; ok {
		return s
	}
	return string(c)
}
