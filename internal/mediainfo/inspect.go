package mediainfo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wanlu-media/reelcheck/internal/media"
)

// report mirrors the top level of `mediainfo --Output=JSON` output.
// Only the track list is of interest; everything else is ignored.
type report struct {
	Media struct {
		Ref    string  `json:"@ref"`
		Tracks []track `json:"track"`
	} `json:"media"`
}

// track is one entry of the mediainfo track array. MediaInfo emits every
// numeric field as a JSON string ("1080", "25.000"), but some builds emit
// plain numbers, so all numeric fields use flexValue to accept both.
type track struct {
	Type      string    `json:"@type"`
	Duration  flexValue `json:"Duration"`
	FileSize  flexValue `json:"FileSize"`
	Width     flexValue `json:"Width"`
	Height    flexValue `json:"Height"`
	FrameRate flexValue `json:"FrameRate"`
	BitRate   flexValue `json:"BitRate"`
}

// flexValue is a numeric field that may arrive as a JSON string or a
// JSON number. It stores the raw text either way.
type flexValue string

// UnmarshalJSON accepts both string and number forms of a value.
func (v *flexValue) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var unquoted string
		if err := json.Unmarshal(data, &unquoted); err != nil {
			return err
		}
		*v = flexValue(unquoted)
		return nil
	}
	*v = flexValue(s)
	return nil
}

// Float parses the value as a float. Returns ok=false when the field was
// absent or not numeric.
func (v flexValue) Float() (float64, bool) {
	s := strings.TrimSpace(string(v))
	if s == "" || s == "null" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Invalid reports whether the field carried a value that is not numeric
// (e.g. FrameRate "Variable"). Absent fields are not invalid — the two
// cases are flagged differently: absent data skips validation, invalid
// data is itself a delivery issue.
func (v flexValue) Invalid() bool {
	s := strings.TrimSpace(string(v))
	if s == "" || s == "null" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err != nil
}

// Int parses the value as an integer, tolerating a decimal form
// ("25.000" → 25).
func (v flexValue) Int() (int64, bool) {
	f, ok := v.Float()
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// Inspect runs mediainfo on the given file and returns its extracted,
// validated details. The returned error covers inspection failures
// (missing file, tool failure, unparseable output); delivery-rule
// violations are reported through Details.Issues, not the error.
func (s *Service) Inspect(ctx context.Context, path string) (*media.Details, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	d := media.NewDetails(path, filepath.Base(path))

	// The file size comes from a plain stat rather than the tool output:
	// MediaInfo omits FileSize for some containers, and the delivery
	// size caps must apply regardless.
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	d.FileSize = info.Size()

	out, err := s.runner.Output(ctx, s.binary, "--Output=JSON", path)
	if err != nil {
		return nil, err
	}

	var rep report
	if err := json.Unmarshal(out, &rep); err != nil {
		return nil, fmt.Errorf("parse mediainfo output for %s: %w", path, err)
	}

	invalid := applyTracks(d, rep.Media.Tracks)
	d.Issues = append(invalid, media.Validate(d)...)
	return d, nil
}

// applyTracks maps mediainfo tracks onto the details struct. The first
// track of each type wins; later duplicates (e.g. a second audio stream)
// are ignored, matching how the table displays one value per column.
//
// The returned issues flag fields the tool reported but that are not
// numeric. Those fields stay at their unknown sentinel, so the threshold
// rules skip them; the invalid-data issue is what surfaces instead.
func applyTracks(d *media.Details, tracks []track) []media.Issue {
	var general, video, image, audio *track
	for i := range tracks {
		t := &tracks[i]
		switch t.Type {
		case "General":
			if general == nil {
				general = t
			}
		case "Video":
			if video == nil {
				video = t
			}
		case "Image":
			if image == nil {
				image = t
			}
		case "Audio":
			if audio == nil {
				audio = t
			}
		}
	}

	switch {
	case video != nil:
		d.Kind = media.KindVideo
	case image != nil:
		d.Kind = media.KindImage
	}

	// Duration lives on the General track (seconds); fall back to the
	// video track when General lacks it.
	if general != nil {
		if secs, ok := general.Duration.Float(); ok {
			d.DurationMS = int64(secs * 1000)
		}
	}
	if d.DurationMS < 0 && video != nil {
		if secs, ok := video.Duration.Float(); ok {
			d.DurationMS = int64(secs * 1000)
		}
	}

	var invalid []media.Issue

	if video != nil {
		if w, ok := video.Width.Int(); ok {
			d.Width = int(w)
		}
		if h, ok := video.Height.Int(); ok {
			d.Height = int(h)
		}
		if fps, ok := video.FrameRate.Float(); ok {
			d.FrameRate = fps
		} else if video.FrameRate.Invalid() {
			invalid = append(invalid, media.Issue{
				Code:   media.IssueInvalidFrameRate,
				Detail: string(video.FrameRate),
			})
		}
		if br, ok := video.BitRate.Int(); ok {
			d.VideoBitRate = br
		} else if video.BitRate.Invalid() {
			invalid = append(invalid, media.Issue{
				Code:   media.IssueInvalidVideoBitRate,
				Detail: string(video.BitRate),
			})
		}
	} else if image != nil {
		if w, ok := image.Width.Int(); ok {
			d.Width = int(w)
		}
		if h, ok := image.Height.Int(); ok {
			d.Height = int(h)
		}
	}

	if audio != nil {
		if br, ok := audio.BitRate.Int(); ok {
			d.AudioBitRate = br
		} else if audio.BitRate.Invalid() {
			invalid = append(invalid, media.Issue{
				Code:   media.IssueInvalidAudioBitRate,
				Detail: string(audio.BitRate),
			})
		}
	}

	return invalid
}
