package media

import "fmt"

// notAvailable is the placeholder shown for values the inspector
// could not determine.
const notAvailable = "N/A"

// sizeUnits are the binary-scaled unit suffixes used by FormatSize.
var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count in the largest unit that keeps the
// value below 1024, with two decimals (e.g. "1.46MB"). A zero size
// renders as "0B" and Unknown renders as "N/A".
func FormatSize(sizeBytes int64) string {
	if sizeBytes < 0 {
		return notAvailable
	}
	if sizeBytes == 0 {
		return "0B"
	}

	size := float64(sizeBytes)
	i := 0
	for size >= 1024 && i < len(sizeUnits)-1 {
		size /= 1024
		i++
	}
	return fmt.Sprintf("%.2f%s", size, sizeUnits[i])
}

// FormatDuration renders a duration in milliseconds as "mm:ss", or
// "hh:mm:ss" once the duration reaches an hour. Unknown renders as "N/A".
func FormatDuration(ms int64) string {
	if ms < 0 {
		return notAvailable
	}

	s := ms / 1000
	m, s := s/60, s%60
	h, m := m/60, m%60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// FormatBitrate renders a bitrate in bits per second as whole kbps
// (e.g. "1200 kbps"). Unknown renders as "N/A".
func FormatBitrate(bps int64) string {
	if bps < 0 {
		return notAvailable
	}
	return fmt.Sprintf("%.0f kbps", float64(bps)/1000)
}

// FormatFrameRate renders a frame rate with two decimals (e.g. "23.98 fps").
// A zero rate means unknown and renders as "N/A".
func FormatFrameRate(fps float64) string {
	if fps <= 0 {
		return notAvailable
	}
	return fmt.Sprintf("%.2f fps", fps)
}

// FormatDimension renders a pixel dimension, or "N/A" when unknown.
func FormatDimension(px int) string {
	if px <= 0 {
		return notAvailable
	}
	return fmt.Sprintf("%d", px)
}
