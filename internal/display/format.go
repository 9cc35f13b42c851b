package display

import (
	"fmt"
)

// FormatBytes returns a human-readable size (B, KiB, MiB, GiB, TiB, PiB).
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	if exp >= len(suffixes) {
		exp = len(suffixes) - 1
		div = 1
		for i := 0; i <= exp; i++ {
			div *= unit
		}
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), suffixes[exp])
}

// FormatPercent formats a 0..1 ratio as a percentage with one decimal.
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// FormatFrameTime converts a frame index to an absolute clip timestamp,
// accounting for the analyzed range's start offset.
func FormatFrameTime(frame int, fps float64, startSeconds *float64) string {
	if fps <= 0 {
		return fmt.Sprintf("frame %d", frame)
	}
	seconds := float64(frame) / fps
	if startSeconds != nil {
		seconds += *startSeconds
	}
	return fmt.Sprintf("t=%.3fs", seconds)
}
