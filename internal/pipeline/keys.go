package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/backmassage/steadycrop/internal/cache"
	"github.com/backmassage/steadycrop/internal/config"
	"github.com/backmassage/steadycrop/internal/ffmpeg"
	"github.com/backmassage/steadycrop/internal/report"
)

// fileIdentity snapshots the input file (absolute path, size, mtime) for
// cache keying. Any edit to the file invalidates its cached analysis.
func fileIdentity(inputFile string) (report.Identity, error) {
	abs, err := filepath.Abs(inputFile)
	if err != nil {
		return report.Identity{}, fmt.Errorf("resolving input path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return report.Identity{}, fmt.Errorf("stat input: %w", err)
	}
	return report.Identity{
		Path:    abs,
		Size:    info.Size(),
		MtimeNS: info.ModTime().UnixNano(),
	}, nil
}

// analysisKey covers everything that can change the detection pass
// output: the exact input bytes, the analyzed range, the source geometry,
// the detect settings, and the ffmpeg build.
func analysisKey(identity report.Identity, rng report.TimeRange,
	width, height int, fpsFraction string,
	detect config.DetectSettings, toolchain ffmpeg.Fingerprint) (string, error) {
	return cache.HashObject(map[string]any{
		"input": map[string]any{
			"path":     identity.Path,
			"size":     identity.Size,
			"mtime_ns": identity.MtimeNS,
		},
		"range": map[string]any{
			"start":    rng.Start,
			"duration": rng.Duration,
		},
		"video": map[string]any{
			"width":        width,
			"height":       height,
			"fps_fraction": fpsFraction,
		},
		"detect":    detect,
		"toolchain": toolchain,
	})
}

// runKey additionally covers every setting that shapes the decision or
// the render, so two runs with the same key made the same decision.
func runKey(analysisKey string, settings *config.Settings, toolchain ffmpeg.Fingerprint) (string, error) {
	return cache.HashObject(map[string]any{
		"analysis_key": analysisKey,
		"transform":    settings.Engine.Transform,
		"crop":         settings.Crop,
		"border":       settings.Border,
		"rejection":    settings.Rejection,
		"toolchain":    toolchain,
	})
}
