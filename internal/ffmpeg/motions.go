package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/backmassage/steadycrop/internal/config"
)

// MotionsMeta describes how the global-motions derivation ran; it is
// carried into the report for reproducibility.
type MotionsMeta struct {
	GeneratedInSeconds float64 `yaml:"generated_in_seconds" json:"generated_in_seconds"`
	FrameCount         int     `yaml:"frame_count" json:"frame_count"`
}

// RunGlobalMotions derives the smoothed per-frame global motion path from
// a transforms file without decoding the source again: vidstabtransform
// with debug=1 is driven over a synthetic black lavfi source of the same
// geometry, and writes global_motions.trf into its working directory.
//
// When outputDir is empty a temporary directory is used and cleaned up;
// otherwise the debug file is left at the returned path.
func RunGlobalMotions(ctx context.Context, trfPath string, width, height int, fps float64,
	frameCount int, transform config.TransformSettings, outputDir string,
	verbose bool) (string, MotionsMeta, string, error) {
	dir := outputDir
	cleanup := false
	if dir == "" {
		tmp, err := os.MkdirTemp("", "steadycrop-")
		if err != nil {
			return "", MotionsMeta{}, "", fmt.Errorf("creating motions temp dir: %w", err)
		}
		dir = tmp
		cleanup = true
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", MotionsMeta{}, "", fmt.Errorf("creating motions dir: %w", err)
	}
	motionsPath := filepath.Join(dir, "global_motions.trf")

	filter := fmt.Sprintf(
		"vidstabtransform=input=%s:relative=1:optzoom=0:zoom=0:crop=black:optalgo=%s:smoothing=%d:debug=1",
		EscapeFilterValue(trfPath), transform.OptAlgo, transform.Smoothing,
	)
	source := fmt.Sprintf("color=black:size=%dx%d:rate=%g", width, height, fps)
	args := []string{
		"ffmpeg", "-y", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", source,
		"-frames:v", fmt.Sprintf("%d", frameCount),
		"-an", "-sn",
		"-vf", filter,
		"-f", "null", "-",
	}

	started := time.Now()
	if _, err := Execute(ctx, ExecOptions{Dir: dir, Verbose: verbose}, args...); err != nil {
		if cleanup {
			os.RemoveAll(dir)
		}
		return "", MotionsMeta{}, "", err
	}
	meta := MotionsMeta{
		GeneratedInSeconds: time.Since(started).Seconds(),
		FrameCount:         frameCount,
	}

	data, err := os.ReadFile(motionsPath)
	if cleanup {
		defer os.RemoveAll(dir)
	}
	if err != nil {
		return "", MotionsMeta{}, "", fmt.Errorf("vidstabtransform debug did not produce global_motions.trf: %w", err)
	}
	return string(data), meta, motionsPath, nil
}
