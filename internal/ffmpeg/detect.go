package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/backmassage/steadycrop/internal/config"
)

// RunDetect runs the vidstabdetect analysis pass over the selected time
// range, writing the per-frame transforms file to trfPath. The video is
// decoded but not encoded (-f null); audio and subtitles are excluded.
func RunDetect(ctx context.Context, inputFile, trfPath string, detect config.DetectSettings,
	startSeconds, durationSeconds *float64, verbose bool) error {
	args := []string{"ffmpeg", "-y", "-hide_banner", "-loglevel", "error"}
	args = appendRangeArgs(args, startSeconds, durationSeconds)
	args = append(args, "-i", inputFile, "-an", "-sn")
	filter := fmt.Sprintf(
		"vidstabdetect=fileformat=ascii:tripod=%d:shakiness=%d:accuracy=%d:stepsize=%d:mincontrast=%g:result=%s",
		detect.ReferenceFrame, detect.Shakiness, detect.Accuracy,
		detect.StepSize, detect.MinContrast, EscapeFilterValue(trfPath),
	)
	args = append(args, "-vf", filter, "-f", "null", "-")
	if _, err := Execute(ctx, ExecOptions{Verbose: verbose}, args...); err != nil {
		return err
	}
	if info, err := os.Stat(trfPath); err != nil || info.Size() == 0 {
		return fmt.Errorf("vidstabdetect did not produce a transforms file")
	}
	return nil
}

// CountFrames counts the per-frame records in a transforms file. The
// detect pass must have seen more than one frame for stabilization to
// mean anything.
func CountFrames(trfPath string) (int, error) {
	f, err := os.Open(trfPath)
	if err != nil {
		return 0, fmt.Errorf("opening transforms file: %w", err)
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), "Frame ") {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("reading transforms file: %w", err)
	}
	if count <= 0 {
		return 0, fmt.Errorf("transforms file contains no frames")
	}
	return count, nil
}

func appendRangeArgs(args []string, startSeconds, durationSeconds *float64) []string {
	if startSeconds != nil {
		args = append(args, "-ss", fmt.Sprintf("%g", *startSeconds))
	}
	if durationSeconds != nil {
		args = append(args, "-t", fmt.Sprintf("%g", *durationSeconds))
	}
	return args
}
