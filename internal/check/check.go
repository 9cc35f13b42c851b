// Package check provides system diagnostics (--check mode) and pre-pipeline
// dependency validation for ffmpeg, ffprobe, and the vid.stab filters.
package check

import (
	"errors"
	"os/exec"
	"strings"
)

// Sentinel errors returned by CheckDeps when a required tool or filter is missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found on PATH")
	ErrFfprobeNotFound = errors.New("ffprobe not found on PATH")
	ErrNoVidstab       = errors.New("ffmpeg is missing vid.stab filters (vidstabdetect/vidstabtransform)")
	ErrX264Failed      = errors.New("libx264 test encode failed")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// RunCheck runs the interactive --check flow: prints availability of
// ffmpeg, ffprobe, the vid.stab filters, and the x264 encoder.
// This is informational only; it does not stop on failure.
func RunCheck(log Logger) {
	log.Info("=== System Check ===")

	checkFfmpeg(log)
	checkFfprobe(log)
	checkVidstab(log)
	checkX264(log)
}

// checkFfmpeg verifies ffmpeg is on PATH and logs its version string.
func checkFfmpeg(log Logger) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		log.Error("ffmpeg not found")
		return
	}
	cmd := exec.Command("ffmpeg", "-version")
	out, err := cmd.Output()
	if err != nil {
		log.Warn("ffmpeg found but -version failed: %v", err)
		return
	}
	firstLine := strings.TrimSpace(string(out))
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	log.Success("ffmpeg: %s", firstLine)
}

// checkFfprobe verifies ffprobe is on PATH.
func checkFfprobe(log Logger) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		log.Error("ffprobe not found")
		return
	}
	log.Success("ffprobe found")
}

// checkVidstab verifies both vid.stab filters are compiled in.
func checkVidstab(log Logger) {
	ok, err := hasVidstabFilters()
	switch {
	case err != nil:
		log.Warn("Could not list filters: %v", err)
	case ok:
		log.Success("vid.stab filters available (vidstabdetect, vidstabtransform)")
	default:
		log.Error("vid.stab filters missing; this ffmpeg was built without --enable-libvidstab")
	}
}

// checkX264 runs a minimal libx264 encode to verify the output encoder works.
func checkX264(log Logger) {
	log.Info("Testing x264 encoder...")
	if runSilent("ffmpeg", x264TestArgs()...) {
		log.Success("x264 encoder works")
	} else {
		log.Error("x264 test encode failed")
	}
}

// CheckDeps is the pre-pipeline validation: ffmpeg and ffprobe must be on
// PATH, the ffmpeg build must expose both vid.stab filters, and a quick
// libx264 encode must succeed. Returns a sentinel error on failure.
func CheckDeps() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return ErrFfmpegNotFound
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return ErrFfprobeNotFound
	}
	ok, err := hasVidstabFilters()
	if err != nil || !ok {
		return ErrNoVidstab
	}
	if !runSilent("ffmpeg", x264TestArgs()...) {
		return ErrX264Failed
	}
	return nil
}

// --- internal helpers ---

// hasVidstabFilters scans `ffmpeg -filters` for both vid.stab filters.
func hasVidstabFilters() (bool, error) {
	cmd := exec.Command("ffmpeg", "-hide_banner", "-filters")
	out, err := cmd.Output()
	if err != nil {
		return false, err
	}
	text := string(out)
	return strings.Contains(text, "vidstabdetect") &&
		strings.Contains(text, "vidstabtransform"), nil
}

// x264TestArgs returns the ffmpeg arguments for a minimal libx264 test
// encode. Shared by checkX264 and CheckDeps.
func x264TestArgs() []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=black:s=256x256:d=0.1",
		"-c:v", "libx264",
		"-f", "null", "-",
	}
}

// runSilent runs a command and returns true if it exits with status 0.
// Both stdout and stderr are discarded.
func runSilent(name string, args ...string) bool {
	cmd := exec.Command(name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}
